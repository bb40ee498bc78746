package logger

import "testing"

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("loud", "json"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewBuildsConsoleLogger(t *testing.T) {
	log, err := New("INFO", "console")
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	if log.Core().Enabled(-1) {
		t.Fatalf("debug must be disabled at info level")
	}
}
