package model

import "time"

// RateWindow is the state of one fixed rate window.
type RateWindow struct {
	Count   int64
	ResetIn time.Duration
}
