package delivery

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ivankudzin/swipematch/internal/domain/enums"
	"github.com/ivankudzin/swipematch/internal/domain/model"
	"github.com/ivankudzin/swipematch/internal/services/connections"
	"github.com/ivankudzin/swipematch/internal/services/eventbus"
)

type recordingHandle struct {
	id     string
	accept bool
	done   chan struct{}

	mu   sync.Mutex
	sent [][]byte
}

func newRecordingHandle(id string, accept bool) *recordingHandle {
	return &recordingHandle{id: id, accept: accept, done: make(chan struct{})}
}

func (h *recordingHandle) ID() string { return h.id }

func (h *recordingHandle) Send(payload []byte) bool {
	if !h.accept {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, payload)
	return true
}

func (h *recordingHandle) Done() <-chan struct{} { return h.done }

func (h *recordingHandle) messages() [][]byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([][]byte(nil), h.sent...)
}

func startPump(t *testing.T, bus *eventbus.Bus, reg *connections.Registry) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewPump(bus, reg, zap.NewNop()).Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	// The pump subscribes asynchronously; wait until it listens.
	warmup := newRecordingHandle("warmup", true)
	require.NoError(t, reg.Register("warmup-user", warmup))
	require.Eventually(t, func() bool {
		_ = bus.Publish(eventbus.UserTopic("warmup-user"), model.MatchEvent{ID: "warmup"})
		return len(warmup.messages()) > 0
	}, 2*time.Second, 10*time.Millisecond)
	reg.Unregister(warmup)
}

func TestPumpDeliversToEveryHandleOfUser(t *testing.T) {
	bus := eventbus.New(64, 64, zap.NewNop())
	defer bus.Close()
	reg := connections.NewRegistry()
	startPump(t, bus, reg)

	tab1 := newRecordingHandle("tab1", true)
	tab2 := newRecordingHandle("tab2", true)
	other := newRecordingHandle("other", true)
	require.NoError(t, reg.Register("alice", tab1))
	require.NoError(t, reg.Register("alice", tab2))
	require.NoError(t, reg.Register("bob", other))

	occurred := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, bus.Publish(eventbus.UserTopic("alice"), model.MatchEvent{
		ID:                "evt-1",
		SubjectUserID:     "alice",
		CounterpartUserID: "bob",
		OccurredAt:        occurred,
	}))

	require.Eventually(t, func() bool {
		return len(tab1.messages()) == 1 && len(tab2.messages()) == 1
	}, 2*time.Second, 5*time.Millisecond)
	require.Empty(t, other.messages())

	var msg map[string]any
	require.NoError(t, json.Unmarshal(tab1.messages()[0], &msg))
	require.Equal(t, "match", msg["type"])
	require.Equal(t, "alice", msg["subjectUserId"])
	require.Equal(t, "bob", msg["counterpartUserId"])
	require.Equal(t, "evt-1", msg["eventId"])
	require.Equal(t, "2026-03-01T12:00:00Z", msg["occurredAt"])
}

func TestPumpSkipsDisconnectedAndFullHandles(t *testing.T) {
	bus := eventbus.New(64, 64, zap.NewNop())
	defer bus.Close()
	reg := connections.NewRegistry()
	startPump(t, bus, reg)

	gone := newRecordingHandle("gone", true)
	full := newRecordingHandle("full", false)
	live := newRecordingHandle("live", true)
	require.NoError(t, reg.Register("alice", gone))
	require.NoError(t, reg.Register("alice", full))
	require.NoError(t, reg.Register("alice", live))
	reg.Unregister(gone)

	require.Empty(t, lookup(reg.ConnectionsFor("alice"), "gone"))

	require.NoError(t, bus.Publish(eventbus.UserTopic("alice"), model.MatchEvent{ID: "evt-2"}))
	require.Eventually(t, func() bool { return len(live.messages()) == 1 }, 2*time.Second, 5*time.Millisecond)
	require.Empty(t, gone.messages())
}

func TestPumpIgnoresProjectTopics(t *testing.T) {
	bus := eventbus.New(64, 64, zap.NewNop())
	defer bus.Close()
	reg := connections.NewRegistry()
	startPump(t, bus, reg)

	owner := newRecordingHandle("owner", true)
	require.NoError(t, reg.Register("p1", owner))

	require.NoError(t, bus.Publish(eventbus.ProjectTopic("p1"), model.ProjectLikedEvent{ID: "evt-3"}))
	require.NoError(t, bus.Publish(eventbus.UserTopic("p1"), model.ProjectLikedEvent{
		ID:        "evt-4",
		ProjectID: "p1",
		ActorID:   "alice",
		Action:    enums.ProjectSwipeLike,
	}))

	require.Eventually(t, func() bool { return len(owner.messages()) == 1 }, 2*time.Second, 5*time.Millisecond)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(owner.messages()[0], &msg))
	require.Equal(t, "project_liked", msg["type"])
	require.Equal(t, "evt-4", msg["eventId"])
	require.Equal(t, "alice", msg["actorUserId"])
	require.Equal(t, "LIKE", msg["action"])
}

func TestPumpStopsWhenBusCloses(t *testing.T) {
	bus := eventbus.New(8, 8, zap.NewNop())
	done := make(chan error, 1)
	go func() { done <- NewPump(bus, connections.NewRegistry(), zap.NewNop()).Run(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	bus.Close()

	select {
	case err := <-done:
		if err != nil {
			require.ErrorIs(t, err, eventbus.ErrBusClosed)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("pump did not stop after bus close")
	}
}

func TestEncodeRejectsUnknownEvent(t *testing.T) {
	_, err := Encode("not an event")
	require.Error(t, err)
}

func lookup(handles []connections.Handle, id string) []connections.Handle {
	out := make([]connections.Handle, 0)
	for _, h := range handles {
		if h.ID() == id {
			out = append(out, h)
		}
	}
	return out
}
