package connections

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	id   string
	done chan struct{}

	mu   sync.Mutex
	sent [][]byte
}

func newFakeHandle(id string) *fakeHandle {
	return &fakeHandle{id: id, done: make(chan struct{})}
}

func (h *fakeHandle) ID() string { return h.id }

func (h *fakeHandle) Send(payload []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, payload)
	return true
}

func (h *fakeHandle) Done() <-chan struct{} { return h.done }

func TestRegistryMultipleHandlesPerUser(t *testing.T) {
	reg := NewRegistry()
	h1 := newFakeHandle("h1")
	h2 := newFakeHandle("h2")

	require.NoError(t, reg.Register("u1", h1))
	require.NoError(t, reg.Register("u1", h2))
	require.ElementsMatch(t, []Handle{h1, h2}, reg.ConnectionsFor("u1"))
	require.Equal(t, Stats{Users: 1, Handles: 2}, reg.Stats())

	require.True(t, reg.Unregister(h1))
	require.Equal(t, []Handle{h2}, reg.ConnectionsFor("u1"))
}

func TestRegistryHandleBelongsToOneUser(t *testing.T) {
	reg := NewRegistry()
	h := newFakeHandle("h1")

	require.NoError(t, reg.Register("u1", h))
	require.NoError(t, reg.Register("u1", h))
	require.ErrorIs(t, reg.Register("u2", h), ErrHandleOwned)
	require.Empty(t, reg.ConnectionsFor("u2"))
	require.Equal(t, Stats{Users: 1, Handles: 1}, reg.Stats())
}

func TestRegistryRejectsInvalidInput(t *testing.T) {
	reg := NewRegistry()
	require.ErrorIs(t, reg.Register("", newFakeHandle("h1")), ErrValidation)
	require.ErrorIs(t, reg.Register("u1", nil), ErrValidation)
	require.ErrorIs(t, reg.Register("u1", newFakeHandle("")), ErrValidation)
}

func TestRegistryUnregisterIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	h := newFakeHandle("h1")

	require.False(t, reg.Unregister(h))
	require.NoError(t, reg.Register("u1", h))
	require.True(t, reg.Unregister(h))
	require.False(t, reg.Unregister(h))
	require.Nil(t, reg.ConnectionsFor("u1"))
}

func TestRegistryConnectDisconnectCyclesLeaveNoState(t *testing.T) {
	reg := NewRegistry()

	for i := 0; i < 1000; i++ {
		h := newFakeHandle(fmt.Sprintf("h-%d", i))
		userID := fmt.Sprintf("u-%d", i%7)
		require.NoError(t, reg.Register(userID, h))
		require.True(t, reg.Unregister(h))
	}

	require.Equal(t, Stats{}, reg.Stats())
	require.Empty(t, reg.byUser)
	require.Empty(t, reg.owners)
}

func TestRegistryConcurrentRegisterUnregister(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				h := newFakeHandle(fmt.Sprintf("w%d-h%d", w, i))
				if err := reg.Register("shared", h); err != nil {
					t.Errorf("register: %v", err)
					return
				}
				_ = reg.ConnectionsFor("shared")
				reg.Unregister(h)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, Stats{}, reg.Stats())
}

func TestRegistrySweepRemovesClosedHandles(t *testing.T) {
	reg := NewRegistry()
	alive := newFakeHandle("alive")
	gone := newFakeHandle("gone")

	require.NoError(t, reg.Register("u1", alive))
	require.NoError(t, reg.Register("u2", gone))

	close(gone.done)

	require.Equal(t, 1, reg.Sweep())
	require.Equal(t, Stats{Users: 1, Handles: 1}, reg.Stats())
	require.Nil(t, reg.ConnectionsFor("u2"))
	require.Equal(t, 0, reg.Sweep())
}

func TestRegistrySnapshotIsStable(t *testing.T) {
	reg := NewRegistry()
	h1 := newFakeHandle("h1")
	require.NoError(t, reg.Register("u1", h1))

	snapshot := reg.ConnectionsFor("u1")
	require.True(t, reg.Unregister(h1))
	require.Len(t, snapshot, 1)
	require.True(t, snapshot[0].Send([]byte("still usable")))
}
