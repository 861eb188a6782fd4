package chat

import (
	"errors"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu        sync.Mutex
	received  [][]byte
	fail      bool
	closed    bool
	closeCode int
}

func (f *fakeConn) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.received = append(f.received, payload)
	return nil
}

func (f *fakeConn) Close(code int, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.closeCode = code
}

func (f *fakeConn) messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.received...)
}

func TestRegistry_JoinLeaveDeletesEmptyRoom(t *testing.T) {
	reg := NewRegistry()
	a, b := &fakeConn{}, &fakeConn{}

	reg.Join(1, a)
	reg.Join(1, b)

	size, ok := reg.RoomSize(1)
	require.True(t, ok)
	assert.Equal(t, 2, size)

	reg.Leave(1, a)
	size, ok = reg.RoomSize(1)
	require.True(t, ok)
	assert.Equal(t, 1, size)

	reg.Leave(1, b)
	_, ok = reg.RoomSize(1)
	assert.False(t, ok)
	assert.Zero(t, reg.RoomCount())
}

func TestRegistry_LeaveIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	a, b := &fakeConn{}, &fakeConn{}

	reg.Join(3, a)
	reg.Join(3, b)
	reg.Leave(3, a)
	reg.Leave(3, a)
	reg.Leave(4, a)

	size, ok := reg.RoomSize(3)
	require.True(t, ok)
	assert.Equal(t, 1, size)
}

func TestRegistry_BroadcastWithoutRoomIsNoop(t *testing.T) {
	reg := NewRegistry()
	assert.Zero(t, reg.Broadcast(42, []byte("x")))
	assert.Zero(t, reg.RoomCount())
}

func TestRegistry_BroadcastDropsFailingConnection(t *testing.T) {
	reg := NewRegistry()
	good1, bad, good2 := &fakeConn{}, &fakeConn{fail: true}, &fakeConn{}

	reg.Join(5, good1)
	reg.Join(5, bad)
	reg.Join(5, good2)

	delivered := reg.Broadcast(5, []byte("hi"))

	assert.Equal(t, 2, delivered)
	assert.Len(t, good1.messages(), 1)
	assert.Len(t, good2.messages(), 1)
	assert.True(t, bad.closed)

	size, _ := reg.RoomSize(5)
	assert.Equal(t, 2, size)
}

func TestRegistry_BroadcastOnlyFailingConnectionRemovesRoom(t *testing.T) {
	reg := NewRegistry()
	reg.Join(6, &fakeConn{fail: true})

	assert.Zero(t, reg.Broadcast(6, []byte("hi")))
	_, ok := reg.RoomSize(6)
	assert.False(t, ok)
}

func TestRegistry_EntryExistsIffNonEmpty(t *testing.T) {
	reg := NewRegistry()
	conns := make([]*fakeConn, 8)
	for i := range conns {
		conns[i] = &fakeConn{}
	}

	rng := rand.New(rand.NewPCG(1, 2))
	joined := map[int64]map[*fakeConn]bool{}

	for range 2000 {
		roomID := int64(rng.IntN(3))
		c := conns[rng.IntN(len(conns))]
		if joined[roomID] == nil {
			joined[roomID] = map[*fakeConn]bool{}
		}

		if rng.IntN(2) == 0 {
			reg.Join(roomID, c)
			joined[roomID][c] = true
		} else {
			reg.Leave(roomID, c)
			delete(joined[roomID], c)
		}

		for id := int64(0); id < 3; id++ {
			size, ok := reg.RoomSize(id)
			want := len(joined[id])
			assert.Equal(t, want > 0, ok, "room %d", id)
			assert.Equal(t, want, size, "room %d", id)
		}
	}
}

func TestRegistry_ConcurrentJoinLeaveBroadcast(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for w := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			roomID := int64(w % 4)
			for range 200 {
				c := &fakeConn{}
				reg.Join(roomID, c)
				reg.Broadcast(roomID, []byte("x"))
				reg.Leave(roomID, c)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, reg.RoomCount())
}

func TestRegistry_JoinedConnectionReceivesConcurrentBroadcast(t *testing.T) {
	reg := NewRegistry()
	listener := &fakeConn{}
	reg.Join(9, listener)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				c := &fakeConn{}
				reg.Join(9, c)
				reg.Leave(9, c)
			}
		}()
	}

	for range 100 {
		reg.Broadcast(9, []byte("m"))
	}
	wg.Wait()

	assert.Len(t, listener.messages(), 100)
	size, ok := reg.RoomSize(9)
	require.True(t, ok)
	assert.Equal(t, 1, size)
}

func TestRegistry_Shutdown(t *testing.T) {
	reg := NewRegistry()
	a, b := &fakeConn{}, &fakeConn{}
	reg.Join(1, a)
	reg.Join(2, b)

	reg.Shutdown()

	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Equal(t, websocket.CloseGoingAway, a.closeCode)
	assert.Zero(t, reg.RoomCount())
}
