/*
Package chat contains the core logic for chat rooms, live connections and message delivery.

This file defines the Registry, the process-wide map from room id to the set of live
connections subscribed to that room. Each room carries its own lock, so joins, leaves and
broadcasts in unrelated rooms never contend. The registry is single-process in scope.
*/
package chat

import (
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"roomchat/internal/pkg/logx"
)

// Conn is a live push channel registered under a room.
type Conn interface {
	// Send queues payload for delivery. An error means the connection can no longer
	// receive and must be dropped.
	Send(payload []byte) error

	// Close ends the connection with a WebSocket close code and reason.
	Close(code int, reason string)
}

// room is the connection set of a single chat.
type room struct {
	mu    sync.Mutex
	conns map[Conn]struct{}

	// dead is set once the set has drained and the entry is being removed.
	// A dead room never accepts new connections.
	dead atomic.Bool
}

// Registry tracks which connections are listening on which rooms.
type Registry struct {
	// mu guards the rooms map only, never the per-room sets.
	mu    sync.RWMutex
	rooms map[int64]*room

	logger zerolog.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[int64]*room),
		logger: logx.Component("Registry"),
	}
}

// getOrCreate returns a live room entry for roomID, replacing a dead one if needed.
func (reg *Registry) getOrCreate(roomID int64) *room {
	reg.mu.RLock()
	r, ok := reg.rooms[roomID]
	reg.mu.RUnlock()

	if ok && !r.dead.Load() {
		return r
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok = reg.rooms[roomID]
	if !ok || r.dead.Load() {
		r = &room{conns: make(map[Conn]struct{})}
		reg.rooms[roomID] = r
	}
	return r
}

func (reg *Registry) lookup(roomID int64) *room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.rooms[roomID]
}

// Join registers c under roomID, creating the room entry if absent.
// Callers must have authorized the connection for the room beforehand.
func (reg *Registry) Join(roomID int64, c Conn) {
	for {
		r := reg.getOrCreate(roomID)

		r.mu.Lock()
		if r.dead.Load() {
			// Lost the race against the last Leave; retry on a fresh entry.
			r.mu.Unlock()
			continue
		}
		r.conns[c] = struct{}{}
		size := len(r.conns)
		r.mu.Unlock()

		reg.logger.Debug().Int64("room_id", roomID).Int("connections", size).Msg("Connection joined room.")
		return
	}
}

// Leave removes c from roomID. The room entry is deleted once its set is empty.
// Leaving a room the connection is not registered in is a no-op.
func (reg *Registry) Leave(roomID int64, c Conn) {
	r := reg.lookup(roomID)
	if r == nil {
		return
	}

	r.mu.Lock()
	if _, ok := r.conns[c]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.conns, c)
	size := len(r.conns)
	if size == 0 {
		r.dead.Store(true)
	}
	r.mu.Unlock()

	reg.logger.Debug().Int64("room_id", roomID).Int("connections", size).Msg("Connection left room.")

	if size > 0 {
		return
	}

	reg.mu.Lock()
	if reg.rooms[roomID] == r {
		delete(reg.rooms, roomID)
	}
	reg.mu.Unlock()

	reg.logger.Debug().Int64("room_id", roomID).Msg("Room is empty. Entry removed.")
}

// Broadcast sends payload to every connection registered under roomID at the time of the
// call and returns how many sends succeeded. A room with no entry is a no-op.
// A connection whose send fails is removed and closed; the others still receive payload.
func (reg *Registry) Broadcast(roomID int64, payload []byte) int {
	r := reg.lookup(roomID)
	if r == nil {
		return 0
	}

	r.mu.Lock()
	snapshot := make([]Conn, 0, len(r.conns))
	for c := range r.conns {
		snapshot = append(snapshot, c)
	}
	r.mu.Unlock()

	delivered := 0
	for _, c := range snapshot {
		if err := c.Send(payload); err != nil {
			reg.logger.Warn().Err(err).Int64("room_id", roomID).Msg("Send failed, dropping connection.")
			reg.Leave(roomID, c)
			c.Close(websocket.CloseTryAgainLater, "Send failed")
			continue
		}
		delivered++
	}

	return delivered
}

// RoomSize reports the number of connections in roomID and whether the entry exists.
func (reg *Registry) RoomSize(roomID int64) (int, bool) {
	r := reg.lookup(roomID)
	if r == nil {
		return 0, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns), true
}

// RoomCount returns the number of room entries.
func (reg *Registry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Shutdown closes every registered connection with 1001 "going away" and empties the registry.
func (reg *Registry) Shutdown() {
	reg.logger.Info().Msg("Shutting down registry...")

	reg.mu.Lock()
	rooms := reg.rooms
	reg.rooms = make(map[int64]*room)
	reg.mu.Unlock()

	closed := 0
	for _, r := range rooms {
		r.mu.Lock()
		r.dead.Store(true)
		conns := r.conns
		r.conns = make(map[Conn]struct{})
		r.mu.Unlock()

		for c := range conns {
			c.Close(websocket.CloseGoingAway, "Server shutting down")
			closed++
		}
	}

	reg.logger.Info().Int("connections_closed", closed).Msg("Registry shutdown complete.")
}
