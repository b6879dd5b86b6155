// Package registry tracks which connections are members of which rooms.
//
// Membership lives in the delivery process only: the broker carries messages
// between processes, and each instance resolves its own connections. All
// operations are idempotent and safe for concurrent use.
package registry

import (
	"sync"

	"github.com/google/uuid"
)

// Membership maps connection ids to the rooms they joined. The zero number of
// joined rooms is valid: a connection may be registered without joining any.
type Membership struct {
	mu    sync.RWMutex
	rooms map[string]map[uuid.UUID]struct{} // room -> connections
	conns map[uuid.UUID]map[string]struct{} // connection -> rooms
}

// NewMembership creates an empty membership registry.
func NewMembership() *Membership {
	return &Membership{
		rooms: make(map[string]map[uuid.UUID]struct{}),
		conns: make(map[uuid.UUID]map[string]struct{}),
	}
}

// Join adds a connection to a room. Joining twice is the same as joining once.
func (m *Membership) Join(connID uuid.UUID, roomID string) {
	if roomID == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rooms[roomID] == nil {
		m.rooms[roomID] = make(map[uuid.UUID]struct{})
	}
	m.rooms[roomID][connID] = struct{}{}

	if m.conns[connID] == nil {
		m.conns[connID] = make(map[string]struct{})
	}
	m.conns[connID][roomID] = struct{}{}
}

// Leave removes a connection from a room. No-op if it was not a member.
func (m *Membership) Leave(connID uuid.UUID, roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeLocked(connID, roomID)
}

// LeaveAll removes a connection from every room it joined. Called on
// disconnect.
func (m *Membership) LeaveAll(connID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for roomID := range m.conns[connID] {
		m.removeLocked(connID, roomID)
	}
	delete(m.conns, connID)
}

func (m *Membership) removeLocked(connID uuid.UUID, roomID string) {
	if conns, ok := m.rooms[roomID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(m.rooms, roomID)
		}
	}
	if rooms, ok := m.conns[connID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(m.conns, connID)
		}
	}
}

// MembersOf returns the connections currently in a room.
func (m *Membership) MembersOf(roomID string) []uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conns := m.rooms[roomID]
	members := make([]uuid.UUID, 0, len(conns))
	for id := range conns {
		members = append(members, id)
	}
	return members
}

// RoomsOf returns the rooms a connection has joined.
func (m *Membership) RoomsOf(connID uuid.UUID) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := make([]string, 0, len(m.conns[connID]))
	for roomID := range m.conns[connID] {
		rooms = append(rooms, roomID)
	}
	return rooms
}
