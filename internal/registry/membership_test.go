package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMembership_JoinAndMembersOf(t *testing.T) {
	m := NewMembership()
	a, b := uuid.New(), uuid.New()

	m.Join(a, "r1")
	m.Join(b, "r1")
	m.Join(b, "r2")

	assert.ElementsMatch(t, []uuid.UUID{a, b}, m.MembersOf("r1"))
	assert.ElementsMatch(t, []uuid.UUID{b}, m.MembersOf("r2"))
	assert.Empty(t, m.MembersOf("r3"))
}

func TestMembership_JoinIsIdempotent(t *testing.T) {
	m := NewMembership()
	a := uuid.New()

	m.Join(a, "r1")
	m.Join(a, "r1")

	assert.Len(t, m.MembersOf("r1"), 1)
	assert.Equal(t, []string{"r1"}, m.RoomsOf(a))
}

func TestMembership_Leave(t *testing.T) {
	m := NewMembership()
	a := uuid.New()

	m.Join(a, "r1")
	m.Leave(a, "r1")
	assert.Empty(t, m.MembersOf("r1"))

	// Leaving a room never joined is a no-op
	m.Leave(a, "never-joined")
	assert.Empty(t, m.RoomsOf(a))
}

func TestMembership_LeaveAll(t *testing.T) {
	m := NewMembership()
	a, b := uuid.New(), uuid.New()

	m.Join(a, "r1")
	m.Join(a, "r2")
	m.Join(b, "r1")

	m.LeaveAll(a)

	assert.Empty(t, m.RoomsOf(a))
	assert.ElementsMatch(t, []uuid.UUID{b}, m.MembersOf("r1"))
	assert.Empty(t, m.MembersOf("r2"))
}

func TestMembership_EmptyRoomIDIgnored(t *testing.T) {
	m := NewMembership()
	a := uuid.New()

	m.Join(a, "")
	assert.Empty(t, m.RoomsOf(a))
}

func TestMembership_ConcurrentAccess(t *testing.T) {
	m := NewMembership()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := uuid.New()
			room := fmt.Sprintf("room-%d", n%5)
			m.Join(id, room)
			m.MembersOf(room)
			m.Leave(id, room)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		assert.Empty(t, m.MembersOf(fmt.Sprintf("room-%d", i)))
	}
}
