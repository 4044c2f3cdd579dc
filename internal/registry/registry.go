// Package registry tracks which rooms exist and which identities are
// currently present in each. Rooms are created lazily on first reference and
// never deleted here; deletion is an administrative concern.
package registry

import (
	"sync"
)

// Room holds the presence state for a single named room. Each room carries
// its own lock, so operations on different rooms never contend.
type Room struct {
	name string

	mu sync.Mutex
	// members maps an identity to its number of live sessions. A user on
	// several devices holds one membership entry with a session count; the
	// membership disappears only when the last session leaves.
	members map[string]int
}

// Name returns the room's unique name.
func (r *Room) Name() string {
	return r.name
}

// Join records one session for the given identity. It returns true when this
// is the identity's first live session in the room, i.e. the membership
// entry was created.
func (r *Room) Join(identity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members[identity]++
	return r.members[identity] == 1
}

// Leave records the end of one session for the given identity. The
// membership entry is removed when its last session leaves. Leaving an
// absent identity is a no-op.
func (r *Room) Leave(identity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.members[identity]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(r.members, identity)
		return true
	}
	r.members[identity] = n - 1
	return false
}

// MemberCount returns the number of distinct identities currently present.
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Members returns a snapshot of the identities currently present.
func (r *Room) Members() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.members))
	for identity := range r.members {
		out = append(out, identity)
	}
	return out
}

// Registry is the concurrent table of all known rooms.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// GetOrCreate returns the room with the given name, creating it if this is
// the first reference. It is idempotent and safe under concurrent calls for
// the same name; at most one Room is ever created per name.
func (reg *Registry) GetOrCreate(name string) *Room {
	reg.mu.RLock()
	room, ok := reg.rooms[name]
	reg.mu.RUnlock()
	if ok {
		return room
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	// Re-check under the write lock: another caller may have won the race.
	if room, ok := reg.rooms[name]; ok {
		return room
	}
	room = &Room{
		name:    name,
		members: make(map[string]int),
	}
	reg.rooms[name] = room
	return room
}

// Get returns the room with the given name, or nil if it has never been
// referenced.
func (reg *Registry) Get(name string) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.rooms[name]
}

// MemberCount returns the number of distinct identities present in the named
// room. Unknown rooms report zero.
func (reg *Registry) MemberCount(name string) int {
	room := reg.Get(name)
	if room == nil {
		return 0
	}
	return room.MemberCount()
}

// Rooms returns a snapshot of all known rooms.
func (reg *Registry) Rooms() []*Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	out := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		out = append(out, room)
	}
	return out
}
