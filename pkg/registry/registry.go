// Package registry is the authoritative map of live chat sessions. It
// guarantees at most one current session per (room, user) slot; every other
// component reads membership through its synchronized API.
package registry

import (
	"log/slog"
	"sync"
)

type Registry struct {
	mu    sync.Mutex
	rooms map[string]map[int64]*Session

	logger *slog.Logger
}

func New(logger *slog.Logger) *Registry {
	return &Registry{
		rooms:  make(map[string]map[int64]*Session),
		logger: logger.With(slog.String("component", "registry")),
	}
}

// Add installs sess as the current occupant of (room, userID) and activates
// it. If the slot was already occupied, the previous session is detached and
// returned; the caller is responsible for closing it. There is no window in
// which a lookup observes the evicted session as current.
func (r *Registry) Add(room string, userID int64, sess *Session) (evicted *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, ok := r.rooms[room]
	if !ok {
		users = make(map[int64]*Session)
		r.rooms[room] = users
	}
	evicted = users[userID]
	users[userID] = sess
	sess.activate()

	if evicted != nil {
		r.logger.Debug("session replaced", "room", room, "userID", userID, "evicted", evicted.ID().String())
	} else {
		r.logger.Debug("session added", "room", room, "userID", userID, "sessionID", sess.ID().String())
	}
	return evicted
}

// Remove deletes the (room, userID) entry only if sess is still the current
// occupant. A stale handle (already replaced or already removed) is a no-op,
// so a slow disconnect can never delete a newer session. Reports whether the
// slot was emptied. Empty rooms are pruned.
func (r *Registry) Remove(room string, userID int64, sess *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, ok := r.rooms[room]
	if !ok {
		return false
	}
	current, ok := users[userID]
	if !ok || current != sess {
		return false
	}
	delete(users, userID)
	if len(users) == 0 {
		delete(r.rooms, room)
		r.logger.Debug("removed empty room", "room", room)
	}
	r.logger.Debug("session removed", "room", room, "userID", userID, "sessionID", sess.ID().String())
	return true
}

// Snapshot returns a point-in-time copy of the room's sessions for
// iteration. Later mutations are not reflected in the returned slice.
func (r *Registry) Snapshot(room string) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, ok := r.rooms[room]
	if !ok {
		return nil
	}
	sessions := make([]*Session, 0, len(users))
	for _, s := range users {
		sessions = append(sessions, s)
	}
	return sessions
}

// Lookup returns the current session for (room, userID), if any.
func (r *Registry) Lookup(room string, userID int64) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, ok := r.rooms[room]
	if !ok {
		return nil, false
	}
	s, ok := users[userID]
	return s, ok
}

// Count reports how many users are currently live in the room.
func (r *Registry) Count(room string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[room])
}

// CountAll reports the number of live sessions across all rooms.
func (r *Registry) CountAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, users := range r.rooms {
		total += len(users)
	}
	return total
}

// Rooms lists the rooms that currently have at least one session.
func (r *Registry) Rooms() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms := make([]string, 0, len(r.rooms))
	for room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}
