package registry

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State tracks a session's position in its one-way lifecycle.
type State int32

const (
	StateConnecting State = iota
	StateActive
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Sender is the outbound half of a live connection.
type Sender interface {
	// TrySend enqueues one serialized event without blocking. False means
	// the queue is full or the connection is going away.
	TrySend(message []byte) bool
	// Close releases the underlying transport. Must be idempotent.
	Close(err error)
}

// Session is one live, authenticated connection for a user in a room.
// The Registry owns the (room, user) slot it occupies; everyone else holds
// the session only to send to it or close it.
type Session struct {
	id        uuid.UUID
	room      string
	userID    int64
	sender    Sender
	createdAt time.Time

	state     atomic.Int32
	closeOnce sync.Once
	cause     error
}

func NewSession(room string, userID int64, sender Sender) *Session {
	s := &Session{
		id:        uuid.New(),
		room:      room,
		userID:    userID,
		sender:    sender,
		createdAt: time.Now(),
	}
	s.state.Store(int32(StateConnecting))
	return s
}

func (s *Session) ID() uuid.UUID        { return s.id }
func (s *Session) Room() string         { return s.room }
func (s *Session) UserID() int64        { return s.userID }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

func (s *Session) State() State {
	return State(s.state.Load())
}

// activate is called by the Registry while it holds its lock, so a session
// is never visible in a slot without being active.
func (s *Session) activate() {
	s.state.CompareAndSwap(int32(StateConnecting), int32(StateActive))
}

// TrySend delivers one serialized event if the session is active.
func (s *Session) TrySend(message []byte) bool {
	if s.State() != StateActive {
		return false
	}
	return s.sender.TrySend(message)
}

// Close moves the session to Closing exactly once, records the cause, and
// releases the transport. Safe to call from any goroutine, any number of
// times, in any state.
func (s *Session) Close(cause error) {
	s.closeOnce.Do(func() {
		s.cause = cause
		s.state.Store(int32(StateClosing))
		s.sender.Close(cause)
	})
}

// Finish marks the transport fully released. Called after the session has
// been detached from the Registry.
func (s *Session) Finish() {
	s.state.CompareAndSwap(int32(StateClosing), int32(StateClosed))
}

// Cause reports why the session was closed. Only meaningful once the state
// is Closing or Closed.
func (s *Session) Cause() error {
	if s.State() < StateClosing {
		return nil
	}
	return s.cause
}
