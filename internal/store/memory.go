package store

import (
	"context"
	"sync"
	"time"
)

// Memory is the zero-config Store used when no Redis address is configured,
// and the test double everywhere else.
type Memory struct {
	mu       sync.Mutex
	messages map[string][]Message
	nextID   int64
	cap      int
}

func NewMemory(historyCap int) *Memory {
	return &Memory{
		messages: make(map[string][]Message),
		cap:      historyCap,
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) Append(_ context.Context, room string, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	msg.ID = m.nextID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	log := append(m.messages[room], *msg)
	if m.cap > 0 && len(log) > m.cap {
		log = log[len(log)-m.cap:]
	}
	m.messages[room] = log
	return nil
}

func (m *Memory) Recent(_ context.Context, room string, limit int) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.messages[room]
	if limit > 0 && len(log) > limit {
		log = log[len(log)-limit:]
	}
	out := make([]Message, len(log))
	copy(out, log)
	return out, nil
}

func (m *Memory) Close() error {
	return nil
}
