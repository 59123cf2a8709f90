// Package gateway drives chat sessions through their lifecycle: admit an
// authenticated connection, route its inbound events, and tear it down on
// disconnect, eviction, or misbehavior.
package gateway

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/teleroom/teleroom/internal/broadcast"
	"github.com/teleroom/teleroom/internal/presence"
	"github.com/teleroom/teleroom/pkg/registry"
	"github.com/teleroom/teleroom/pkg/transport"
)

// Close causes recorded on sessions the gateway tears down.
var (
	ErrReplaced         = errors.New("replaced by a newer session")
	ErrBanned           = errors.New("administratively disconnected")
	ErrShutdown         = errors.New("server shutting down")
	ErrTooManyMalformed = errors.New("too many malformed frames")
)

// Conn is the transport surface the gateway drives. *transport.Connection
// satisfies it; tests substitute fakes.
type Conn interface {
	registry.Sender
	SetOnMessageHandler(transport.MessageHandler)
	SetOnCloseHandler(transport.OnCloseHandler)
}

type Config struct {
	// MalformedFrameMax is how many unparseable frames a session may send
	// before it is closed. Zero or negative disables the limit.
	MalformedFrameMax int
}

type Gateway struct {
	registry    *registry.Registry
	broadcaster *broadcast.Broadcaster
	presence    *presence.Tracker
	config      Config
	logger      *slog.Logger
}

func New(reg *registry.Registry, b *broadcast.Broadcaster, p *presence.Tracker, cfg Config, logger *slog.Logger) *Gateway {
	g := &Gateway{
		registry:    reg,
		broadcaster: b,
		presence:    p,
		config:      cfg,
		logger:      logger.With(slog.String("component", "gateway")),
	}
	// Failed sends observed by the broadcaster get the same teardown as any
	// other disconnect, so the room hears about them.
	b.OnEvict(g.Discard)
	return g
}

// Admit installs a session for an authenticated (room, user) pair. Any
// previous session for the slot is closed as replaced; a join is announced
// only when the user was not already present, so a quick reconnect does not
// notify the room twice.
func (g *Gateway) Admit(room string, userID int64, conn Conn) *registry.Session {
	sess := registry.NewSession(room, userID, conn)
	conn.SetOnMessageHandler(g.messageHandler(sess))
	conn.SetOnCloseHandler(func(_ uuid.UUID, err error) {
		g.teardown(sess, err)
	})

	evicted := g.registry.Add(room, userID, sess)
	if evicted != nil {
		evicted.Close(ErrReplaced)
		g.logger.Info("evicted previous session",
			slog.String("room", room),
			slog.Int64("userID", userID),
			slog.String("evicted", evicted.ID().String()),
		)
	} else {
		g.presence.Joined(room, userID)
	}
	return sess
}

// teardown detaches the session from the registry and, if it actually
// occupied its slot, announces the departure. Safe to run more than once and
// from any goroutine.
func (g *Gateway) teardown(sess *registry.Session, cause error) {
	sess.Close(cause)
	removed := g.registry.Remove(sess.Room(), sess.UserID(), sess)
	sess.Finish()
	if removed {
		g.presence.Left(sess.Room(), sess.UserID())
	}
}

// Discard is the broadcaster's eviction hook for unresponsive recipients.
func (g *Gateway) Discard(sess *registry.Session, cause error) {
	g.logger.Warn("discarding session",
		slog.String("room", sess.Room()),
		slog.Int64("userID", sess.UserID()),
		slog.Any("cause", cause),
	)
	g.teardown(sess, cause)
}

// Kick administratively disconnects a user's current session. Reports
// whether a live session existed.
func (g *Gateway) Kick(room string, userID int64, cause error) bool {
	sess, ok := g.registry.Lookup(room, userID)
	if !ok {
		return false
	}
	g.teardown(sess, cause)
	return true
}

// DisconnectAll closes every live session, room by room. Used on shutdown.
func (g *Gateway) DisconnectAll(cause error) {
	for _, room := range g.registry.Rooms() {
		for _, sess := range g.registry.Snapshot(room) {
			g.teardown(sess, cause)
		}
	}
}
