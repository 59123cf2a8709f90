package gateway

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/teleroom/teleroom/pkg/event"
	"github.com/teleroom/teleroom/pkg/registry"
	"github.com/teleroom/teleroom/pkg/transport"
	"github.com/tidwall/gjson"
)

// Inbound client event vocabulary.
const (
	inboundTyping      = "typing"
	inboundPing        = "ping"
	inboundReadReceipt = "read_receipt"
)

// messageHandler routes one session's inbound frames. The returned handler
// runs only on that session's read pump goroutine, so the malformed-frame
// counter needs no synchronization.
func (g *Gateway) messageHandler(sess *registry.Session) transport.MessageHandler {
	malformed := 0
	room, userID := sess.Room(), sess.UserID()

	return func(ctx context.Context, connID uuid.UUID, msg []byte) {
		if !gjson.ValidBytes(msg) {
			malformed++
			g.logger.Warn("dropping malformed frame",
				slog.String("room", room),
				slog.Int64("userID", userID),
				slog.Int("count", malformed),
			)
			if g.config.MalformedFrameMax > 0 && malformed >= g.config.MalformedFrameMax {
				g.teardown(sess, ErrTooManyMalformed)
			}
			return
		}

		switch gjson.GetBytes(msg, "type").String() {
		case inboundTyping:
			g.broadcaster.Broadcast(room, event.NewUserTyping(userID), userID)
		case inboundPing:
			g.broadcaster.SendToUser(room, userID, event.NewPong())
		case inboundReadReceipt:
			messageID := gjson.GetBytes(msg, "message_id").String()
			g.broadcaster.Broadcast(room, event.NewReadReceipt(userID, messageID), userID)
		default:
			// Unknown event types are ignored, not errors.
			g.logger.Debug("ignoring unknown client event",
				slog.String("type", gjson.GetBytes(msg, "type").String()),
				slog.Int64("userID", userID),
			)
		}
	}
}
