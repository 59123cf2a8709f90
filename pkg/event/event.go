// Package event defines the tagged JSON objects the server pushes to clients.
package event

import "time"

type Type string

const (
	TypeNewMessage  Type = "new_message"
	TypeUserTyping  Type = "user_typing"
	TypeReadReceipt Type = "read_receipt"
	TypePresence    Type = "presence"
	TypePong        Type = "pong"
	TypeUserBanned  Type = "user_banned"
	TypeMuted       Type = "muted"
)

// Presence event kinds, carried in the Event field.
const (
	PresenceJoined = "user_joined"
	PresenceLeft   = "user_left"
)

// Event is anything that marshals to a single tagged JSON object.
type Event interface {
	Kind() Type
}

type NewMessage struct {
	Type    Type `json:"type"`
	Message any  `json:"message"`
}

func (NewMessage) Kind() Type { return TypeNewMessage }

// NewMessageEvent wraps an already-persisted message for fan-out.
func NewMessageEvent(message any) NewMessage {
	return NewMessage{Type: TypeNewMessage, Message: message}
}

type UserTyping struct {
	Type      Type   `json:"type"`
	UserID    int64  `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

func (UserTyping) Kind() Type { return TypeUserTyping }

func NewUserTyping(userID int64) UserTyping {
	return UserTyping{Type: TypeUserTyping, UserID: userID, Timestamp: now()}
}

type ReadReceipt struct {
	Type      Type   `json:"type"`
	UserID    int64  `json:"user_id"`
	MessageID string `json:"message_id"`
	Timestamp string `json:"timestamp"`
}

func (ReadReceipt) Kind() Type { return TypeReadReceipt }

func NewReadReceipt(userID int64, messageID string) ReadReceipt {
	return ReadReceipt{Type: TypeReadReceipt, UserID: userID, MessageID: messageID, Timestamp: now()}
}

// Presence announces a membership change together with the room's new
// online count.
type Presence struct {
	Type        Type   `json:"type"`
	Event       string `json:"event"`
	UserID      int64  `json:"user_id"`
	OnlineCount int    `json:"online_count"`
	Timestamp   string `json:"timestamp"`
}

func (Presence) Kind() Type { return TypePresence }

func NewPresence(kind string, userID int64, onlineCount int) Presence {
	return Presence{Type: TypePresence, Event: kind, UserID: userID, OnlineCount: onlineCount, Timestamp: now()}
}

type Pong struct {
	Type      Type   `json:"type"`
	Timestamp string `json:"timestamp"`
}

func (Pong) Kind() Type { return TypePong }

func NewPong() Pong {
	return Pong{Type: TypePong, Timestamp: now()}
}

type UserBanned struct {
	Type      Type   `json:"type"`
	UserID    int64  `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

func (UserBanned) Kind() Type { return TypeUserBanned }

func NewUserBanned(userID int64) UserBanned {
	return UserBanned{Type: TypeUserBanned, UserID: userID, Timestamp: now()}
}

type Muted struct {
	Type      Type   `json:"type"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

func (Muted) Kind() Type { return TypeMuted }

func NewMuted(reason string) Muted {
	return Muted{Type: TypeMuted, Reason: reason, Timestamp: now()}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
