package models

import (
	"errors"
	"strings"
	"time"
)

// MaxContentLength is the upper bound on message content, in characters.
const MaxContentLength = 4000

var ErrInvalidMessageType = errors.New("invalid message type")

// MessageType tells whether a message belongs to a two-party thread or a group.
type MessageType string

const (
	MessageTypeDirect MessageType = "DIRECT"
	MessageTypeGroup  MessageType = "GROUP"
)

// ParseMessageType accepts the upper-case type names. USER is kept as an alias of DIRECT
// for older clients.
func ParseMessageType(s string) (MessageType, error) {
	switch strings.TrimSpace(s) {
	case string(MessageTypeDirect), "USER":
		return MessageTypeDirect, nil
	case string(MessageTypeGroup):
		return MessageTypeGroup, nil
	default:
		return "", ErrInvalidMessageType
	}
}

// TargetKind maps a message type to the kind of directory entry its target refers to.
func (t MessageType) TargetKind() TargetKind {
	if t == MessageTypeGroup {
		return TargetKindGroup
	}
	return TargetKindUser
}

// Message is a stored message row. Sender, target and type never change after creation.
type Message struct {
	ID        string      `db:"id" json:"id"`
	Content   string      `db:"content" json:"content"`
	Type      MessageType `db:"type" json:"type"`
	TargetID  string      `db:"target_id" json:"target_id"`
	SenderID  string      `db:"sender_id" json:"sender_id"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	DeletedAt *time.Time  `db:"deleted_at" json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the message has been tombstoned.
func (m Message) IsDeleted() bool {
	return m.DeletedAt != nil
}

func (m Message) AuditEntity() string { return "Message" }

func (m Message) AuditID() string { return m.ID }

func (m Message) AuditText() string { return m.Content }

// ThreadEntry is a message joined with its sender's display data.
type ThreadEntry struct {
	ID          string      `db:"id" json:"id"`
	Content     string      `db:"content" json:"content"`
	Type        MessageType `db:"type" json:"type"`
	TargetID    string      `db:"target_id" json:"target_id"`
	SenderID    string      `db:"sender_id" json:"sender_id"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	SenderName  string      `db:"sender_name" json:"sender_name"`
	SenderEmail string      `db:"sender_email" json:"sender_email"`
}
