// Package archive keeps transcripts of web views so a conversation survives a restart
package archive

import (
	"context"
	"time"

	"github.com/ethanbaker/mitra/pkg/chat"
	"github.com/google/uuid"
)

// Store defines the operations the web front end needs from a transcript archive
type Store interface {
	SaveMessage(ctx context.Context, viewID uuid.UUID, msg chat.Message) error
	GetMessages(ctx context.Context, viewID uuid.UUID) ([]chat.Message, error)
	DeleteMessages(ctx context.Context, viewID uuid.UUID) error
	Close() error
}

// Record is a single archived transcript message
type Record struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`

	ViewID    uuid.UUID `json:"view_id" gorm:"type:char(36);not null;index"`
	MessageID string    `json:"message_id" gorm:"type:char(36);not null;uniqueIndex"`
	Role      string    `json:"role" gorm:"size:20;not null"`
	Content   string    `json:"content" gorm:"type:text"`
	SentAt    time.Time `json:"sent_at" gorm:"not null"`
}

// TableName overrides the table name used by gorm
func (Record) TableName() string {
	return "transcript_messages"
}

// NewRecord converts a transcript message for storage
func NewRecord(viewID uuid.UUID, msg chat.Message) *Record {
	return &Record{
		ViewID:    viewID,
		MessageID: msg.ID,
		Role:      string(msg.Role),
		Content:   msg.Content,
		SentAt:    msg.Timestamp,
	}
}

// Message converts the record back into a transcript message
func (r *Record) Message() chat.Message {
	return chat.Message{
		ID:        r.MessageID,
		Content:   r.Content,
		Role:      chat.Role(r.Role),
		Timestamp: r.SentAt,
	}
}
