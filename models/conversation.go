package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Participant kinds within a conversation.
const (
	ParticipantUser     = "user"
	ParticipantCompany  = TenantCompany
	ParticipantSupplier = TenantSupplier
)

// ParticipantKey builds the "{kind}:{id}" key used to index unread counters
func ParticipantKey(kind string, id uint) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

// Conversation is a persistent thread between a user and a business tenant.
// Exactly one conversation exists per participant pair; the composite unique
// index backs the duplicate-safe get-or-create.
type Conversation struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UserID             uint           `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"user_id"`
	User               User           `gorm:"foreignKey:UserID" json:"user"`
	TenantType         string         `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"tenant_type"`
	TenantID           uint           `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"tenant_id"`
	LastMessageAt      *time.Time     `gorm:"index" json:"last_message_at"`
	LastMessagePreview string         `json:"last_message_preview"`
	UnreadCount        int            `gorm:"-" json:"unread_count"` // annotated per caller on list
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserKey returns the participant key of the user side
func (c *Conversation) UserKey() string {
	return ParticipantKey(ParticipantUser, c.UserID)
}

// TenantKey returns the participant key of the business side
func (c *Conversation) TenantKey() string {
	return ParticipantKey(c.TenantType, c.TenantID)
}

// HasParticipant reports whether (kind, id) is one of the two participants
func (c *Conversation) HasParticipant(kind string, id uint) bool {
	if kind == ParticipantUser {
		return c.UserID == id
	}
	return c.TenantType == kind && c.TenantID == id
}

// OtherKey returns the participant key of the counterpart of (kind, id)
func (c *Conversation) OtherKey(kind string, id uint) string {
	if kind == ParticipantUser && c.UserID == id {
		return c.TenantKey()
	}
	return c.UserKey()
}

// TableName specifies the table name for the Conversation model
func (Conversation) TableName() string {
	return "conversations"
}

// ConversationParticipant holds the per-participant unread counter for a
// conversation. Counters are non-negative; only the owning participant's
// mark-read resets them.
type ConversationParticipant struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;uniqueIndex:idx_conversation_participant" json:"conversation_id"`
	Kind           string    `gorm:"not null;uniqueIndex:idx_conversation_participant" json:"kind"` // user, company, supplier
	ParticipantID  uint      `gorm:"not null;uniqueIndex:idx_conversation_participant" json:"participant_id"`
	UnreadCount    int       `gorm:"not null;default:0" json:"unread_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Key returns the participant key ("{kind}:{id}") of this row
func (p *ConversationParticipant) Key() string {
	return ParticipantKey(p.Kind, p.ParticipantID)
}

// TableName specifies the table name for the ConversationParticipant model
func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}
