package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dateshub/dateshub-api/config"
	"github.com/dateshub/dateshub-api/models"
)

// isDuplicateErr detects unique-constraint violations across PostgreSQL and
// SQLite without driver-specific error types
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// GetOrCreateConversation resolves the single conversation between a user and
// a business tenant, creating it (with zeroed unread counters for both
// participants) on first use. Concurrent first calls race on the composite
// unique index; the loser of the race re-reads the winner's row.
func GetOrCreateConversation(userID uint, tenantType string, tenantID uint) (*models.Conversation, error) {
	db := config.GetDB()

	lookup := func() (*models.Conversation, error) {
		var conv models.Conversation
		err := db.Where("user_id = ? AND tenant_type = ? AND tenant_id = ?", userID, tenantType, tenantID).
			First(&conv).Error
		if err != nil {
			return nil, err
		}
		return &conv, nil
	}

	if conv, err := lookup(); err == nil {
		return conv, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv := models.Conversation{
		UserID:     userID,
		TenantType: tenantType,
		TenantID:   tenantID,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		participants := []models.ConversationParticipant{
			{ConversationID: conv.ID, Kind: models.ParticipantUser, ParticipantID: userID},
			{ConversationID: conv.ID, Kind: tenantType, ParticipantID: tenantID},
		}
		return tx.Create(&participants).Error
	})
	if err != nil {
		if isDuplicateErr(err) {
			// Lost the creation race; the pair's conversation exists now
			return lookup()
		}
		return nil, err
	}

	return &conv, nil
}

// AppendMessage persists a message, refreshes the conversation's last-message
// metadata and increments the unread counter of the participant who did not
// author it. The sender's own counter is untouched.
func AppendMessage(conv *models.Conversation, message *models.Message) error {
	db := config.GetDB()
	now := time.Now()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Conversation{}).
			Where("id = ?", conv.ID).
			Updates(map[string]interface{}{
				"last_message_at":      now,
				"last_message_preview": message.Preview(),
			}).Error; err != nil {
			return err
		}

		otherKind, otherID := otherParticipant(conv, message.SenderKind, message.SenderID)
		result := tx.Model(&models.ConversationParticipant{}).
			Where("conversation_id = ? AND kind = ? AND participant_id = ?", conv.ID, otherKind, otherID).
			UpdateColumn("unread_count", gorm.Expr("unread_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Participant row missing for conversations created before
			// counters existed; seed it with this message counted.
			return tx.Create(&models.ConversationParticipant{
				ConversationID: conv.ID,
				Kind:           otherKind,
				ParticipantID:  otherID,
				UnreadCount:    1,
			}).Error
		}
		return nil
	})
}

func otherParticipant(conv *models.Conversation, senderKind string, senderID uint) (string, uint) {
	if senderKind == models.ParticipantUser && conv.UserID == senderID {
		return conv.TenantType, conv.TenantID
	}
	return models.ParticipantUser, conv.UserID
}

// MarkConversationRead resets the given participant's unread counter to zero.
// Idempotent; other participants' counters are untouched.
func MarkConversationRead(conversationID uint, kind string, participantID uint) error {
	db := config.GetDB()
	return db.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND kind = ? AND participant_id = ?", conversationID, kind, participantID).
		UpdateColumn("unread_count", 0).Error
}

// UnreadCount returns the participant's unread counter for one conversation
func UnreadCount(conversationID uint, kind string, participantID uint) (int, error) {
	db := config.GetDB()

	var participant models.ConversationParticipant
	err := db.Where("conversation_id = ? AND kind = ? AND participant_id = ?", conversationID, kind, participantID).
		First(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return participant.UnreadCount, nil
}

// TotalUnread sums the participant's unread counters across all conversations.
// Backs the polling endpoint clients refresh their badges from.
func TotalUnread(kind string, participantID uint) (int, error) {
	db := config.GetDB()

	var total int64
	err := db.Model(&models.ConversationParticipant{}).
		Where("kind = ? AND participant_id = ?", kind, participantID).
		Select("COALESCE(SUM(unread_count), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}
