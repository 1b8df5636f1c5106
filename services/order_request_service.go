package services

import (
	"errors"
	"fmt"

	"github.com/dateshub/dateshub-api/config"
	"github.com/dateshub/dateshub-api/models"
)

// ErrAlreadyResolved is returned when an accept/decline lands on a request
// that already left the pending state.
var ErrAlreadyResolved = errors.New("order request already resolved")

// TransitionOrderRequest applies the single allowed state transition
// pending -> accepted|declined. The update is conditional on the current
// status so two racing responders cannot both win: the loser observes zero
// affected rows and gets ErrAlreadyResolved.
func TransitionOrderRequest(orderID uint, action, responseMessage string) (*models.OrderRequest, error) {
	db := config.GetDB()

	var newStatus string
	switch action {
	case models.OrderActionAccept:
		newStatus = models.OrderRequestAccepted
	case models.OrderActionDecline:
		newStatus = models.OrderRequestDeclined
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}

	updates := map[string]interface{}{"status": newStatus}
	if responseMessage != "" {
		updates["company_response"] = responseMessage
	}

	result := db.Model(&models.OrderRequest{}).
		Where("id = ? AND status = ?", orderID, models.OrderRequestPending).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrAlreadyResolved
	}

	var order models.OrderRequest
	if err := db.Preload("RequestedBy").Preload("Company").First(&order, orderID).Error; err != nil {
		return nil, err
	}

	if err := syncOrderRequestMessages(&order); err != nil {
		return nil, err
	}

	return &order, nil
}

// syncOrderRequestMessages updates the embedded status of every
// order_request message referencing the request. The messages themselves
// stay immutable; only the payload snapshot tracks the new status.
func syncOrderRequestMessages(order *models.OrderRequest) error {
	db := config.GetDB()

	var messages []models.Message
	if err := db.Where("order_request_id = ?", order.ID).Find(&messages).Error; err != nil {
		return err
	}

	for i := range messages {
		if messages[i].Payload == nil {
			continue
		}
		messages[i].Payload.Status = order.Status
		if err := db.Model(&messages[i]).Update("payload", messages[i].Payload).Error; err != nil {
			return err
		}
	}
	return nil
}

// AttachOrderRequestMessage synthesizes an order_request message into the
// conversation unless one for this request already exists there. Used when a
// request is submitted into an existing thread and when an accept creates the
// thread.
func AttachOrderRequestMessage(conv *models.Conversation, order *models.OrderRequest) error {
	db := config.GetDB()

	var count int64
	err := db.Model(&models.Message{}).
		Where("conversation_id = ? AND order_request_id = ?", conv.ID, order.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	message, err := models.NewOrderRequestMessage(conv.ID, models.ParticipantUser, order.RequestedByID, order)
	if err != nil {
		return err
	}
	return AppendMessage(conv, message)
}
