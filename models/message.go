package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Message types. An order_request message always carries an OrderRequestPayload;
// a text message never does. The constructors below are the only way handlers
// build messages, which keeps that invariant structural.
const (
	MessageText         = "text"
	MessageOrderRequest = "order_request"
)

// OrderRequestPayload is the snapshot of an order request embedded in an
// order_request message. Status tracks the referenced request and is the only
// field updated after creation (by the accept/decline action).
type OrderRequestPayload struct {
	OrderRequestID  uint      `json:"order_request_id"`
	Status          string    `json:"status"`
	DeliveryDate    time.Time `json:"delivery_date"`
	Quantity        float64   `json:"quantity"`
	Category        string    `json:"category"`
	DeliveryAddress string    `json:"delivery_address"`
	AdditionalNotes *string   `json:"additional_notes,omitempty"`
}

// Message represents a single message within a conversation
type Message struct {
	ID             uint                 `gorm:"primaryKey" json:"id"`
	ConversationID uint                 `gorm:"not null;index" json:"conversation_id"`
	Conversation   Conversation         `gorm:"foreignKey:ConversationID" json:"-"`
	SenderKind     string               `gorm:"not null" json:"sender_kind"` // user, company, supplier
	SenderID       uint                 `gorm:"not null;index" json:"sender_id"`
	Text           string               `gorm:"type:text;not null" json:"text"`
	MessageType    string               `gorm:"not null;default:'text'" json:"message_type"` // text, order_request
	OrderRequestID *uint                `gorm:"index" json:"order_request_id,omitempty"`
	Payload        *OrderRequestPayload `gorm:"serializer:json;type:text" json:"order_request_data,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	DeletedAt      gorm.DeletedAt       `gorm:"index" json:"-"`
}

// SenderKey returns the participant key of the message author
func (m *Message) SenderKey() string {
	return ParticipantKey(m.SenderKind, m.SenderID)
}

// Preview returns the short form of the message used for conversation listings
func (m *Message) Preview() string {
	const max = 120
	text := strings.TrimSpace(m.Text)
	if len(text) > max {
		return text[:max]
	}
	return text
}

// NewTextMessage builds a plain text message
func NewTextMessage(conversationID uint, senderKind string, senderID uint, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("message text must not be empty")
	}
	return &Message{
		ConversationID: conversationID,
		SenderKind:     senderKind,
		SenderID:       senderID,
		Text:           text,
		MessageType:    MessageText,
	}, nil
}

// NewOrderRequestMessage builds a structured order_request message carrying a
// snapshot of the given request
func NewOrderRequestMessage(conversationID uint, senderKind string, senderID uint, order *OrderRequest) (*Message, error) {
	if order == nil || order.ID == 0 {
		return nil, fmt.Errorf("order request is required for an order_request message")
	}
	orderID := order.ID
	return &Message{
		ConversationID: conversationID,
		SenderKind:     senderKind,
		SenderID:       senderID,
		Text:           fmt.Sprintf("Order request: %.4g x %s", order.Quantity, order.Category),
		MessageType:    MessageOrderRequest,
		OrderRequestID: &orderID,
		Payload: &OrderRequestPayload{
			OrderRequestID:  order.ID,
			Status:          order.Status,
			DeliveryDate:    order.DeliveryDate,
			Quantity:        order.Quantity,
			Category:        order.Category,
			DeliveryAddress: order.DeliveryAddress,
			AdditionalNotes: order.AdditionalNotes,
		},
	}, nil
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
