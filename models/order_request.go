package models

import (
	"time"

	"gorm.io/gorm"
)

// Order request statuses. A request starts pending and transitions exactly
// once to accepted or declined.
const (
	OrderRequestPending  = "pending"
	OrderRequestAccepted = "accepted"
	OrderRequestDeclined = "declined"
)

// Respond actions accepted by the business side.
const (
	OrderActionAccept  = "accept"
	OrderActionDecline = "decline"
)

// OrderRequest represents a buyer-submitted request for goods from a business tenant
type OrderRequest struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `json:"title"`
	FullName        string         `gorm:"not null" json:"full_name"`
	DeliveryDate    time.Time      `gorm:"not null" json:"delivery_date"`
	Quantity        float64        `gorm:"not null" json:"quantity"`
	Category        string         `gorm:"not null" json:"category"`
	DeliveryAddress string         `gorm:"not null" json:"delivery_address"`
	AdditionalNotes *string        `gorm:"type:text" json:"additional_notes"`
	Status          string         `gorm:"not null;default:'pending';index" json:"status"` // pending, accepted, declined
	CompanyID       uint           `gorm:"not null;index" json:"company_id"`               // target business tenant
	Company         Company        `gorm:"foreignKey:CompanyID" json:"company"`
	RequestedByID   uint           `gorm:"not null;index" json:"requested_by_id"`
	RequestedBy     User           `gorm:"foreignKey:RequestedByID" json:"requested_by"`
	CompanyResponse *string        `gorm:"type:text" json:"company_response"` // set once on accept/decline
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsResolved returns true once the request left the pending state
func (o *OrderRequest) IsResolved() bool {
	return o.Status != OrderRequestPending
}

// TableName specifies the table name for the OrderRequest model
func (OrderRequest) TableName() string {
	return "order_requests"
}
