package models

import (
	"time"

	"gorm.io/gorm"
)

// FreePlanSlug identifies the free tier plan
const FreePlanSlug = "free"

// Subscription statuses mirroring the payment provider's lifecycle.
const (
	SubscriptionActive   = "active"
	SubscriptionTrialing = "trialing"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
)

// Plan represents a commercial plan a business tenant can subscribe to
type Plan struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	Slug          string    `gorm:"uniqueIndex;not null" json:"slug"`
	PriceAmount   int64     `gorm:"not null;default:0" json:"price_amount"` // in cents
	Currency      string    `gorm:"not null;default:'USD'" json:"currency"`
	Interval      string    `gorm:"not null;default:'monthly'" json:"interval"` // monthly, yearly
	StripePriceID string    `json:"stripe_price_id"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsFree returns true for the free tier (zero price or the free slug)
func (p *Plan) IsFree() bool {
	return p.Slug == FreePlanSlug || p.PriceAmount == 0
}

// TableName specifies the table name for the Plan model
func (Plan) TableName() string {
	return "plans"
}

// Subscription ties a business tenant to its current plan. At most one
// subscription exists per tenant; webhook events from the payment provider
// keep Status current.
type Subscription struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	TenantType           string         `gorm:"not null;uniqueIndex:idx_subscription_tenant" json:"tenant_type"`
	TenantID             uint           `gorm:"not null;uniqueIndex:idx_subscription_tenant" json:"tenant_id"`
	PlanID               uint           `gorm:"not null;index" json:"plan_id"`
	Plan                 Plan           `gorm:"foreignKey:PlanID" json:"plan"`
	Status               string         `gorm:"not null;default:'active'" json:"status"`
	StripeCustomerID     string         `gorm:"index" json:"stripe_customer_id"`
	StripeSubscriptionID string         `gorm:"index" json:"stripe_subscription_id"`
	CurrentPeriodEnd     *time.Time     `json:"current_period_end"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsActive returns true while the subscription entitles the tenant to paid features
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionActive || s.Status == SubscriptionTrialing
}

// TableName specifies the table name for the Subscription model
func (Subscription) TableName() string {
	return "subscriptions"
}
