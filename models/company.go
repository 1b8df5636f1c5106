package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Tenant types. A business tenant is identified by (tenant_type, id).
const (
	TenantCompany  = "company"
	TenantSupplier = "supplier"
)

// Company onboarding statuses.
const (
	CompanyPending  = "pending"
	CompanyApproved = "approved"
	CompanyRejected = "rejected"
)

// Company represents a business tenant (company or supplier) in the directory
type Company struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TenantType    string         `gorm:"not null;default:'company';index" json:"tenant_type"` // company or supplier
	Name          string         `gorm:"not null" json:"name"`
	Slug          string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description   string         `gorm:"type:text" json:"description"`
	Category      string         `gorm:"index" json:"category"`
	City          string         `json:"city"`
	Status        string         `gorm:"not null;default:'pending';index" json:"status"` // pending, approved, rejected
	OwnerID       uint           `gorm:"not null;index" json:"owner_id"`
	Owner         User           `gorm:"foreignKey:OwnerID" json:"owner"`
	LogoS3Key     *string        `json:"logo_s3_key"`
	LogoURL       *string        `gorm:"-" json:"logo_url,omitempty"`       // computed field, presigned URL for logo
	AverageRating float64        `gorm:"-" json:"average_rating,omitempty"` // computed from reviews
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// ParticipantKey returns the unread-counter key for this tenant
func (c *Company) ParticipantKey() string {
	return fmt.Sprintf("%s:%d", c.TenantType, c.ID)
}

// TableName specifies the table name for the Company model
func (Company) TableName() string {
	return "companies"
}
