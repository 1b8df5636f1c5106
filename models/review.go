package models

import (
	"time"

	"gorm.io/gorm"
)

// Review represents a customer rating of a business tenant.
// One review per user and company.
type Review struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CompanyID uint           `gorm:"not null;uniqueIndex:idx_review_author" json:"company_id"`
	Company   Company        `gorm:"foreignKey:CompanyID" json:"-"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_review_author" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	Rating    int            `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string         `gorm:"type:text" json:"comment"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}
