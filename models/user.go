package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles as supplied by the identity provider's role claim.
const (
	RoleUser     = "user"
	RoleCompany  = "company"
	RoleSupplier = "supplier"
	RoleAdmin    = "admin"
)

// User represents an account in the system (buyer, business owner or admin)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Role      string         `gorm:"not null;default:'user'" json:"role"` // user, company, supplier, admin
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsBusiness returns true for accounts that can own a business tenant
func (u *User) IsBusiness() bool {
	return u.Role == RoleCompany || u.Role == RoleSupplier
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
