package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dateshub/dateshub-api/config"
	"github.com/dateshub/dateshub-api/models"
)

// GetSubscription returns the tenant's current subscription with its plan,
// or nil when the tenant has none
func GetSubscription(tenantType string, tenantID uint) (*models.Subscription, error) {
	db := config.GetDB()

	var sub models.Subscription
	err := db.Preload("Plan").
		Where("tenant_type = ? AND tenant_id = ?", tenantType, tenantID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// IsFreeTier reports whether the tenant is on the free tier: no subscription,
// the free plan, a zero-price plan, or a lapsed subscription.
func IsFreeTier(tenantType string, tenantID uint) (bool, error) {
	sub, err := GetSubscription(tenantType, tenantID)
	if err != nil {
		return false, err
	}
	if sub == nil {
		return true, nil
	}
	if !sub.IsActive() {
		return true, nil
	}
	return sub.Plan.IsFree(), nil
}

// CanRespondToOrderRequests is the plan gate in front of the order request
// respond action. Free-tier tenants may receive requests but not answer them.
func CanRespondToOrderRequests(tenantType string, tenantID uint) (bool, error) {
	free, err := IsFreeTier(tenantType, tenantID)
	if err != nil {
		return false, err
	}
	return !free, nil
}
