package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v79"
	portalsession "github.com/stripe/stripe-go/v79/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/dateshub/dateshub-api/config"
	"github.com/dateshub/dateshub-api/models"
	"github.com/dateshub/dateshub-api/services"
)

// CreateCheckoutRequest represents the request body for starting a checkout
type CreateCheckoutRequest struct {
	PlanSlug string `json:"plan_slug" binding:"required"`
}

// CreateCheckoutSession handles POST /api/v1/billing/checkout - creates a
// Stripe checkout session for the caller's tenant and the chosen plan
func CreateCheckoutSession(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	company, ok := currentTenant(c, user)
	if !ok {
		return
	}

	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err.Error())
		return
	}

	db := config.GetDB()
	var plan models.Plan
	if err := db.Where("slug = ? AND is_active = ?", req.PlanSlug, true).First(&plan).Error; err != nil {
		errorResponse(c, http.StatusNotFound, "PLAN_NOT_FOUND", "Plan not found")
		return
	}

	if plan.IsFree() || plan.StripePriceID == "" {
		validationErrorResponse(c, "the free plan does not require checkout")
		return
	}

	cfg := config.GetConfig()
	stripe.Key = cfg.StripeSecretKey

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(cfg.FrontendURL + "/billing/success"),
		CancelURL:  stripe.String(cfg.FrontendURL + "/billing/cancel"),
		// The webhook resolves the tenant and plan back out of this
		ClientReferenceID: stripe.String(fmt.Sprintf("%s:%d:%s", company.TenantType, company.ID, plan.Slug)),
		CustomerEmail:     stripe.String(user.Email),
	}

	session, err := checkoutsession.New(params)
	if err != nil {
		log.Warnf("failed to create checkout session for %s: %v", company.ParticipantKey(), err)
		errorResponse(c, http.StatusInternalServerError, "PAYMENT_ERROR", "Failed to create checkout session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"checkout_url": session.URL,
		},
	})
}

// CreateBillingPortalSession handles POST /api/v1/billing/portal - opens the
// Stripe billing portal for the caller's tenant
func CreateBillingPortalSession(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	company, ok := currentTenant(c, user)
	if !ok {
		return
	}

	sub, err := services.GetSubscription(company.TenantType, company.ID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch subscription")
		return
	}
	if sub == nil || sub.StripeCustomerID == "" {
		errorResponse(c, http.StatusNotFound, "SUBSCRIPTION_NOT_FOUND", "No billing account found for this business")
		return
	}

	cfg := config.GetConfig()
	stripe.Key = cfg.StripeSecretKey

	session, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(sub.StripeCustomerID),
		ReturnURL: stripe.String(cfg.FrontendURL + "/billing"),
	})
	if err != nil {
		log.Warnf("failed to create billing portal session for %s: %v", company.ParticipantKey(), err)
		errorResponse(c, http.StatusInternalServerError, "PAYMENT_ERROR", "Failed to create billing portal session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"portal_url": session.URL,
		},
	})
}

// GetMySubscription handles GET /api/v1/billing/subscription - returns the
// caller tenant's subscription state and whether it is free tier
func GetMySubscription(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	company, ok := currentTenant(c, user)
	if !ok {
		return
	}

	sub, err := services.GetSubscription(company.TenantType, company.ID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch subscription")
		return
	}

	free, err := services.IsFreeTier(company.TenantType, company.ID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to check subscription")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"subscription": sub,
			"free_tier":    free,
		},
	})
}

// StripeWebhook handles POST /api/v1/billing/webhook - ingests subscription
// lifecycle events from the payment provider. Signature verification is
// skipped only when no webhook secret is configured.
func StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read webhook payload")
		return
	}

	cfg := config.GetConfig()
	var event stripe.Event
	if cfg != nil && cfg.StripeWebhookSecret != "" {
		event, err = webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), cfg.StripeWebhookSecret)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "INVALID_SIGNATURE", "Webhook signature verification failed")
			return
		}
	} else if err := json.Unmarshal(payload, &event); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid webhook payload")
		return
	}

	switch string(event.Type) {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid checkout session payload")
			return
		}
		err = applyCheckoutCompleted(&session)
	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid subscription payload")
			return
		}
		err = applySubscriptionUpdate(&sub)
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid subscription payload")
			return
		}
		err = setSubscriptionStatus(sub.ID, models.SubscriptionCanceled)
	case "invoice.payment_succeeded":
		err = applyInvoiceStatus(event.Data.Raw, models.SubscriptionActive)
	case "invoice.payment_failed":
		err = applyInvoiceStatus(event.Data.Raw, models.SubscriptionPastDue)
	default:
		log.Debugf("ignoring webhook event %s", event.Type)
	}

	if err != nil {
		log.Warnf("failed to apply webhook event %s: %v", event.Type, err)
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to apply webhook event")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// applyCheckoutCompleted upserts the tenant's subscription from a completed
// checkout. The tenant and plan are encoded in the client reference ID.
func applyCheckoutCompleted(session *stripe.CheckoutSession) error {
	parts := strings.SplitN(session.ClientReferenceID, ":", 3)
	if len(parts) != 3 {
		return fmt.Errorf("malformed client reference %q", session.ClientReferenceID)
	}
	tenantType := parts[0]
	tenantID, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("malformed tenant id in client reference %q", session.ClientReferenceID)
	}
	planSlug := parts[2]

	db := config.GetDB()
	var plan models.Plan
	if err := db.Where("slug = ?", planSlug).First(&plan).Error; err != nil {
		return fmt.Errorf("unknown plan %q: %w", planSlug, err)
	}

	customerID := ""
	if session.Customer != nil {
		customerID = session.Customer.ID
	}
	subscriptionID := ""
	if session.Subscription != nil {
		subscriptionID = session.Subscription.ID
	}

	sub, err := services.GetSubscription(tenantType, uint(tenantID))
	if err != nil {
		return err
	}
	if sub == nil {
		return db.Create(&models.Subscription{
			TenantType:           tenantType,
			TenantID:             uint(tenantID),
			PlanID:               plan.ID,
			Status:               models.SubscriptionActive,
			StripeCustomerID:     customerID,
			StripeSubscriptionID: subscriptionID,
		}).Error
	}

	return db.Model(sub).Updates(map[string]interface{}{
		"plan_id":                plan.ID,
		"status":                 models.SubscriptionActive,
		"stripe_customer_id":     customerID,
		"stripe_subscription_id": subscriptionID,
	}).Error
}

func applySubscriptionUpdate(sub *stripe.Subscription) error {
	db := config.GetDB()

	updates := map[string]interface{}{
		"status": string(sub.Status),
	}
	if sub.CurrentPeriodEnd > 0 {
		updates["current_period_end"] = time.Unix(sub.CurrentPeriodEnd, 0)
	}

	return db.Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", sub.ID).
		Updates(updates).Error
}

func setSubscriptionStatus(stripeSubscriptionID, status string) error {
	db := config.GetDB()
	return db.Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Update("status", status).Error
}

func applyInvoiceStatus(raw json.RawMessage, status string) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(raw, &invoice); err != nil {
		return fmt.Errorf("invalid invoice payload: %w", err)
	}
	if invoice.Subscription == nil {
		return nil
	}
	return setSubscriptionStatus(invoice.Subscription.ID, status)
}
