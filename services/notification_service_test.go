package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dateshub/dateshub-api/models"
)

func notificationFixture() (*models.OrderRequest, *models.User, *models.Company) {
	customer := &models.User{Name: "Customer", Email: "customer@example.com", Role: models.RoleUser}
	customer.ID = 1
	company := &models.Company{TenantType: models.TenantCompany, Name: "Golden Dates"}
	company.ID = 2
	order := &models.OrderRequest{
		FullName:        "Customer",
		DeliveryDate:    time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC),
		Quantity:        25,
		Category:        "premium dates",
		DeliveryAddress: "12 King Fahd Road, Riyadh",
		Status:          models.OrderRequestPending,
	}
	return order, customer, company
}

func TestDispatchWithoutTransport(t *testing.T) {
	SetEmailService(nil)

	order, customer, company := notificationFixture()
	result := ConfirmToCustomer(order, customer, company)

	assert.False(t, result.OK)
	assert.True(t, result.Skipped)
	assert.NotEmpty(t, result.Reason)
}

func TestDispatchFailureIsReported(t *testing.T) {
	mock := NewMockEmailService()
	mock.FailAll(true)
	mock.SetAsMockForTesting()
	defer SetEmailService(nil)

	order, _, company := notificationFixture()
	result := NotifyBusiness(order, &models.User{Name: "Owner", Email: "owner@example.com"}, company)

	assert.False(t, result.OK)
	assert.False(t, result.Skipped)
	assert.NotEmpty(t, result.Reason)
	assert.Empty(t, mock.Sent())
}

func TestResponseToCustomerBranchesOnStatus(t *testing.T) {
	mock := NewMockEmailService()
	mock.SetAsMockForTesting()
	defer SetEmailService(nil)

	order, customer, company := notificationFixture()

	order.Status = models.OrderRequestAccepted
	response := "See you at delivery"
	order.CompanyResponse = &response

	result := ResponseToCustomer(order, customer, company)
	assert.True(t, result.OK)

	sent := mock.Sent()
	assert.Len(t, sent, 1)
	assert.Contains(t, sent[0].Subject, "accepted")
	assert.Contains(t, sent[0].HTML, "See you at delivery")

	mock.Clear()
	order.Status = models.OrderRequestDeclined
	order.CompanyResponse = nil

	result = ResponseToCustomer(order, customer, company)
	assert.True(t, result.OK)

	sent = mock.Sent()
	assert.Len(t, sent, 1)
	assert.Contains(t, sent[0].Subject, "declined")
}
