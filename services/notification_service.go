package services

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/dateshub/dateshub-api/models"
)

// Notification composition and dispatch. Every function builds a subject and
// an HTML body, hands them to the email collaborator and reports an
// EmailResult. Failures are logged and returned, never propagated: the state
// change that triggered the notification has already been committed.

func dispatch(to, subject, html string) EmailResult {
	svc := GetEmailService()
	if svc == nil {
		log.WithField("to", to).Debug("email delivery skipped: no transport configured")
		return EmailResult{OK: false, Skipped: true, Reason: "email transport not configured"}
	}

	if err := svc.Send(to, subject, html); err != nil {
		log.WithField("to", to).Warnf("email delivery failed: %v", err)
		return EmailResult{OK: false, Reason: err.Error()}
	}
	return EmailResult{OK: true}
}

// ConfirmToCustomer notifies the requester that their order request was received
func ConfirmToCustomer(order *models.OrderRequest, customer *models.User, company *models.Company) EmailResult {
	subject := fmt.Sprintf("Your order request to %s was received", company.Name)
	html := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>We received your order request for <strong>%.4g x %s</strong> with delivery on %s.</p>
<p>%s will review it and get back to you.</p>`,
		customer.Name, order.Quantity, order.Category,
		order.DeliveryDate.Format("January 2, 2006"), company.Name,
	)
	return dispatch(customer.Email, subject, html)
}

// NotifyBusiness notifies the target business that a new order request arrived
func NotifyBusiness(order *models.OrderRequest, owner *models.User, company *models.Company) EmailResult {
	subject := fmt.Sprintf("New order request for %s", company.Name)
	html := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>%s requested <strong>%.4g x %s</strong>, to be delivered on %s at %s.</p>
<p>Sign in to accept or decline the request.</p>`,
		owner.Name, order.FullName, order.Quantity, order.Category,
		order.DeliveryDate.Format("January 2, 2006"), order.DeliveryAddress,
	)
	return dispatch(owner.Email, subject, html)
}

// ResponseToCustomer notifies the requester of the business's accept/decline decision
func ResponseToCustomer(order *models.OrderRequest, customer *models.User, company *models.Company) EmailResult {
	var subject, lead string
	if order.Status == models.OrderRequestAccepted {
		subject = fmt.Sprintf("%s accepted your order request", company.Name)
		lead = "Good news! Your order request was <strong>accepted</strong>."
	} else {
		subject = fmt.Sprintf("%s declined your order request", company.Name)
		lead = "Unfortunately your order request was <strong>declined</strong>."
	}

	html := fmt.Sprintf(`<p>Hi %s,</p><p>%s</p>`, customer.Name, lead)
	if order.CompanyResponse != nil && *order.CompanyResponse != "" {
		html += fmt.Sprintf(`<p>Message from %s: %s</p>`, company.Name, *order.CompanyResponse)
	}
	return dispatch(customer.Email, subject, html)
}

// ApprovalToApplicant notifies a business owner that their listing was approved
func ApprovalToApplicant(owner *models.User, company *models.Company) EmailResult {
	subject := fmt.Sprintf("%s is now listed on DatesHub", company.Name)
	html := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Your %s listing <strong>%s</strong> was approved and is now visible in the directory.</p>`,
		owner.Name, company.TenantType, company.Name,
	)
	return dispatch(owner.Email, subject, html)
}

// RejectionToApplicant notifies a business owner that their listing was rejected
func RejectionToApplicant(owner *models.User, company *models.Company, reason string) EmailResult {
	subject := fmt.Sprintf("Your %s listing was not approved", company.TenantType)
	html := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Your listing <strong>%s</strong> was not approved.</p>`,
		owner.Name, company.Name,
	)
	if reason != "" {
		html += fmt.Sprintf(`<p>Reason: %s</p>`, reason)
	}
	return dispatch(owner.Email, subject, html)
}
