package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Bounds for order request fields.
const (
	FullNameMinLen = 2
	FullNameMaxLen = 100
	MinQuantity    = 0.5
	MaxQuantity    = 100
	AddressMinLen  = 5
	AddressMaxLen  = 300
	NotesMinLen    = 10
	NotesMaxLen    = 1000
	// MaxFreeTextDigits caps the total digit count in scrubbed free-text
	// fields so phone numbers can't be smuggled in digit by digit.
	MaxFreeTextDigits = 8
)

var (
	fullNameRe    = regexp.MustCompile(`^[A-Za-z' -]+$`)
	tripleDigitRe = regexp.MustCompile(`\d{3}`)

	emailRe      = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneSeqRe   = regexp.MustCompile(`\d(?:[-.\s]?\d){9,10}`)
	phoneParenRe = regexp.MustCompile(`\(\d{3}\)[-.\s]?\d{3}[-.\s]?\d{4}`)
	phoneIntlRe  = regexp.MustCompile(`\+\d{1,3}[-.\s]?\d{3,}`)

	contactPhrases = []string{
		"call me",
		"text me",
		"phone me",
		"my number is",
		"my phone is",
		"reach me at",
		"contact me at",
		"whatsapp",
	}
)

// ValidationErrors maps a field name to a human-readable problem description
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for field, msg := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// OrderRequestInput is the raw, untrusted order request form. Quantity and
// DeliveryDate arrive as strings and are coerced during validation.
type OrderRequestInput struct {
	Title           string `json:"title"`
	FullName        string `json:"full_name"`
	DeliveryDate    string `json:"delivery_date"` // YYYY-MM-DD
	Quantity        string `json:"quantity"`
	Category        string `json:"category"`
	DeliveryAddress string `json:"delivery_address"`
	AdditionalNotes string `json:"additional_notes"`
}

// ValidatedOrderRequest holds the coerced values of a valid submission
type ValidatedOrderRequest struct {
	Title           string
	FullName        string
	DeliveryDate    time.Time
	Quantity        float64
	Category        string
	DeliveryAddress string
	AdditionalNotes *string
}

// ValidateOrderRequest checks every field of a submission and returns the
// coerced values, or a field-level error map. now anchors the "not in the
// past" check and is normalized to midnight.
func ValidateOrderRequest(in *OrderRequestInput, now time.Time) (*ValidatedOrderRequest, ValidationErrors) {
	errs := ValidationErrors{}

	fullName := strings.TrimSpace(in.FullName)
	if msg := validateFullName(fullName); msg != "" {
		errs["full_name"] = msg
	}

	deliveryDate, msg := validateDeliveryDate(strings.TrimSpace(in.DeliveryDate), now)
	if msg != "" {
		errs["delivery_date"] = msg
	}

	quantity, msg := validateQuantity(strings.TrimSpace(in.Quantity))
	if msg != "" {
		errs["quantity"] = msg
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		errs["category"] = "category is required"
	}

	address := strings.TrimSpace(in.DeliveryAddress)
	if len(address) < AddressMinLen || len(address) > AddressMaxLen {
		errs["delivery_address"] = fmt.Sprintf("delivery address must be between %d and %d characters", AddressMinLen, AddressMaxLen)
	}

	var notes *string
	if trimmed := strings.TrimSpace(in.AdditionalNotes); trimmed != "" {
		if len(trimmed) < NotesMinLen || len(trimmed) > NotesMaxLen {
			errs["additional_notes"] = fmt.Sprintf("notes must be between %d and %d characters", NotesMinLen, NotesMaxLen)
		} else if msg := ValidateFreeText(trimmed); msg != "" {
			errs["additional_notes"] = msg
		} else {
			notes = &trimmed
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &ValidatedOrderRequest{
		Title:           strings.TrimSpace(in.Title),
		FullName:        fullName,
		DeliveryDate:    deliveryDate,
		Quantity:        quantity,
		Category:        category,
		DeliveryAddress: address,
		AdditionalNotes: notes,
	}, nil
}

func validateFullName(name string) string {
	if len(name) < FullNameMinLen || len(name) > FullNameMaxLen {
		return fmt.Sprintf("full name must be between %d and %d characters", FullNameMinLen, FullNameMaxLen)
	}
	if strings.Contains(name, "@") {
		return "full name must not contain an email address"
	}
	if tripleDigitRe.MatchString(name) {
		return "full name must not contain number sequences"
	}
	if !fullNameRe.MatchString(name) {
		return "full name may only contain letters, spaces, hyphens and apostrophes"
	}
	return ""
}

func validateDeliveryDate(value string, now time.Time) (time.Time, string) {
	if value == "" {
		return time.Time{}, "delivery date is required"
	}
	date, err := time.ParseInLocation("2006-01-02", value, now.Location())
	if err != nil {
		return time.Time{}, "delivery date must be in YYYY-MM-DD format"
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return time.Time{}, "delivery date cannot be in the past"
	}
	return date, ""
}

func validateQuantity(value string) (float64, string) {
	if value == "" {
		return 0, "quantity is required"
	}
	quantity, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, "quantity must be a number"
	}
	if quantity < MinQuantity || quantity > MaxQuantity {
		return 0, fmt.Sprintf("quantity must be between %g and %g", float64(MinQuantity), float64(MaxQuantity))
	}
	return quantity, ""
}

// ValidateFreeText scrubs a free-text field for contact information: email
// addresses, phone number shapes, contact-intent phrases and excessive digit
// counts. Returns an empty string when the text is clean. The same family of
// checks applies to order request notes, event descriptions and review
// comments.
func ValidateFreeText(text string) string {
	if emailRe.MatchString(text) {
		return "text must not contain an email address"
	}
	if phoneSeqRe.MatchString(text) || phoneParenRe.MatchString(text) || phoneIntlRe.MatchString(text) {
		return "text must not contain a phone number"
	}
	lower := strings.ToLower(text)
	for _, phrase := range contactPhrases {
		if strings.Contains(lower, phrase) {
			return "text must not ask for direct contact"
		}
	}
	if countDigits(text) > MaxFreeTextDigits {
		return fmt.Sprintf("text must not contain more than %d digits", MaxFreeTextDigits)
	}
	return ""
}

func countDigits(text string) int {
	count := 0
	for _, r := range text {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	return count
}
