package services

import (
	"fmt"
	"sync"
)

// SentEmail captures one delivery made through the mock
type SentEmail struct {
	To      string
	Subject string
	HTML    string
}

// MockEmailService is a mock implementation of EmailService for testing
type MockEmailService struct {
	sent    []SentEmail
	failAll bool
	mu      sync.Mutex
}

// NewMockEmailService creates a new mock email service
func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

// SetAsMockForTesting sets this mock as the global email service instance for testing
func (m *MockEmailService) SetAsMockForTesting() {
	SetEmailService(m)
}

// FailAll makes every subsequent Send return an error
func (m *MockEmailService) FailAll(fail bool) {
	m.mu.Lock()
	m.failAll = fail
	m.mu.Unlock()
}

// Send records the email instead of delivering it
func (m *MockEmailService) Send(to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll {
		return fmt.Errorf("mock SMTP failure")
	}

	m.sent = append(m.sent, SentEmail{To: to, Subject: subject, HTML: html})
	return nil
}

// Sent returns a copy of all recorded emails (for testing assertions)
func (m *MockEmailService) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SentEmail, len(m.sent))
	copy(out, m.sent)
	return out
}

// Clear removes all recorded emails
func (m *MockEmailService) Clear() {
	m.mu.Lock()
	m.sent = nil
	m.mu.Unlock()
}
