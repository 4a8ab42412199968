package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/lorrc/incident-desk/internal/core/errors"
)

// GeneralCustomerID is used for the single ticket raised when an alarm names no customers.
const GeneralCustomerID = "general"

// TicketStatus represents the possible states of a ticket.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "OPEN"
	StatusInProgress TicketStatus = "IN_PROGRESS"
	StatusResolved   TicketStatus = "RESOLVED"
	StatusClosed     TicketStatus = "CLOSED"
)

// IsValid checks if the status is a known value.
func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// ParseTicketStatus accepts any casing and rejects unknown values.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	s := TicketStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", apperrors.NewFieldError("status", "must be one of: OPEN, IN_PROGRESS, RESOLVED, CLOSED").
			WithCause(apperrors.ErrInvalidStatus)
	}
	return s, nil
}

// Ticket is a unit of remediation work for one customer affected by an alarm.
type Ticket struct {
	ID          string       `json:"ticketId"`
	AlarmID     string       `json:"alarmId"`
	CustomerID  string       `json:"customerId"`
	Status      TicketStatus `json:"status"`
	CreatedAt   int64        `json:"createdAt"`
	UpdatedAt   int64        `json:"updatedAt,omitempty"`
	Description string       `json:"description"`
}

// NewTicket opens a ticket for customerID against the given alarm.
func NewTicket(alarm *AlarmEvent, customerID, description string, now time.Time) *Ticket {
	return &Ticket{
		ID:          uuid.NewString(),
		AlarmID:     alarm.AlarmID,
		CustomerID:  customerID,
		Status:      StatusOpen,
		CreatedAt:   now.Unix(),
		Description: description,
	}
}

// IsGeneral reports whether the ticket is not tied to a specific customer.
func (t *Ticket) IsGeneral() bool {
	return t.CustomerID == GeneralCustomerID
}

// Resolve moves an OPEN ticket to RESOLVED. It returns false and leaves the
// ticket untouched for any other starting status.
func (t *Ticket) Resolve(now time.Time) bool {
	if t.Status != StatusOpen {
		return false
	}
	t.Status = StatusResolved
	t.UpdatedAt = now.Unix()
	return true
}

// SetStatus overwrites the status without transition checks and reports
// whether it changed.
func (t *Ticket) SetStatus(status TicketStatus, now time.Time) bool {
	if t.Status == status {
		return false
	}
	t.Status = status
	t.UpdatedAt = now.Unix()
	return true
}

// Clone returns a copy safe to hand out of a repository.
func (t *Ticket) Clone() *Ticket {
	c := *t
	return &c
}

// IncidentDescription formats the ticket description for an alarm.
func IncidentDescription(service Service, impact Impact, subject string) string {
	return fmt.Sprintf("Incident: %s %s affecting %s", service, impact, subject)
}

// CustomerFallbackLabel is used when the customer directory cannot name a customer.
func CustomerFallbackLabel(customerID string) string {
	return "Customer " + customerID
}

// GeneralIncidentLabel is the subject of a ticket that names no customer.
const GeneralIncidentLabel = "General incident"
