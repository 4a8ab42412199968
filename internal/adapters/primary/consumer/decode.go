package consumer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lorrc/incident-desk/internal/core/domain"
)

// alarmPayload is the wire shape of an alarms topic message. Every field is
// optional on the wire.
type alarmPayload struct {
	AlarmID           string   `json:"alarmId"`
	Service           string   `json:"service"`
	Impact            string   `json:"impact"`
	AffectedCustomers []string `json:"affectedCustomers"`
	Timestamp         int64    `json:"timestamp"`
}

type ticketPayload struct {
	TicketID   string `json:"ticketId"`
	AlarmID    string `json:"alarmId"`
	CustomerID string `json:"customerId"`
	Status     string `json:"status"`
	Timestamp  int64  `json:"timestamp"`
}

// DecodeAlarmEvent parses an alarms payload. Missing ids become "unknown" and
// unrecognised enums become their UNKNOWN value.
func DecodeAlarmEvent(payload []byte) (*domain.AlarmEvent, error) {
	var p alarmPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode alarm event: %w", err)
	}

	return &domain.AlarmEvent{
		AlarmID:           orUnknown(p.AlarmID),
		Service:           domain.ParseService(p.Service),
		Impact:            domain.ParseImpact(p.Impact),
		AffectedCustomers: domain.NormalizeCustomers(p.AffectedCustomers),
		Timestamp:         p.Timestamp,
	}, nil
}

// DecodeTicketEvent parses a tickets payload with the same defaulting rules.
func DecodeTicketEvent(payload []byte) (*domain.TicketEvent, error) {
	var p ticketPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode ticket event: %w", err)
	}

	return &domain.TicketEvent{
		TicketID:   orUnknown(p.TicketID),
		AlarmID:    orUnknown(p.AlarmID),
		CustomerID: orUnknown(p.CustomerID),
		Status:     domain.ParseTicketEventStatus(p.Status),
		Timestamp:  p.Timestamp,
	}, nil
}

// DecodeNotificationEvent parses a notifications payload for the live feed.
func DecodeNotificationEvent(payload []byte) (*domain.NotificationEvent, error) {
	var n domain.NotificationEvent
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("decode notification event: %w", err)
	}
	n.CustomerID = orUnknown(n.CustomerID)
	return &n, nil
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.UnknownValue
	}
	return s
}
