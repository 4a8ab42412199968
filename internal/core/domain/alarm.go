package domain

import (
	"strings"
	"time"

	apperrors "github.com/lorrc/incident-desk/internal/core/errors"
)

// Service identifies the product line an alarm is raised against.
type Service string

const (
	ServiceBroadband Service = "BROADBAND"
	ServiceMobile    Service = "MOBILE"
	ServiceTV        Service = "TV"
	ServiceVoIP      Service = "VOIP"

	// ServiceUnknown is assigned when a consumed payload carries an unrecognised value.
	ServiceUnknown Service = "UNKNOWN"
)

// IsValid reports whether the service is one of the known product lines.
func (s Service) IsValid() bool {
	switch s {
	case ServiceBroadband, ServiceMobile, ServiceTV, ServiceVoIP:
		return true
	}
	return false
}

// ParseService normalises raw input. Anything unrecognised maps to ServiceUnknown.
func ParseService(raw string) Service {
	s := Service(strings.ToUpper(strings.TrimSpace(raw)))
	if s.IsValid() {
		return s
	}
	return ServiceUnknown
}

// Impact describes how badly a service is affected.
type Impact string

const (
	ImpactOutage   Impact = "OUTAGE"
	ImpactDegraded Impact = "DEGRADED"
	ImpactSlow     Impact = "SLOW"
	ImpactResolved Impact = "RESOLVED"

	ImpactUnknown Impact = "UNKNOWN"
)

// IsValid reports whether the impact is a known value.
func (i Impact) IsValid() bool {
	return i.IsImpairing() || i == ImpactResolved
}

// IsImpairing reports whether the impact opens tickets.
func (i Impact) IsImpairing() bool {
	switch i {
	case ImpactOutage, ImpactDegraded, ImpactSlow:
		return true
	}
	return false
}

// ParseImpact normalises raw input. Anything unrecognised maps to ImpactUnknown.
func ParseImpact(raw string) Impact {
	i := Impact(strings.ToUpper(strings.TrimSpace(raw)))
	if i.IsValid() {
		return i
	}
	return ImpactUnknown
}

// AlarmEvent is published on the alarms topic. It is immutable once published.
type AlarmEvent struct {
	AlarmID           string   `json:"alarmId"`
	Service           Service  `json:"service"`
	Impact            Impact   `json:"impact"`
	AffectedCustomers []string `json:"affectedCustomers"`
	Timestamp         int64    `json:"timestamp"`
}

// AlarmParams is the validated input for building an AlarmEvent.
type AlarmParams struct {
	AlarmID           string
	Service           Service
	Impact            Impact
	AffectedCustomers []string
}

// NewAlarmEvent validates params and stamps the event with now.
func NewAlarmEvent(params AlarmParams, now time.Time) (*AlarmEvent, error) {
	errs := apperrors.NewValidationErrors()

	alarmID := strings.TrimSpace(params.AlarmID)
	if alarmID == "" {
		errs.AddCause("alarmId", apperrors.ErrAlarmIDRequired.Error(), apperrors.ErrAlarmIDRequired)
	}

	switch {
	case params.Service == "":
		errs.AddCause("service", "service is required", apperrors.ErrInvalidService)
	case !params.Service.IsValid():
		errs.AddCause("service", "must be one of: BROADBAND, MOBILE, TV, VOIP", apperrors.ErrInvalidService)
	}

	switch {
	case params.Impact == "":
		errs.AddCause("impact", "impact is required", apperrors.ErrInvalidImpact)
	case !params.Impact.IsValid():
		errs.AddCause("impact", "must be one of: OUTAGE, DEGRADED, SLOW, RESOLVED", apperrors.ErrInvalidImpact)
	}

	if errs.HasErrors() {
		return nil, errs
	}

	return &AlarmEvent{
		AlarmID:           alarmID,
		Service:           params.Service,
		Impact:            params.Impact,
		AffectedCustomers: NormalizeCustomers(params.AffectedCustomers),
		Timestamp:         now.Unix(),
	}, nil
}

// NormalizeCustomers turns a list of ids into an ordered set: trimmed, blanks
// dropped, first occurrence wins. The result is never nil.
func NormalizeCustomers(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// TicketTargets returns the customer ids an impairing alarm fans out to.
func (a *AlarmEvent) TicketTargets() []string {
	if len(a.AffectedCustomers) == 0 {
		return []string{GeneralCustomerID}
	}
	return a.AffectedCustomers
}
