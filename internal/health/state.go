// Package health holds the per-service health record, the transition applied
// after every probe, and the policy that turns transitions into alerts.
package health

import (
	"time"

	"github.com/hamed0406/healthcheck/internal/domain"
	"github.com/hamed0406/healthcheck/internal/probe"
)

// State is the mutable record of one service. Values are copied, never
// shared: Apply and Decide return new states.
type State struct {
	Status              domain.Status
	Message             string
	ConsecutiveFailures uint64
	TotalChecks         uint64
	SuccessfulChecks    uint64
	FailedChecks        uint64
	LastCheck           time.Time  // zero until the first probe completes
	UptimeStart         *time.Time // set iff Status == StatusSuccess

	// LastNotifiedAt is the ConsecutiveFailures value at which the latest
	// alert went out; 0 when nothing is outstanding.
	LastNotifiedAt uint64
}

// Apply folds one probe outcome into s.
func Apply(s State, out probe.Outcome, now time.Time) State {
	s.TotalChecks++
	s.LastCheck = now

	if out.Success {
		s.SuccessfulChecks++
		if s.Status != domain.StatusSuccess || s.UptimeStart == nil {
			start := now
			s.UptimeStart = &start
		}
		s.Status = domain.StatusSuccess
		s.Message = ""
		s.ConsecutiveFailures = 0
		return s
	}

	s.FailedChecks++
	s.ConsecutiveFailures++
	s.UptimeStart = nil
	s.Status = domain.StatusFailure
	s.Message = out.Message
	return s
}

// Row renders s as a snapshot row for the given service.
func (s State) Row(id domain.ServiceID, name, description string) domain.ServiceStatus {
	row := domain.ServiceStatus{
		ID:                  id,
		Name:                name,
		Description:         description,
		State:               s.Status,
		Message:             s.Message,
		ConsecutiveFailures: s.ConsecutiveFailures,
		TotalChecks:         s.TotalChecks,
		SuccessfulChecks:    s.SuccessfulChecks,
		FailedChecks:        s.FailedChecks,
	}
	if !s.LastCheck.IsZero() {
		t := s.LastCheck
		row.LastCheck = &t
	}
	if s.UptimeStart != nil {
		t := *s.UptimeStart
		row.UptimeStart = &t
	}
	return row
}
