package domain

import (
	"time"

	"go.uber.org/zap/zapcore"
)

type ServiceID string

// ServiceStatus is one row of a supervisor snapshot: the service identity
// plus its current health counters.
type ServiceStatus struct {
	ID                  ServiceID  `json:"id"`
	Name                string     `json:"name"`
	Description         string     `json:"description"`
	State               Status     `json:"state"`
	Message             string     `json:"message,omitempty"`
	LastCheck           *time.Time `json:"last_check,omitempty"`
	ConsecutiveFailures uint64     `json:"consecutive_failures"`
	TotalChecks         uint64     `json:"total_checks"`
	SuccessfulChecks    uint64     `json:"successful_checks"`
	FailedChecks        uint64     `json:"failed_checks"`
	UptimeStart         *time.Time `json:"uptime_start,omitempty"`
}

// Uptime is the length of the current unbroken success run, zero when the
// service is not up.
func (s ServiceStatus) Uptime(now time.Time) time.Duration {
	if s.UptimeStart == nil {
		return 0
	}
	return now.Sub(*s.UptimeStart)
}

func (s ServiceStatus) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("service_id", string(s.ID))
	enc.AddString("name", s.Name)
	enc.AddString("state", s.State.String())
	if s.Message != "" {
		enc.AddString("message", s.Message)
	}
	enc.AddUint64("consecutive_failures", s.ConsecutiveFailures)
	enc.AddUint64("total_checks", s.TotalChecks)
	enc.AddUint64("successful_checks", s.SuccessfulChecks)
	enc.AddUint64("failed_checks", s.FailedChecks)
	return nil
}
