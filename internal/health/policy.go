package health

import "github.com/hamed0406/healthcheck/internal/domain"

// EventKind is the kind of notification a decision asks for.
type EventKind uint8

const (
	EventAlert EventKind = iota + 1
	EventStillFailing
	EventRecovered
)

func (k EventKind) String() string {
	switch k {
	case EventAlert:
		return "alert"
	case EventStillFailing:
		return "still_failing"
	case EventRecovered:
		return "recovered"
	}
	return "none"
}

// Thresholds are the resolved notification knobs of one service.
// Rereport == 0 disables re-reports.
type Thresholds struct {
	NotifyFailures uint64
	Rereport       uint64
}

// Decision is the policy's verdict for one transition.
type Decision struct {
	Kind   EventKind
	Detail string
}

// Decide inspects the transition prev -> next and reports whether a
// notification is due. The returned state carries the updated
// LastNotifiedAt bookkeeping.
func Decide(prev, next State, t Thresholds) (State, Decision, bool) {
	if next.Status == domain.StatusSuccess {
		next.LastNotifiedAt = 0
		if prev.Status == domain.StatusFailure {
			return next, Decision{Kind: EventRecovered, Detail: "recovered"}, true
		}
		return next, Decision{}, false
	}
	if next.Status != domain.StatusFailure {
		return next, Decision{}, false
	}

	n := next.ConsecutiveFailures
	switch {
	case n == t.NotifyFailures:
		next.LastNotifiedAt = n
		return next, Decision{Kind: EventAlert, Detail: next.Message}, true
	case n > t.NotifyFailures && t.Rereport > 0:
		base := next.LastNotifiedAt
		if base == 0 {
			base = t.NotifyFailures
		}
		if n-base >= t.Rereport {
			next.LastNotifiedAt = n
			return next, Decision{Kind: EventStillFailing, Detail: next.Message + " (still failing)"}, true
		}
	}
	return next, Decision{}, false
}
