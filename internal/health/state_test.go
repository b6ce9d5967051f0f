package health

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hamed0406/healthcheck/internal/domain"
	"github.com/hamed0406/healthcheck/internal/probe"
)

var (
	ok   = probe.Succeeded("200 OK")
	fail = probe.Failed("Unexpected status: 503")
)

func TestApply_FirstSuccessFromUnknown(t *testing.T) {
	now := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	s := Apply(State{}, ok, now)

	require.Equal(t, domain.StatusSuccess, s.Status)
	require.EqualValues(t, 1, s.TotalChecks)
	require.EqualValues(t, 1, s.SuccessfulChecks)
	require.Zero(t, s.FailedChecks)
	require.Equal(t, now, s.LastCheck)
	require.NotNil(t, s.UptimeStart)
	require.Equal(t, now, *s.UptimeStart)
}

func TestApply_FailureClearsUptime(t *testing.T) {
	now := time.Now()
	s := Apply(State{}, ok, now)
	s = Apply(s, fail, now.Add(time.Second))

	require.Equal(t, domain.StatusFailure, s.Status)
	require.Equal(t, "Unexpected status: 503", s.Message)
	require.EqualValues(t, 1, s.ConsecutiveFailures)
	require.Nil(t, s.UptimeStart)
}

func TestApply_RepeatedSuccessKeepsUptimeStart(t *testing.T) {
	t0 := time.Now()
	s := Apply(State{}, ok, t0)
	s = Apply(s, ok, t0.Add(time.Minute))

	require.Equal(t, t0, *s.UptimeStart)
	require.Equal(t, t0.Add(time.Minute), s.LastCheck)
}

func TestApply_DoesNotAliasUptimeStart(t *testing.T) {
	t0 := time.Now()
	a := Apply(State{}, ok, t0)
	b := Apply(a, fail, t0.Add(time.Second))
	require.Nil(t, b.UptimeStart)
	require.NotNil(t, a.UptimeStart, "earlier copy must be untouched")
}

func TestApply_InvariantsHoldForRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	now := time.Now()
	for run := 0; run < 50; run++ {
		var s State
		n := rng.Intn(200)
		for i := 0; i < n; i++ {
			out := ok
			if rng.Intn(3) == 0 {
				out = fail
			}
			s = Apply(s, out, now.Add(time.Duration(i)*time.Second))

			require.Equal(t, s.TotalChecks, s.SuccessfulChecks+s.FailedChecks)
			if s.ConsecutiveFailures > 0 {
				require.Equal(t, domain.StatusFailure, s.Status)
			}
			if s.Status != domain.StatusFailure {
				require.Zero(t, s.ConsecutiveFailures)
			}
			require.Equal(t, s.Status == domain.StatusSuccess, s.UptimeStart != nil)
		}
	}
}

func TestState_Row(t *testing.T) {
	var s State
	row := s.Row("id-1", "API", "desc")
	require.Nil(t, row.LastCheck, "unknown state has no last check")
	require.Equal(t, domain.StatusUnknown, row.State)

	now := time.Now()
	s = Apply(s, ok, now)
	row = s.Row("id-1", "API", "desc")
	require.Equal(t, now, *row.LastCheck)
	require.Equal(t, now, *row.UptimeStart)
}
