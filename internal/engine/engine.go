package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"monitord/internal/domain"
	"monitord/internal/status"
)

// Engine turns raw health verdicts into at most one alert event each. It is
// the only component that mutates the status store, and every evaluation for
// a service runs under that service's record lock.
type Engine struct {
	store       *status.Store
	descriptors map[string]domain.ServiceDescriptor
	log         *slog.Logger
	now         func() time.Time
}

func New(store *status.Store, descriptors []domain.ServiceDescriptor, log *slog.Logger) *Engine {
	byName := make(map[string]domain.ServiceDescriptor, len(descriptors))
	for _, d := range descriptors {
		byName[d.Name] = d
	}

	return &Engine{
		store:       store,
		descriptors: byName,
		log:         log,
		now:         time.Now,
	}
}

// WithClock overrides the engine's clock. Only used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Evaluate processes one verdict and returns the alert event it decided to
// emit, or nil. It never fails the probe cycle: malformed verdicts are logged
// as anomalies and dropped.
func (e *Engine) Evaluate(v domain.HealthVerdict) *domain.AlertEvent {
	d, ok := e.descriptors[v.Service]
	if !ok {
		e.log.Warn("anomaly: verdict for unregistered service", "service", v.Service)
		return nil
	}

	if !v.Outcome.Valid() || v.Outcome == domain.OutcomeUnknown {
		e.log.Warn("anomaly: verdict with unexpected outcome",
			"service", v.Service,
			"outcome", string(v.Outcome),
		)
		return nil
	}

	var event *domain.AlertEvent

	err := e.store.Update(v.Service, func(st *domain.ServiceStatus) {
		now := e.now()
		prev := st.Outcome

		st.LastCheck = now
		st.Message = v.Message

		if v.Outcome == prev {
			event = e.evaluateRepeat(d, st, now)
			return
		}

		st.Outcome = v.Outcome
		st.LastChange = now
		if v.Outcome == domain.OutcomeUnreachable {
			st.ConsecutiveFailures = 1
		} else {
			st.ConsecutiveFailures = 0
		}

		event = e.evaluateTransition(d, st, prev, v, now)
	})
	if err != nil {
		e.log.Warn("anomaly: status record missing for verdict", "service", v.Service, "error", err.Error())
		return nil
	}

	return event
}

// evaluateRepeat handles a verdict that did not change the outcome. Pure
// repeats never touch the cooldown clocks; the one exception is sustained
// unreachability crossing the escalation threshold, which forces a
// re-notification exactly once per crossing.
func (e *Engine) evaluateRepeat(d domain.ServiceDescriptor, st *domain.ServiceStatus, now time.Time) *domain.AlertEvent {
	if st.Outcome != domain.OutcomeUnreachable {
		return nil
	}

	st.ConsecutiveFailures++

	threshold := d.EscalationThreshold
	if threshold <= 0 || st.ConsecutiveFailures%threshold != 0 {
		return nil
	}

	ev := &domain.AlertEvent{
		ID:       uuid.NewString(),
		Service:  d.Name,
		Severity: domain.SeverityUrgent,
		Summary: fmt.Sprintf("%s still unreachable after %d consecutive failed checks",
			d.Name, st.ConsecutiveFailures),
		Previous:   domain.OutcomeUnreachable,
		Current:    domain.OutcomeUnreachable,
		Escalation: true,
		Timestamp:  now,
	}
	st.LastAlertAt[domain.SeverityUrgent] = now

	e.log.Info("alert escalated",
		"service", d.Name,
		"consecutive_failures", st.ConsecutiveFailures,
	)
	return ev
}

func (e *Engine) evaluateTransition(d domain.ServiceDescriptor, st *domain.ServiceStatus, prev domain.Outcome, v domain.HealthVerdict, now time.Time) *domain.AlertEvent {
	e.log.Info("state changed",
		"service", d.Name,
		"from", string(prev),
		"to", string(v.Outcome),
	)

	severity, recovery, notify := classify(prev, v.Outcome)
	if !notify {
		return nil
	}

	// Recovery notices are safety-relevant and rare; they bypass cooldown.
	if !recovery {
		if last, ok := st.LastAlertAt[severity]; ok && now.Sub(last) < d.Cooldown {
			e.log.Info("alert suppressed by cooldown",
				"service", d.Name,
				"severity", string(severity),
				"since_last", now.Sub(last).String(),
			)
			return nil
		}
	}

	st.LastAlertAt[severity] = now

	ev := &domain.AlertEvent{
		ID:        uuid.NewString(),
		Service:   d.Name,
		Severity:  severity,
		Summary:   summarize(d.Name, prev, v),
		Previous:  prev,
		Current:   v.Outcome,
		Recovery:  recovery,
		Timestamp: now,
	}

	e.log.Info("alert emitted",
		"service", d.Name,
		"severity", string(severity),
		"recovery", recovery,
	)
	return ev
}

// classify maps a state transition to a severity. The bool results are
// (recovery, notify).
func classify(prev, next domain.Outcome) (domain.Severity, bool, bool) {
	switch next {
	case domain.OutcomeUnreachable:
		return domain.SeverityUrgent, false, true
	case domain.OutcomeDegraded:
		return domain.SeverityMedium, false, true
	case domain.OutcomeHealthy:
		if prev == domain.OutcomeUnreachable || prev == domain.OutcomeDegraded {
			return domain.SeverityLow, true, true
		}
		// first observation after startup is not news
		return domain.SeverityLow, false, false
	}
	return domain.SeverityLow, false, false
}

func summarize(name string, prev domain.Outcome, v domain.HealthVerdict) string {
	switch v.Outcome {
	case domain.OutcomeUnreachable:
		return fmt.Sprintf("%s is unreachable: %s", name, v.Message)
	case domain.OutcomeDegraded:
		return fmt.Sprintf("%s is degraded: %s", name, v.Message)
	case domain.OutcomeHealthy:
		return fmt.Sprintf("%s recovered (was %s)", name, prev)
	}
	return fmt.Sprintf("%s changed state from %s to %s", name, prev, v.Outcome)
}
