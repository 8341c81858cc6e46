package domain

import "time"

// результат одной проверки сервиса

type Outcome string

const (
	OutcomeUnknown     Outcome = "unknown"
	OutcomeHealthy     Outcome = "healthy"
	OutcomeDegraded    Outcome = "degraded"
	OutcomeUnreachable Outcome = "unreachable"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeUnknown, OutcomeHealthy, OutcomeDegraded, OutcomeUnreachable:
		return true
	}
	return false
}

// HealthVerdict is produced by a single probe invocation and consumed
// immediately by the alert engine. It is not retained beyond the status
// update it feeds.
type HealthVerdict struct {
	Service   string    `json:"service"`
	Outcome   Outcome   `json:"outcome"`
	Message   string    `json:"message,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}
