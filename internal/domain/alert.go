package domain

import "time"

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
	SeverityUrgent Severity = "urgent"
)

// AlertEvent describes one decided-to-notify occurrence. It is created by the
// alert engine, consumed once by the dispatcher and then discarded.
type AlertEvent struct {
	ID         string    `json:"id"`
	Service    string    `json:"service"`
	Severity   Severity  `json:"severity"`
	Summary    string    `json:"summary"`
	Previous   Outcome   `json:"previous"`
	Current    Outcome   `json:"current"`
	Escalation bool      `json:"escalation"`
	Recovery   bool      `json:"recovery"`
	Timestamp  time.Time `json:"timestamp"`
}
