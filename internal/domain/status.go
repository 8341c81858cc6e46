package domain

import "time"

// ServiceStatus is the per-service record kept by the status store. Only the
// alert engine mutates it, always under the store's per-service lock.
type ServiceStatus struct {
	Service             string                 `json:"service"`
	Outcome             Outcome                `json:"outcome"`
	Message             string                 `json:"message,omitempty"`
	LastCheck           time.Time              `json:"last_check"`
	LastChange          time.Time              `json:"last_change"`
	ConsecutiveFailures int                    `json:"consecutive_failures"`
	LastAlertAt         map[Severity]time.Time `json:"last_alert_at"`
}
