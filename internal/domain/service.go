package domain

import (
	"errors"
	"time"
)

// тип пробы для сервиса

type ProbeKind string

const (
	ProbeKindBlockchain ProbeKind = "blockchain"
	ProbeKindCrawler    ProbeKind = "crawler"
	ProbeKindWorkflow   ProbeKind = "workflow"
	ProbeKindMessaging  ProbeKind = "messaging"
)

// ErrServiceNotFound is returned for lookups of service names that were never
// registered from configuration.
var ErrServiceNotFound = errors.New("service not found")

// ServiceDescriptor is the static identity of a monitored service. It is
// built once from configuration at startup and never mutated afterwards.
type ServiceDescriptor struct {
	Name                string        `json:"name"`
	URL                 string        `json:"url"`
	Kind                ProbeKind     `json:"probe"`
	Interval            time.Duration `json:"interval"`
	Timeout             time.Duration `json:"timeout"`
	Cooldown            time.Duration `json:"cooldown"`
	EscalationThreshold int           `json:"escalation_threshold"`
	Channels            []string      `json:"channels"`
}

func (k ProbeKind) Valid() bool {
	switch k {
	case ProbeKindBlockchain, ProbeKindCrawler, ProbeKindWorkflow, ProbeKindMessaging:
		return true
	}
	return false
}
