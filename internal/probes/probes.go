package probes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"monitord/internal/domain"
)

// Prober reduces one HTTP round trip against a monitored service to a health
// verdict. Implementations are stateless across invocations and must never
// return transport failures as anything other than an Unreachable verdict.
type Prober interface {
	Probe(ctx context.Context, d domain.ServiceDescriptor) domain.HealthVerdict
	Kind() domain.ProbeKind
}

// ForKind returns the prober implementing the given variant's classification
// rule. New variants are added here, never by touching the scheduler.
func ForKind(kind domain.ProbeKind, client *http.Client) (Prober, error) {
	switch kind {
	case domain.ProbeKindBlockchain:
		return &BlockchainProbe{client: client}, nil
	case domain.ProbeKindCrawler:
		return &CrawlerProbe{client: client}, nil
	case domain.ProbeKindWorkflow:
		return &WorkflowProbe{client: client}, nil
	case domain.ProbeKindMessaging:
		return &MessagingProbe{client: client}, nil
	}
	return nil, fmt.Errorf("unknown probe kind: %s", kind)
}

// NewClient builds the shared HTTP client used by all probes. Per-invocation
// deadlines come from the scheduler's context; the client timeout is only a
// backstop.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
