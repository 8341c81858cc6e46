package probes

import (
	"context"
	"net/http"
	"strings"

	"monitord/internal/domain"
)

// WorkflowProbe checks the workflow-automation platform. Its landing page
// always mentions the product name somewhere, so a case-insensitive keyword
// match is enough to tell a real instance from a placeholder page.
type WorkflowProbe struct {
	client *http.Client
}

const workflowKeyword = "n8n"

func (p *WorkflowProbe) Probe(ctx context.Context, d domain.ServiceDescriptor) domain.HealthVerdict {
	body, err := fetch(ctx, p.client, d.URL)
	if err != nil {
		return unreachable(d, err)
	}

	if strings.Contains(strings.ToLower(string(body)), workflowKeyword) {
		return verdict(d, domain.OutcomeHealthy, "workflow platform is up")
	}

	return verdict(d, domain.OutcomeDegraded, "reachable but response does not look like the workflow platform")
}

func (p *WorkflowProbe) Kind() domain.ProbeKind {
	return domain.ProbeKindWorkflow
}
