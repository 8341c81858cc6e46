package probes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"monitord/internal/domain"
)

// CrawlerProbe checks the web crawler service. The crawler usually answers
// with a JSON status document, but a plain-text or HTML body is still treated
// as reachable and healthy: the crawler is not required to speak JSON.
type CrawlerProbe struct {
	client *http.Client
}

func (p *CrawlerProbe) Probe(ctx context.Context, d domain.ServiceDescriptor) domain.HealthVerdict {
	body, err := fetch(ctx, p.client, d.URL)
	if err != nil {
		return unreachable(d, err)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if jsonErr := json.Unmarshal(body, &payload); jsonErr != nil {
		// structured output not declared required for this variant
		return verdict(d, domain.OutcomeHealthy, "crawler reachable, non-JSON response accepted")
	}

	if payload.Status == "success" {
		return verdict(d, domain.OutcomeHealthy, "crawler reports success")
	}

	return verdict(d, domain.OutcomeDegraded,
		fmt.Sprintf("crawler reports status %q", payload.Status))
}

func (p *CrawlerProbe) Kind() domain.ProbeKind {
	return domain.ProbeKindCrawler
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
