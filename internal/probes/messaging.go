package probes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"monitord/internal/domain"
)

// MessagingProbe checks the messaging-bot API by calling its identity
// endpoint. This variant declares a structured response: the API contract
// guarantees JSON, so a body that fails to parse is a fault, not tolerated
// flexibility.
type MessagingProbe struct {
	client *http.Client
}

func (p *MessagingProbe) Probe(ctx context.Context, d domain.ServiceDescriptor) domain.HealthVerdict {
	target := strings.TrimSuffix(d.URL, "/") + "/getMe"

	body, err := fetch(ctx, p.client, target)
	if err != nil {
		return unreachable(d, err)
	}

	var payload struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if jsonErr := json.Unmarshal(body, &payload); jsonErr != nil {
		return unreachable(d, fmt.Errorf("expected JSON identity response: %w", jsonErr))
	}

	if payload.OK {
		return verdict(d, domain.OutcomeHealthy, "bot API responds and token is valid")
	}

	msg := payload.Description
	if msg == "" {
		msg = "unknown error"
	}
	return verdict(d, domain.OutcomeDegraded, fmt.Sprintf("bot API rejected the token: %s", msg))
}

func (p *MessagingProbe) Kind() domain.ProbeKind {
	return domain.ProbeKindMessaging
}
