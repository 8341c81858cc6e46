package probes

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"monitord/internal/domain"
)

// blockchainKeyword is the banner the indexer's landing page prints while its
// own watch loop is alive. Case-sensitive on purpose.
const blockchainKeyword = "Monitor is running"

// BlockchainProbe checks the blockchain indexer service.
type BlockchainProbe struct {
	client *http.Client
}

func (p *BlockchainProbe) Probe(ctx context.Context, d domain.ServiceDescriptor) domain.HealthVerdict {
	body, err := fetch(ctx, p.client, d.URL)
	if err != nil {
		return unreachable(d, err)
	}

	if strings.Contains(string(body), blockchainKeyword) {
		return verdict(d, domain.OutcomeHealthy, "blockchain monitor is running")
	}

	return verdict(d, domain.OutcomeDegraded,
		fmt.Sprintf("reachable but expected banner missing, got: %s", truncate(string(body), 100)))
}

func (p *BlockchainProbe) Kind() domain.ProbeKind {
	return domain.ProbeKindBlockchain
}
