package probes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"monitord/internal/domain"
)

// responses are read at most this far; a health page should never be larger
const maxBodyBytes = 1 << 20

func prepareURL(target string) (string, error) {
	if target == "" {
		return "", fmt.Errorf("empty target")
	}

	if !strings.Contains(target, "://") {
		target = "http://" + target
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return "", err
	}

	if parsed.Scheme == "" {
		parsed.Scheme = "http"
	}

	return parsed.String(), nil
}

// fetch performs the single GET a probe is allowed. Any transport failure,
// timeout or non-2xx status is reported through err; the caller maps that to
// an Unreachable verdict.
func fetch(ctx context.Context, client *http.Client, target string) ([]byte, error) {
	resolvedURL, err := prepareURL(target)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolvedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("request timed out: %w", err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if readErr != nil {
		return nil, fmt.Errorf("read body: %w", readErr)
	}

	return body, nil
}

func verdict(d domain.ServiceDescriptor, outcome domain.Outcome, message string) domain.HealthVerdict {
	return domain.HealthVerdict{
		Service:   d.Name,
		Outcome:   outcome,
		Message:   message,
		CheckedAt: time.Now(),
	}
}

func unreachable(d domain.ServiceDescriptor, err error) domain.HealthVerdict {
	return verdict(d, domain.OutcomeUnreachable, err.Error())
}
