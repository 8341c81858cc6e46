package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"monitord/internal/domain"
	"monitord/internal/notify"
)

// AuditSink receives every dispatched event, independent of channel delivery.
type AuditSink interface {
	Publish(ctx context.Context, event domain.AlertEvent) error
}

// Config controls routing and the bounded retry budget.
type Config struct {
	// SharedChannel additionally receives Urgent and High alerts for every
	// service. Empty disables the shared route.
	SharedChannel string
	MaxAttempts   int
	BaseBackoff   time.Duration
}

// Dispatcher routes alert events to their destination channels and delivers
// each one independently, fire-and-forget with bounded retry.
type Dispatcher struct {
	sender   notify.Sender
	audit    AuditSink
	channels map[string][]string
	cfg      Config
	log      *slog.Logger
	wg       sync.WaitGroup
}

func New(sender notify.Sender, audit AuditSink, descriptors []domain.ServiceDescriptor, cfg Config, log *slog.Logger) *Dispatcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 500 * time.Millisecond
	}

	channels := make(map[string][]string, len(descriptors))
	for _, d := range descriptors {
		channels[d.Name] = d.Channels
	}

	return &Dispatcher{
		sender:   sender,
		audit:    audit,
		channels: channels,
		cfg:      cfg,
		log:      log,
	}
}

// Dispatch hands the event to every routed channel. It returns immediately;
// deliveries run concurrently and a failure on one channel never blocks
// another. Wait collects them at shutdown.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.AlertEvent) {
	if d.audit != nil {
		if err := d.audit.Publish(ctx, event); err != nil {
			d.log.Error("failed to record alert event",
				"service", event.Service,
				"error", err.Error(),
			)
		}
	}

	message := render(event)

	for _, channel := range d.route(event) {
		d.wg.Add(1)
		go func(channel string) {
			defer d.wg.Done()
			d.deliver(ctx, channel, message, event)
		}(channel)
	}
}

// Wait blocks until all in-flight deliveries have finished or given up.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) route(event domain.AlertEvent) []string {
	routed := append([]string(nil), d.channels[event.Service]...)

	if d.cfg.SharedChannel != "" &&
		(event.Severity == domain.SeverityUrgent || event.Severity == domain.SeverityHigh) {
		routed = append(routed, d.cfg.SharedChannel)
	}

	seen := make(map[string]bool, len(routed))
	unique := routed[:0]
	for _, ch := range routed {
		if ch == "" || seen[ch] {
			continue
		}
		seen[ch] = true
		unique = append(unique, ch)
	}

	return unique
}

func (d *Dispatcher) deliver(ctx context.Context, channel, message string, event domain.AlertEvent) {
	var lastErr error

	for attempt := 0; attempt < d.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := d.cfg.BaseBackoff << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				d.log.Error("delivery abandoned on shutdown",
					"service", event.Service,
					"channel", channel,
				)
				return
			}
		}

		err := d.sender.Send(ctx, channel, message)
		if err == nil {
			d.log.Info("alert delivered",
				"service", event.Service,
				"channel", channel,
				"severity", string(event.Severity),
			)
			return
		}

		lastErr = err
		if !notify.Retryable(err) {
			break
		}

		d.log.Warn("delivery attempt failed",
			"service", event.Service,
			"channel", channel,
			"attempt", attempt+1,
			"error", err.Error(),
		)
	}

	// A missed alert must not create unbounded backlog: log and drop.
	d.log.Error("delivery failed, dropping event for channel",
		"service", event.Service,
		"channel", channel,
		"error", lastErr.Error(),
	)
}

func render(event domain.AlertEvent) string {
	tag := strings.ToUpper(string(event.Severity))
	if event.Recovery {
		return fmt.Sprintf("[%s] %s", tag, event.Summary)
	}
	return fmt.Sprintf("[%s] %s (was %s)", tag, event.Summary, event.Previous)
}
