package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"monitord/internal/domain"
	"monitord/internal/engine"
	"monitord/internal/probes"
	"monitord/internal/status"
)

// EventSink receives the alert events the engine decides to emit.
type EventSink interface {
	Dispatch(ctx context.Context, event domain.AlertEvent)
}

type registration struct {
	descriptor domain.ServiceDescriptor
	prober     probes.Prober
}

// Scheduler owns one independent polling loop per registered service. A slow
// or failing probe never delays another service's schedule.
type Scheduler struct {
	services map[string]registration
	engine   *engine.Engine
	store    *status.Store
	sink     EventSink
	log      *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func New(descriptors []domain.ServiceDescriptor, eng *engine.Engine, store *status.Store, sink EventSink, client *http.Client, log *slog.Logger) (*Scheduler, error) {
	services := make(map[string]registration, len(descriptors))
	for _, d := range descriptors {
		prober, err := probes.ForKind(d.Kind, client)
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", d.Name, err)
		}
		services[d.Name] = registration{descriptor: d, prober: prober}
	}

	return &Scheduler{
		services: services,
		engine:   eng,
		store:    store,
		sink:     sink,
		log:      log,
	}, nil
}

// Start launches every polling loop. Each loop probes once immediately, then
// on its own ticker until the scheduler is stopped.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, reg := range s.services {
		s.wg.Add(1)
		go s.run(loopCtx, reg)
	}

	s.log.Info("scheduler started", "services", len(s.services))
}

// Stop signals every loop and waits for in-flight probes to finish. No probe
// is left running unobserved once Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

// Trigger performs one out-of-cycle probe and returns the fresh verdict.
func (s *Scheduler) Trigger(ctx context.Context, name string) (domain.HealthVerdict, error) {
	reg, ok := s.services[name]
	if !ok {
		return domain.HealthVerdict{}, fmt.Errorf("trigger %s: %w", name, domain.ErrServiceNotFound)
	}

	return s.check(ctx, reg), nil
}

// Status returns the current stored state of one service.
func (s *Scheduler) Status(name string) (domain.ServiceStatus, error) {
	return s.store.Snapshot(name)
}

// StatusAll returns the current stored state of every service.
func (s *Scheduler) StatusAll() []domain.ServiceStatus {
	return s.store.SnapshotAll()
}

func (s *Scheduler) run(ctx context.Context, reg registration) {
	defer s.wg.Done()

	s.check(ctx, reg)

	ticker := time.NewTicker(reg.descriptor.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.check(ctx, reg)
		case <-ctx.Done():
			s.log.Debug("polling loop stopped", "service", reg.descriptor.Name)
			return
		}
	}
}

// check runs one full probe cycle: probe with a hard timeout, evaluate, and
// hand any resulting event to the sink.
func (s *Scheduler) check(ctx context.Context, reg registration) domain.HealthVerdict {
	d := reg.descriptor

	probeCtx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	start := time.Now()
	v := reg.prober.Probe(probeCtx, d)

	// A prober must always produce a verdict; synthesize one if it did not.
	if !v.Outcome.Valid() || v.Outcome == "" {
		v = domain.HealthVerdict{
			Service:   d.Name,
			Outcome:   domain.OutcomeUnreachable,
			Message:   "probe produced no verdict",
			CheckedAt: time.Now(),
		}
	}

	s.log.Info("probe completed",
		"service", d.Name,
		"outcome", string(v.Outcome),
		"duration", time.Since(start).String(),
	)

	// A probe cut short by shutdown says nothing about the service.
	if ctx.Err() != nil {
		return v
	}

	if event := s.engine.Evaluate(v); event != nil {
		s.sink.Dispatch(ctx, *event)
	}

	return v
}
