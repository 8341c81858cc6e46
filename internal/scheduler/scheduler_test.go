package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"monitord/internal/domain"
	"monitord/internal/engine"
	"monitord/internal/status"
)

type captureSink struct {
	mu     sync.Mutex
	events []domain.AlertEvent
}

func (c *captureSink) Dispatch(ctx context.Context, event domain.AlertEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func newTestScheduler(t *testing.T, d domain.ServiceDescriptor) (*Scheduler, *status.Store, *captureSink) {
	t.Helper()

	descriptors := []domain.ServiceDescriptor{d}
	store := status.NewStore(descriptors)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(store, descriptors, log)
	sink := &captureSink{}

	sched, err := New(descriptors, eng, store, sink, &http.Client{Timeout: 5 * time.Second}, log)
	if err != nil {
		t.Fatal(err)
	}
	return sched, store, sink
}

func healthyServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Monitor is running"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTriggerUnknownService(t *testing.T) {
	srv := healthyServer(t)
	sched, _, _ := newTestScheduler(t, domain.ServiceDescriptor{
		Name: "chain", URL: srv.URL, Kind: domain.ProbeKindBlockchain,
		Interval: time.Hour, Timeout: time.Second, Cooldown: time.Minute, EscalationThreshold: 3,
	})

	if _, err := sched.Trigger(context.Background(), "ghost"); !errors.Is(err, domain.ErrServiceNotFound) {
		t.Errorf("Trigger error = %v, want ErrServiceNotFound", err)
	}
	if _, err := sched.Status("ghost"); !errors.Is(err, domain.ErrServiceNotFound) {
		t.Errorf("Status error = %v, want ErrServiceNotFound", err)
	}
}

func TestTriggerRunsProbeAndUpdatesStore(t *testing.T) {
	srv := healthyServer(t)
	sched, store, sink := newTestScheduler(t, domain.ServiceDescriptor{
		Name: "chain", URL: srv.URL, Kind: domain.ProbeKindBlockchain,
		Interval: time.Hour, Timeout: time.Second, Cooldown: time.Minute, EscalationThreshold: 3,
	})

	v, err := sched.Trigger(context.Background(), "chain")
	if err != nil {
		t.Fatal(err)
	}
	if v.Outcome != domain.OutcomeHealthy {
		t.Errorf("verdict = %s, want healthy", v.Outcome)
	}

	st, err := store.Snapshot("chain")
	if err != nil {
		t.Fatal(err)
	}
	if st.Outcome != domain.OutcomeHealthy {
		t.Errorf("stored outcome = %s, want healthy", st.Outcome)
	}

	// Unknown -> Healthy is not alert-worthy.
	if sink.count() != 0 {
		t.Errorf("events = %d, want 0", sink.count())
	}
}

func TestUnreachableServiceProducesUrgentEvent(t *testing.T) {
	srv := healthyServer(t)
	sched, _, sink := newTestScheduler(t, domain.ServiceDescriptor{
		Name: "chain", URL: srv.URL, Kind: domain.ProbeKindBlockchain,
		Interval: time.Hour, Timeout: time.Second, Cooldown: time.Minute, EscalationThreshold: 3,
	})

	if _, err := sched.Trigger(context.Background(), "chain"); err != nil {
		t.Fatal(err)
	}

	srv.Close()
	v, err := sched.Trigger(context.Background(), "chain")
	if err != nil {
		t.Fatal(err)
	}
	if v.Outcome != domain.OutcomeUnreachable {
		t.Fatalf("verdict = %s, want unreachable", v.Outcome)
	}

	if sink.count() != 1 {
		t.Fatalf("events = %d, want 1", sink.count())
	}
	if sink.events[0].Severity != domain.SeverityUrgent {
		t.Errorf("severity = %s, want urgent", sink.events[0].Severity)
	}
}

func TestSchedulerProbesOnStartAndStops(t *testing.T) {
	srv := healthyServer(t)
	sched, store, _ := newTestScheduler(t, domain.ServiceDescriptor{
		Name: "chain", URL: srv.URL, Kind: domain.ProbeKindBlockchain,
		Interval: time.Hour, Timeout: time.Second, Cooldown: time.Minute, EscalationThreshold: 3,
	})

	sched.Start(context.Background())

	deadline := time.After(2 * time.Second)
	for {
		st, _ := store.Snapshot("chain")
		if st.Outcome == domain.OutcomeHealthy {
			break
		}
		select {
		case <-deadline:
			t.Fatal("initial probe never completed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	done := make(chan struct{})
	go func() {
		sched.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestTimedOutProbeStillYieldsVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	t.Cleanup(srv.Close)

	sched, store, _ := newTestScheduler(t, domain.ServiceDescriptor{
		Name: "slow", URL: srv.URL, Kind: domain.ProbeKindWorkflow,
		Interval: time.Hour, Timeout: 50 * time.Millisecond, Cooldown: time.Minute, EscalationThreshold: 3,
	})

	v, err := sched.Trigger(context.Background(), "slow")
	if err != nil {
		t.Fatal(err)
	}
	if v.Outcome != domain.OutcomeUnreachable {
		t.Errorf("verdict = %s, want unreachable on timeout", v.Outcome)
	}

	st, _ := store.Snapshot("slow")
	if st.Outcome != domain.OutcomeUnreachable {
		t.Errorf("stored outcome = %s, want unreachable", st.Outcome)
	}
}
