package status

import (
	"errors"
	"sync"
	"testing"
	"time"

	"monitord/internal/domain"
)

func descriptors(names ...string) []domain.ServiceDescriptor {
	out := make([]domain.ServiceDescriptor, 0, len(names))
	for _, n := range names {
		out = append(out, domain.ServiceDescriptor{Name: n, URL: "http://" + n + ".test"})
	}
	return out
}

func TestStoreInitializesToUnknown(t *testing.T) {
	s := NewStore(descriptors("a", "b"))

	for _, name := range []string{"a", "b"} {
		st, err := s.Snapshot(name)
		if err != nil {
			t.Fatal(err)
		}
		if st.Outcome != domain.OutcomeUnknown {
			t.Errorf("%s outcome = %s, want unknown", name, st.Outcome)
		}
	}
}

func TestStoreNotFound(t *testing.T) {
	s := NewStore(descriptors("a"))

	if _, err := s.Snapshot("ghost"); !errors.Is(err, domain.ErrServiceNotFound) {
		t.Errorf("Snapshot error = %v, want ErrServiceNotFound", err)
	}
	if err := s.Update("ghost", func(st *domain.ServiceStatus) {}); !errors.Is(err, domain.ErrServiceNotFound) {
		t.Errorf("Update error = %v, want ErrServiceNotFound", err)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore(descriptors("a"))

	st, _ := s.Snapshot("a")
	st.Outcome = domain.OutcomeUnreachable
	st.LastAlertAt[domain.SeverityUrgent] = time.Now()

	fresh, _ := s.Snapshot("a")
	if fresh.Outcome != domain.OutcomeUnknown {
		t.Error("mutating a snapshot leaked into the store")
	}
	if len(fresh.LastAlertAt) != 0 {
		t.Error("mutating a snapshot's alert map leaked into the store")
	}
}

func TestSnapshotAllSorted(t *testing.T) {
	s := NewStore(descriptors("zeta", "alpha", "mid"))

	all := s.SnapshotAll()
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Service != "alpha" || all[2].Service != "zeta" {
		t.Errorf("order = %s,%s,%s, want alphabetical", all[0].Service, all[1].Service, all[2].Service)
	}
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	s := NewStore(descriptors("a"))

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update("a", func(st *domain.ServiceStatus) {
				st.ConsecutiveFailures++
			})
		}()
	}
	wg.Wait()

	st, _ := s.Snapshot("a")
	if st.ConsecutiveFailures != n {
		t.Errorf("consecutive failures = %d, want %d", st.ConsecutiveFailures, n)
	}
}
