package status

import (
	"sort"
	"sync"
	"time"

	"monitord/internal/domain"
)

// Store holds the current per-service health state. The record set is fixed
// at construction; mutation happens only through Update, which serializes
// read-modify-write cycles per service so a scheduled tick racing an
// on-demand trigger cannot interleave. Records of different services are
// locked independently.
type Store struct {
	records map[string]*entry
}

type entry struct {
	mu     sync.Mutex
	status domain.ServiceStatus
}

// NewStore creates one record per descriptor, initialized to Unknown.
func NewStore(descriptors []domain.ServiceDescriptor) *Store {
	records := make(map[string]*entry, len(descriptors))
	for _, d := range descriptors {
		records[d.Name] = &entry{
			status: domain.ServiceStatus{
				Service:     d.Name,
				Outcome:     domain.OutcomeUnknown,
				LastAlertAt: make(map[domain.Severity]time.Time),
			},
		}
	}
	return &Store{records: records}
}

// Update runs fn with exclusive access to the service's record.
func (s *Store) Update(name string, fn func(st *domain.ServiceStatus)) error {
	e, ok := s.records[name]
	if !ok {
		return domain.ErrServiceNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	fn(&e.status)
	return nil
}

// Snapshot returns a copy of the service's record.
func (s *Store) Snapshot(name string) (domain.ServiceStatus, error) {
	e, ok := s.records[name]
	if !ok {
		return domain.ServiceStatus{}, domain.ErrServiceNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return copyStatus(e.status), nil
}

// SnapshotAll returns copies of every record, sorted by service name.
func (s *Store) SnapshotAll() []domain.ServiceStatus {
	out := make([]domain.ServiceStatus, 0, len(s.records))
	for _, e := range s.records {
		e.mu.Lock()
		out = append(out, copyStatus(e.status))
		e.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })
	return out
}

func copyStatus(st domain.ServiceStatus) domain.ServiceStatus {
	cp := st
	cp.LastAlertAt = make(map[domain.Severity]time.Time, len(st.LastAlertAt))
	for sev, ts := range st.LastAlertAt {
		cp.LastAlertAt[sev] = ts
	}
	return cp
}
