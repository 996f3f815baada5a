package crm

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TalionSlade/bankassist/internal/appointment"
)

// Store is the CRM appointment collaborator. Queries are read-only and
// scoped to one customer; creates are single-record and non-transactional.
type Store interface {
	// QueryByCustomer returns the customer's appointments ordered newest-first.
	QueryByCustomer(ctx context.Context, customerRef string) ([]AppointmentRecord, error)
	// FindAt returns the appointment occupying the exact timestamp+location,
	// or nil when the slot is free.
	FindAt(ctx context.Context, ts time.Time, location appointment.Location) (*AppointmentRecord, error)
	// Create persists a new appointment and returns it with its assigned ID.
	Create(ctx context.Context, record AppointmentRecord) (*AppointmentRecord, error)
}

// MemoryStore is an in-memory Store used in development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []AppointmentRecord
}

// NewMemoryStore creates an empty in-memory CRM store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Seed inserts records directly, bypassing ID assignment when one is set.
func (s *MemoryStore) Seed(records ...AppointmentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		s.records = append(s.records, r)
	}
}

// QueryByCustomer returns the customer's appointments newest-first.
func (s *MemoryStore) QueryByCustomer(ctx context.Context, customerRef string) ([]AppointmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []AppointmentRecord
	for _, r := range s.records {
		if r.CustomerRef == customerRef {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// FindAt returns the record at the exact timestamp+location, if any.
func (s *MemoryStore) FindAt(ctx context.Context, ts time.Time, location appointment.Location) (*AppointmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.Location == location && r.Timestamp.Equal(ts) {
			found := r
			return &found, nil
		}
	}
	return nil, nil
}

// Create stores the record with a fresh ID.
func (s *MemoryStore) Create(ctx context.Context, record AppointmentRecord) (*AppointmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.ID = uuid.NewString()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	s.records = append(s.records, record)
	created := record
	return &created, nil
}

// Count returns how many records the store holds. Test helper.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
