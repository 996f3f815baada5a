package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TalionSlade/bankassist/internal/appointment"
	"github.com/TalionSlade/bankassist/internal/crm"
	"github.com/TalionSlade/bankassist/pkg/logging"
)

// failingStore errors on every operation. Shared by the committer and
// context assembler tests.
type failingStore struct {
	err error
}

func (s *failingStore) QueryByCustomer(ctx context.Context, customerRef string) ([]crm.AppointmentRecord, error) {
	return nil, s.err
}

func (s *failingStore) FindAt(ctx context.Context, ts time.Time, location appointment.Location) (*crm.AppointmentRecord, error) {
	return nil, s.err
}

func (s *failingStore) Create(ctx context.Context, record crm.AppointmentRecord) (*crm.AppointmentRecord, error) {
	return nil, s.err
}

func completeSlots() appointment.SlotSet {
	ts := time.Date(2026, 9, 3, 14, 30, 0, 0, time.UTC)
	return appointment.SlotSet{
		Reason:    "mortgage consultation",
		Date:      "2026-09-03",
		Time:      "14:30",
		Location:  appointment.LocationBrooklyn,
		BankerID:  "staff-ab12",
		Timestamp: &ts,
	}
}

func TestCommitCreatesRecord(t *testing.T) {
	store := crm.NewMemoryStore()
	committer := NewCommitter(store, logging.New("error"))

	record, err := committer.Commit(context.Background(), completeSlots(), crm.Customer{Type: crm.CustomerTypeRegular, Ref: "cust-9"})
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "mortgage consultation", record.Reason)
	assert.Equal(t, "cust-9", record.CustomerRef)
	assert.Equal(t, 1, store.Count())
}

func TestCommitConflictSuggestsAlternatives(t *testing.T) {
	slots := completeSlots()
	store := crm.NewMemoryStore()
	store.Seed(crm.AppointmentRecord{
		Reason:    "existing booking",
		Timestamp: *slots.Timestamp,
		Location:  slots.Location,
	})
	committer := NewCommitter(store, logging.New("error"))

	_, err := committer.Commit(context.Background(), slots, crm.Customer{Type: crm.CustomerTypeGuest})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, *slots.Timestamp, conflict.Timestamp)
	require.NotEmpty(t, conflict.Alternatives)
	assert.LessOrEqual(t, len(conflict.Alternatives), 3)

	// Every alternative is actually free and never the contested slot.
	for _, alt := range conflict.Alternatives {
		assert.False(t, alt.Timestamp.Equal(*slots.Timestamp) && alt.Location == slots.Location)
		existing, ferr := store.FindAt(context.Background(), alt.Timestamp, alt.Location)
		require.NoError(t, ferr)
		assert.Nil(t, existing)
	}
	assert.Equal(t, 1, store.Count())
}

func TestCommitCrowdedCalendarFallsBackToOtherBranches(t *testing.T) {
	slots := completeSlots()
	store := crm.NewMemoryStore()
	// Occupy the requested slot and every nearby day at the same branch.
	for _, offset := range []int{0, 1, -1, 2, 3} {
		store.Seed(crm.AppointmentRecord{
			Reason:    "existing booking",
			Timestamp: slots.Timestamp.AddDate(0, 0, offset),
			Location:  slots.Location,
		})
	}
	committer := NewCommitter(store, logging.New("error"))

	_, err := committer.Commit(context.Background(), slots, crm.Customer{Type: crm.CustomerTypeGuest})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.NotEmpty(t, conflict.Alternatives)
	for _, alt := range conflict.Alternatives {
		assert.NotEqual(t, slots.Location, alt.Location)
		assert.True(t, alt.Timestamp.Equal(*slots.Timestamp))
	}
}

func TestCommitWrapsPersistenceFailure(t *testing.T) {
	committer := NewCommitter(&failingStore{err: errors.New("connection refused")}, logging.New("error"))

	_, err := committer.Commit(context.Background(), completeSlots(), crm.Customer{Type: crm.CustomerTypeGuest})

	var persistence *PersistenceError
	require.ErrorAs(t, err, &persistence)
	assert.Contains(t, persistence.Error(), "connection refused")
}

func TestCommitRejectsIncompleteSlots(t *testing.T) {
	committer := NewCommitter(crm.NewMemoryStore(), logging.New("error"))

	slots := completeSlots()
	slots.Location = ""

	_, err := committer.Commit(context.Background(), slots, crm.Customer{Type: crm.CustomerTypeGuest})
	require.Error(t, err)
}

func TestCommitRejectsUnresolvedTimestamp(t *testing.T) {
	committer := NewCommitter(crm.NewMemoryStore(), logging.New("error"))

	slots := completeSlots()
	slots.Timestamp = nil

	_, err := committer.Commit(context.Background(), slots, crm.Customer{Type: crm.CustomerTypeGuest})
	require.Error(t, err)
}
