package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TalionSlade/bankassist/internal/appointment"
	"github.com/TalionSlade/bankassist/internal/crm"
	"github.com/TalionSlade/bankassist/pkg/logging"
)

const maxAlternatives = 3

// Committer checks for scheduling conflicts and persists resolved slot sets
// via the CRM collaborator. No retry: a persistence failure is reported to
// the caller, which owns the decision to retry the whole turn.
type Committer struct {
	store  crm.Store
	logger *logging.Logger
}

// NewCommitter creates a booking committer.
func NewCommitter(store crm.Store, logger *logging.Logger) *Committer {
	if store == nil {
		panic("conversation: crm store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Committer{store: store, logger: logger}
}

// Commit persists the appointment, or reports why it cannot. Preconditions:
// the slot set is complete and its timestamp resolved.
func (c *Committer) Commit(ctx context.Context, slots appointment.SlotSet, customer crm.Customer) (*crm.AppointmentRecord, error) {
	if !slots.Complete() {
		return nil, fmt.Errorf("conversation: commit called with missing fields %v", slots.MissingFields())
	}
	if slots.Timestamp == nil {
		return nil, errors.New("conversation: commit called with unresolved timestamp")
	}

	existing, err := c.store.FindAt(ctx, *slots.Timestamp, slots.Location)
	if err != nil {
		bookingOutcomeTotal.WithLabelValues("persistence_error").Inc()
		return nil, &PersistenceError{Err: err}
	}
	if existing != nil {
		bookingOutcomeTotal.WithLabelValues("conflict").Inc()
		alternatives := c.suggestAlternatives(ctx, *slots.Timestamp, slots.Location)
		c.logger.Info("booking conflict",
			"timestamp", slots.Timestamp.Format(time.RFC3339),
			"location", slots.Location,
			"alternatives", len(alternatives),
		)
		return nil, &ConflictError{
			Timestamp:    *slots.Timestamp,
			Location:     string(slots.Location),
			Alternatives: alternatives,
			Existing:     existing,
		}
	}

	record, err := c.store.Create(ctx, crm.AppointmentRecord{
		Reason:      slots.Reason,
		Timestamp:   slots.Timestamp.UTC(),
		Location:    slots.Location,
		BankerID:    slots.BankerID,
		CustomerRef: customer.Ref,
	})
	if err != nil {
		bookingOutcomeTotal.WithLabelValues("persistence_error").Inc()
		return nil, &PersistenceError{Err: err}
	}

	bookingOutcomeTotal.WithLabelValues("created").Inc()
	c.logger.Info("appointment booked",
		"appointment_id", record.ID,
		"timestamp", record.Timestamp.Format(time.RFC3339),
		"location", record.Location,
	)
	return record, nil
}

// suggestAlternatives proposes free slots near the contested one: the same
// time on nearby days at the requested branch first, then the same instant
// at the other branches. Lookup failures just shrink the suggestion list.
func (c *Committer) suggestAlternatives(ctx context.Context, ts time.Time, loc appointment.Location) []ProposedSlot {
	var alternatives []ProposedSlot

	for _, dayOffset := range []int{1, -1, 2, 3} {
		candidate := ts.AddDate(0, 0, dayOffset)
		existing, err := c.store.FindAt(ctx, candidate, loc)
		if err != nil || existing != nil {
			continue
		}
		alternatives = append(alternatives, ProposedSlot{
			Timestamp: candidate,
			Location:  loc,
			Display:   fmt.Sprintf("%s at %s", appointment.FormatTimestamp(candidate), loc),
		})
		if len(alternatives) == maxAlternatives {
			return alternatives
		}
	}

	for _, other := range []appointment.Location{
		appointment.LocationBrooklyn,
		appointment.LocationManhattan,
		appointment.LocationNewYork,
	} {
		if other == loc {
			continue
		}
		existing, err := c.store.FindAt(ctx, ts, other)
		if err != nil || existing != nil {
			continue
		}
		alternatives = append(alternatives, ProposedSlot{
			Timestamp: ts,
			Location:  other,
			Display:   fmt.Sprintf("%s at %s", appointment.FormatTimestamp(ts), other),
		})
		if len(alternatives) == maxAlternatives {
			break
		}
	}

	return alternatives
}
