package crm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TalionSlade/bankassist/internal/appointment"
)

// queryer is the subset of pgxpool.Pool the store uses, split out so tests
// can inject pgxmock.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore persists appointments to PostgreSQL.
type PostgresStore struct {
	db queryer
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a store backed by a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("crm: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

// NewPostgresStoreWithQueryer allows injecting mocks for tests.
func NewPostgresStoreWithQueryer(db queryer) *PostgresStore {
	return &PostgresStore{db: db}
}

// QueryByCustomer returns the customer's appointments ordered newest-first.
func (s *PostgresStore) QueryByCustomer(ctx context.Context, customerRef string) ([]AppointmentRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, reason, scheduled_at, location, COALESCE(banker_id, ''), customer_ref, created_at
		FROM appointments
		WHERE customer_ref = $1
		ORDER BY scheduled_at DESC
	`, customerRef)
	if err != nil {
		return nil, fmt.Errorf("crm: query appointments: %w", err)
	}
	defer rows.Close()

	var records []AppointmentRecord
	for rows.Next() {
		var r AppointmentRecord
		var location string
		if err := rows.Scan(&r.ID, &r.Reason, &r.Timestamp, &location, &r.BankerID, &r.CustomerRef, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("crm: scan appointment: %w", err)
		}
		r.Location = appointment.Location(location)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("crm: iterate appointments: %w", err)
	}
	return records, nil
}

// FindAt returns the record occupying the exact timestamp+location, or nil.
func (s *PostgresStore) FindAt(ctx context.Context, ts time.Time, location appointment.Location) (*AppointmentRecord, error) {
	var r AppointmentRecord
	var loc string
	err := s.db.QueryRow(ctx, `
		SELECT id, reason, scheduled_at, location, COALESCE(banker_id, ''), customer_ref, created_at
		FROM appointments
		WHERE scheduled_at = $1 AND location = $2
		LIMIT 1
	`, ts.UTC(), string(location)).Scan(&r.ID, &r.Reason, &r.Timestamp, &loc, &r.BankerID, &r.CustomerRef, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("crm: find appointment: %w", err)
	}
	r.Location = appointment.Location(loc)
	return &r, nil
}

// Create inserts the record and returns it with the assigned ID.
func (s *PostgresStore) Create(ctx context.Context, record AppointmentRecord) (*AppointmentRecord, error) {
	record.ID = uuid.NewString()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	var bankerID any
	if record.BankerID != "" {
		bankerID = record.BankerID
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO appointments (id, reason, scheduled_at, location, banker_id, customer_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, record.ID, record.Reason, record.Timestamp.UTC(), string(record.Location), bankerID, record.CustomerRef, record.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("crm: insert appointment: %w", err)
	}
	return &record, nil
}
