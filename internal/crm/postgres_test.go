package crm

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TalionSlade/bankassist/internal/appointment"
)

func TestPostgresQueryByCustomer(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "reason", "scheduled_at", "location", "banker_id", "customer_ref", "created_at"}).
		AddRow("apt-2", "loan consultation", now.Add(48*time.Hour), "Brooklyn", "staff-a1", "cust-7", now).
		AddRow("apt-1", "notary service", now.Add(24*time.Hour), "Manhattan", "", "cust-7", now)

	mock.ExpectQuery("SELECT id, reason, scheduled_at, location").
		WithArgs("cust-7").
		WillReturnRows(rows)

	store := NewPostgresStoreWithQueryer(mock)
	records, err := store.QueryByCustomer(context.Background(), "cust-7")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "apt-2", records[0].ID)
	assert.Equal(t, appointment.LocationBrooklyn, records[0].Location)
	assert.Equal(t, "staff-a1", records[0].BankerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindAtNoRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ts := time.Date(2026, 9, 4, 14, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, reason, scheduled_at, location").
		WithArgs(ts, "Brooklyn").
		WillReturnRows(pgxmock.NewRows([]string{"id", "reason", "scheduled_at", "location", "banker_id", "customer_ref", "created_at"}))

	store := NewPostgresStoreWithQueryer(mock)
	record, err := store.FindAt(context.Background(), ts, appointment.LocationBrooklyn)
	require.NoError(t, err)
	assert.Nil(t, record, "a free slot must come back nil, not an error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateAssignsID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), "loan consultation", pgxmock.AnyArg(), "Brooklyn", nil, "cust-7", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewPostgresStoreWithQueryer(mock)
	created, err := store.Create(context.Background(), AppointmentRecord{
		Reason:      "loan consultation",
		Timestamp:   time.Date(2026, 9, 4, 14, 0, 0, 0, time.UTC),
		Location:    appointment.LocationBrooklyn,
		CustomerRef: "cust-7",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStoreOrdering(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	store.Seed(
		AppointmentRecord{CustomerRef: "cust-1", Timestamp: base, Location: appointment.LocationBrooklyn},
		AppointmentRecord{CustomerRef: "cust-1", Timestamp: base.Add(72 * time.Hour), Location: appointment.LocationManhattan},
		AppointmentRecord{CustomerRef: "cust-2", Timestamp: base.Add(time.Hour), Location: appointment.LocationNewYork},
	)

	records, err := store.QueryByCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Timestamp.After(records[1].Timestamp), "expected newest-first ordering")
}
