package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TalionSlade/bankassist/internal/appointment"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		query string
		n     int
		want  int
	}{
		{"the first one", 3, 0},
		{"second", 3, 1},
		{"3rd please", 3, 2},
		{"option 2", 3, 1},
		{"2", 3, 1},
		{"number 9", 3, -1}, // out of range
		{"none of those", 3, -1},
		{"", 3, -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseSelection(tt.query, tt.n), "query %q", tt.query)
	}
}

func TestPickProposedTimeByTimestamp(t *testing.T) {
	proposed := []ProposedSlot{
		{Timestamp: time.Date(2026, 9, 3, 14, 0, 0, 0, time.UTC), Display: "A"},
		{Timestamp: time.Date(2026, 9, 4, 10, 0, 0, 0, time.UTC), Display: "B"},
	}

	pick, ok := pickProposedTime("2026-09-04T10:00:00Z", proposed)
	require.True(t, ok)
	assert.Equal(t, "B", pick.Display)
}

func TestPickProposedTimeOffListTimestamp(t *testing.T) {
	pick, ok := pickProposedTime("2026-09-10T11:00:00Z", nil)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 9, 10, 11, 0, 0, 0, time.UTC), pick.Timestamp)
	assert.NotEmpty(t, pick.Display)
}

func TestPickLocation(t *testing.T) {
	offered := []string{"Brooklyn", "Manhattan", "New York"}

	loc, ok := pickLocation("manhattan works", offered)
	require.True(t, ok)
	assert.Equal(t, appointment.LocationManhattan, loc)

	loc, ok = pickLocation("the third one", offered)
	require.True(t, ok)
	assert.Equal(t, appointment.LocationNewYork, loc)

	_, ok = pickLocation("somewhere quiet", offered)
	assert.False(t, ok)
}

func TestConfirmationKeywords(t *testing.T) {
	assert.True(t, isAffirmative("Yes please"))
	assert.True(t, isAffirmative("book it"))
	assert.True(t, isAffirmative("sounds good"))
	assert.False(t, isAffirmative("not yet"))
	assert.False(t, isAffirmative("no, don't book it"))
	assert.False(t, isAffirmative("not sure"))
	assert.False(t, isAffirmative("I can't confirm that"))
	assert.False(t, isAffirmative("yesterday was better")) // "yes" must match as a word

	assert.True(t, isNegative("no"))
	assert.True(t, isNegative("no, change the time"))
	assert.True(t, isNegative("cancel"))
	assert.False(t, isNegative("noon works"))

	assert.True(t, isCancellation("never mind"))
	assert.True(t, isCancellation("let's start over"))
	assert.False(t, isCancellation("yes"))
}
