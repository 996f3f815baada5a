package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeFillsAndOverwrites(t *testing.T) {
	slots := &SlotSet{}

	slots.Merge(Extracted{Reason: "loan consultation", Location: "brooklyn"})
	assert.Equal(t, "loan consultation", slots.Reason)
	assert.Equal(t, LocationBrooklyn, slots.Location)
	assert.ElementsMatch(t, []Field{FieldDate, FieldTime}, slots.MissingFields())

	// A later turn restating a field wins; empty extractions leave slots alone.
	slots.Merge(Extracted{Reason: "mortgage review", Date: "2026-09-04"})
	assert.Equal(t, "mortgage review", slots.Reason)
	assert.Equal(t, "2026-09-04", slots.Date)
	assert.Equal(t, LocationBrooklyn, slots.Location)
}

func TestMergeDropsInvalidBanker(t *testing.T) {
	slots := &SlotSet{}

	slots.Merge(Extracted{Banker: "robert from the branch"})
	assert.Empty(t, slots.BankerID)

	slots.Merge(Extracted{Banker: "staff-a83k2"})
	assert.Equal(t, "staff-a83k2", slots.BankerID)

	// A later invalid value must not clobber a valid one.
	slots.Merge(Extracted{Banker: "nonsense"})
	assert.Equal(t, "staff-a83k2", slots.BankerID)
}

func TestMergeIgnoresUnknownLocation(t *testing.T) {
	slots := &SlotSet{Location: LocationManhattan}
	slots.Merge(Extracted{Location: "Atlantis"})
	assert.Equal(t, LocationManhattan, slots.Location)
}

func TestResolveInvariant(t *testing.T) {
	slots := &SlotSet{Reason: "open account", Location: LocationNewYork}

	// Partial date/time: timestamp stays nil, no error.
	slots.Date = "2026-09-04"
	require.NoError(t, slots.Resolve())
	assert.Nil(t, slots.Timestamp)

	// Both present and valid: timestamp derived.
	slots.Time = "2pm"
	require.NoError(t, slots.Resolve())
	require.NotNil(t, slots.Timestamp)
	assert.Equal(t, 14, slots.Timestamp.Hour())

	// Malformed combination forces the timestamp back to nil and errors.
	slots.Time = "25:00"
	err := slots.Resolve()
	require.Error(t, err)
	assert.Nil(t, slots.Timestamp)
}

func TestMergeInvalidatesDerivedTimestamp(t *testing.T) {
	slots := &SlotSet{Date: "2026-09-04", Time: "10:00"}
	require.NoError(t, slots.Resolve())
	require.NotNil(t, slots.Timestamp)

	slots.Merge(Extracted{Time: "11:00"})
	assert.Nil(t, slots.Timestamp, "merge must invalidate the derived timestamp")
}

func TestMissingFieldsOrder(t *testing.T) {
	slots := &SlotSet{}
	assert.Equal(t, []Field{FieldReason, FieldDate, FieldTime, FieldLocation}, slots.MissingFields())
	assert.False(t, slots.Complete())

	slots.Merge(Extracted{
		Reason:   "notary service",
		Date:     "2026-01-10",
		Time:     "09:00",
		Location: "new york",
	})
	assert.Empty(t, slots.MissingFields())
	assert.True(t, slots.Complete())
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		input string
		want  Location
		ok    bool
	}{
		{"Brooklyn", LocationBrooklyn, true},
		{" MANHATTAN ", LocationManhattan, true},
		{"nyc", LocationNewYork, true},
		{"New York City", LocationNewYork, true},
		{"Queens", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		got, ok := ParseLocation(tc.input)
		assert.Equal(t, tc.ok, ok, "ParseLocation(%q)", tc.input)
		assert.Equal(t, tc.want, got, "ParseLocation(%q)", tc.input)
	}
}
