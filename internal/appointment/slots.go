package appointment

import (
	"regexp"
	"strings"
	"time"
)

// Field names one negotiable slot of an appointment request.
type Field string

const (
	FieldReason   Field = "reason"
	FieldDate     Field = "date"
	FieldTime     Field = "time"
	FieldLocation Field = "location"
	FieldBanker   Field = "banker"
)

// RequiredFields are the slots that must be filled before a booking can be
// committed. The banker is always optional.
var RequiredFields = []Field{FieldReason, FieldDate, FieldTime, FieldLocation}

// Location is a branch the customer can book at.
type Location string

const (
	LocationBrooklyn  Location = "Brooklyn"
	LocationManhattan Location = "Manhattan"
	LocationNewYork   Location = "New York"
)

// ParseLocation maps free-form branch mentions onto the known branches.
// Unknown values return false so callers leave the slot empty instead of
// storing junk.
func ParseLocation(raw string) (Location, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "brooklyn":
		return LocationBrooklyn, true
	case "manhattan":
		return LocationManhattan, true
	case "new york", "newyork", "new york city", "nyc":
		return LocationNewYork, true
	default:
		return "", false
	}
}

// bankerIDPattern is the staff identifier namespace. Extracted banker values
// outside this namespace are discarded rather than failing the whole turn.
var bankerIDPattern = regexp.MustCompile(`^staff-[A-Za-z0-9]+$`)

// ValidBankerID reports whether id belongs to the staff record namespace.
func ValidBankerID(id string) bool {
	return bankerIDPattern.MatchString(strings.TrimSpace(id))
}

// SlotSet is the structured representation of an in-progress appointment
// request. Date and Time hold raw extracted components; Timestamp is derived
// via Combine and never set directly by callers.
type SlotSet struct {
	Reason   string   `json:"reason,omitempty"`
	Date     string   `json:"date,omitempty"` // YYYY-MM-DD
	Time     string   `json:"time,omitempty"` // raw until normalized
	Location Location `json:"location,omitempty"`
	BankerID string   `json:"banker,omitempty"`

	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Extracted carries slot values pulled out of one LLM response. All fields
// are raw strings because the model is free text all the way down.
type Extracted struct {
	Reason   string `json:"reason"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
	Banker   string `json:"banker"`
}

// Merge folds newly extracted values into the set. A non-empty extracted
// value always wins so the user can correct a field by restating it; empty
// extractions leave earlier answers untouched. Banker IDs outside the staff
// namespace are dropped silently.
func (s *SlotSet) Merge(ex Extracted) {
	if v := strings.TrimSpace(ex.Reason); v != "" {
		s.Reason = v
	}
	if v := strings.TrimSpace(ex.Date); v != "" {
		s.Date = v
	}
	if v := strings.TrimSpace(ex.Time); v != "" {
		s.Time = v
	}
	if loc, ok := ParseLocation(ex.Location); ok {
		s.Location = loc
	}
	if v := strings.TrimSpace(ex.Banker); v != "" && ValidBankerID(v) {
		s.BankerID = v
	}

	// Any change to the raw components invalidates the derived timestamp
	// until Resolve recomputes it.
	s.Timestamp = nil
}

// MissingFields returns the required fields that are still empty, in the
// canonical required order.
func (s *SlotSet) MissingFields() []Field {
	var missing []Field
	for _, f := range RequiredFields {
		switch f {
		case FieldReason:
			if strings.TrimSpace(s.Reason) == "" {
				missing = append(missing, f)
			}
		case FieldDate:
			if strings.TrimSpace(s.Date) == "" {
				missing = append(missing, f)
			}
		case FieldTime:
			if strings.TrimSpace(s.Time) == "" {
				missing = append(missing, f)
			}
		case FieldLocation:
			if s.Location == "" {
				missing = append(missing, f)
			}
		}
	}
	return missing
}

// Complete reports whether every required slot is filled.
func (s *SlotSet) Complete() bool {
	return len(s.MissingFields()) == 0
}

// Resolve derives the canonical timestamp from the raw date and time
// components. It maintains the invariant that Timestamp is non-nil exactly
// when both components are present and jointly well-formed: on any failure
// the timestamp stays nil and the error is returned for the caller to
// surface.
func (s *SlotSet) Resolve() error {
	s.Timestamp = nil
	if strings.TrimSpace(s.Date) == "" || strings.TrimSpace(s.Time) == "" {
		return nil
	}

	ts, err := Combine(s.Date, s.Time)
	if err != nil {
		return err
	}
	s.Timestamp = &ts
	return nil
}

// Reset clears the working slots, e.g. after a committed booking or a
// guided-flow cancellation.
func (s *SlotSet) Reset() {
	*s = SlotSet{}
}
