package conversation

import (
	"regexp"
	"strings"
	"time"

	"github.com/TalionSlade/bankassist/internal/appointment"
)

// Helpers for interpreting guided-flow picks. These are deliberately dumb
// keyword matchers: anything genuinely ambiguous stays on the current step
// and gets re-asked rather than guessed at.

var (
	selectionWordRE  = regexp.MustCompile(`\b(first|second|third|1st|2nd|3rd|one|two|three)\b`)
	selectionDigitRE = regexp.MustCompile(`\b([1-9])\b`)

	selectionWords = map[string]int{
		"first": 0, "1st": 0, "one": 0,
		"second": 1, "2nd": 1, "two": 1,
		"third": 2, "3rd": 2, "three": 2,
	}
)

// parseSelection maps "the second one", "option 2", "2" onto a zero-based
// index, or -1 when nothing under n matches.
func parseSelection(query string, n int) int {
	q := strings.ToLower(query)

	if m := selectionWordRE.FindStringSubmatch(q); m != nil {
		if idx := selectionWords[m[1]]; idx < n {
			return idx
		}
	}
	if m := selectionDigitRE.FindStringSubmatch(q); m != nil {
		idx := int(m[1][0]-'0') - 1
		if idx < n {
			return idx
		}
	}
	return -1
}

// pickProposedTime resolves the user's answer against the offered slots: an
// exact RFC 3339 timestamp wins, then an ordinal or numeric pick.
func pickProposedTime(query string, proposed []ProposedSlot) (ProposedSlot, bool) {
	q := strings.TrimSpace(query)

	if ts, err := time.Parse(time.RFC3339, q); err == nil {
		for _, p := range proposed {
			if p.Timestamp.Equal(ts) {
				return p, true
			}
		}
		// A concrete timestamp outside the proposals is still a valid answer.
		ts = ts.UTC()
		return ProposedSlot{Timestamp: ts, Display: appointment.FormatTimestamp(ts)}, true
	}

	if idx := parseSelection(q, len(proposed)); idx >= 0 {
		return proposed[idx], true
	}
	return ProposedSlot{}, false
}

// pickLocation resolves a branch answer by name first, then by position in
// the offered list.
func pickLocation(query string, offered []string) (appointment.Location, bool) {
	if loc, ok := appointment.ParseLocation(query); ok {
		return loc, true
	}

	q := strings.ToLower(query)
	for _, o := range offered {
		if strings.Contains(q, strings.ToLower(o)) {
			if loc, ok := appointment.ParseLocation(o); ok {
				return loc, true
			}
		}
	}

	if idx := parseSelection(query, len(offered)); idx >= 0 {
		return appointment.ParseLocation(offered[idx])
	}
	return "", false
}

var cancelPhrases = []string{"cancel", "start over", "never mind", "nevermind", "forget it"}

func isCancellation(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, p := range cancelPhrases {
		if strings.Contains(q, p) {
			return true
		}
	}
	return false
}

var (
	// Any negation anywhere disqualifies an affirmative read: "no, book it",
	// "not sure" and "I can't confirm" must never commit a booking.
	negationRE    = regexp.MustCompile(`\b(no|not|nope|never|don't|dont|can't|cannot|won't|wrong)\b`)
	affirmativeRE = regexp.MustCompile(`\b(yes|yeah|yep|sure|confirm|correct|book it|sounds good|go ahead)\b`)
)

func isAffirmative(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if negationRE.MatchString(q) {
		return false
	}
	return affirmativeRE.MatchString(q)
}

var negativeWords = []string{"no", "nope", "wrong", "change", "don't"}

func isNegative(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if isCancellation(q) {
		return true
	}
	for _, w := range negativeWords {
		if q == w || strings.HasPrefix(q, w+" ") || strings.HasPrefix(q, w+",") {
			return true
		}
	}
	return false
}
