package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/TalionSlade/bankassist/internal/appointment"
	"github.com/TalionSlade/bankassist/internal/crm"
)

// ContextBlock is the grounding handed to the LLM so suggestions are
// personalized and conflict-aware. It is hints for the model, never
// directly trusted data.
type ContextBlock struct {
	PriorAppointments []crm.AppointmentRecord
	PreferredBanker   string
	PreferredLocation appointment.Location
}

// Empty reports whether there is anything worth telling the model.
func (b ContextBlock) Empty() bool {
	return len(b.PriorAppointments) == 0 && b.PreferredBanker == "" && b.PreferredLocation == ""
}

// Render flattens the block into prompt text.
func (b ContextBlock) Render() string {
	if b.Empty() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Known customer context (hints only, confirm with the customer):\n")
	if b.PreferredLocation != "" {
		fmt.Fprintf(&sb, "- Usually books at the %s branch.\n", b.PreferredLocation)
	}
	if b.PreferredBanker != "" {
		fmt.Fprintf(&sb, "- Usually sees banker %s.\n", b.PreferredBanker)
	}
	for i, rec := range b.PriorAppointments {
		if i == maxContextAppointments {
			break
		}
		fmt.Fprintf(&sb, "- Past appointment: %s at %s on %s.\n",
			rec.Reason, rec.Location, appointment.FormatTimestamp(rec.Timestamp))
	}
	return strings.TrimSpace(sb.String())
}

const maxContextAppointments = 5

// ContextAssembler builds grounding context from CRM history. Pure read; no
// side effects.
type ContextAssembler struct {
	store crm.Store
}

// NewContextAssembler creates an assembler over the CRM store.
func NewContextAssembler(store crm.Store) *ContextAssembler {
	if store == nil {
		panic("conversation: crm store cannot be nil")
	}
	return &ContextAssembler{store: store}
}

// BuildContext assembles grounding for one customer. Guests have no identity
// to query by, so their context is empty and no CRM read happens.
func (a *ContextAssembler) BuildContext(ctx context.Context, customer crm.Customer) (ContextBlock, error) {
	if !customer.Authenticated() {
		return ContextBlock{}, nil
	}

	history, err := a.store.QueryByCustomer(ctx, customer.Ref)
	if err != nil {
		return ContextBlock{}, fmt.Errorf("conversation: failed to load customer history: %w", err)
	}
	if len(history) == 0 {
		return ContextBlock{}, nil
	}

	bankers := make([]string, 0, len(history))
	locations := make([]string, 0, len(history))
	for _, rec := range history {
		if rec.BankerID != "" {
			bankers = append(bankers, rec.BankerID)
		}
		if rec.Location != "" {
			locations = append(locations, string(rec.Location))
		}
	}

	return ContextBlock{
		PriorAppointments: history,
		PreferredBanker:   mostFrequent(bankers),
		PreferredLocation: appointment.Location(mostFrequent(locations)),
	}, nil
}

// mostFrequent returns the majority value of vs, with ties broken by the
// first-seen key in iteration order. An empty input yields "". The tie-break
// is deliberate and documented behavior, not incidental map ordering.
func mostFrequent(vs []string) string {
	counts := make(map[string]int, len(vs))
	var order []string
	for _, v := range vs {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	best := ""
	bestCount := 0
	for _, v := range order {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}
