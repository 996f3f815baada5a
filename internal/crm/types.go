package crm

import (
	"time"

	"github.com/TalionSlade/bankassist/internal/appointment"
)

// CustomerType distinguishes authenticated customers, who have CRM history,
// from anonymous guests, who do not.
type CustomerType string

const (
	CustomerTypeGuest   CustomerType = "guest"
	CustomerTypeRegular CustomerType = "regular"
)

// Customer identifies who the conversation is on behalf of. Guests carry an
// empty Ref; there is no identity to query history by.
type Customer struct {
	Type CustomerType
	Ref  string
}

// Authenticated reports whether the customer has a CRM identity.
func (c Customer) Authenticated() bool {
	return c.Type == CustomerTypeRegular && c.Ref != ""
}

// AppointmentRecord is a persisted appointment, owned by the CRM once
// created. Records are immutable within this system's scope.
type AppointmentRecord struct {
	ID          string               `json:"id"`
	Reason      string               `json:"reason"`
	Timestamp   time.Time            `json:"timestamp"`
	Location    appointment.Location `json:"location"`
	BankerID    string               `json:"banker,omitempty"`
	CustomerRef string               `json:"customerRef"`
	CreatedAt   time.Time            `json:"createdAt"`
}
