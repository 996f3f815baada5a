package conversation

import (
	"context"

	"github.com/TalionSlade/bankassist/internal/appointment"
	"github.com/TalionSlade/bankassist/internal/crm"
)

// Service describes how the dialogue engine behaves. The HTTP layer depends
// on this interface only.
type Service interface {
	ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResponse, error)
	ProcessGuidedStep(ctx context.Context, req GuidedRequest) (*GuidedResponse, error)
	GetState(ctx context.Context, sessionID string) (*ConversationState, error)
	EndSession(ctx context.Context, sessionID string) error
}

// TurnRequest is one free-form conversational turn.
type TurnRequest struct {
	SessionID string
	Customer  crm.Customer
	Utterance string
}

// TurnResponse is the structured outcome of a turn. Recoverable per-turn
// failures (bad date/time, conflicts, unparseable model output) come back
// here with a machine-readable code; only collaborator-level faults surface
// as Go errors.
type TurnResponse struct {
	Reply         string                  `json:"response"`
	Slots         appointment.SlotSet     `json:"appointmentDetails"`
	MissingFields []appointment.Field     `json:"missingFields"`
	Options       []string                `json:"options,omitempty"`
	Appointment   *crm.AppointmentRecord  `json:"appointment,omitempty"`
	Previous      []crm.AppointmentRecord `json:"previousAppointments,omitempty"`
	Alternatives  []ProposedSlot          `json:"alternatives,omitempty"`
	ErrorCode     string                  `json:"errorCode,omitempty"`
}

// GuidedRequest is one interaction with the step-ordered wizard. Step is
// advisory from the client; the authoritative position lives in the session
// state.
type GuidedRequest struct {
	SessionID string
	Customer  crm.Customer
	Query     string
	Step      GuidedStep
}

// GuidedResponse reports the wizard's reply and, depending on the step, the
// structured choices for the next one.
type GuidedResponse struct {
	Reply           string                 `json:"response"`
	Step            GuidedStep             `json:"step"`
	TimeSlots       []ProposedSlot         `json:"timeSlots,omitempty"`
	LocationOptions []string               `json:"locationOptions,omitempty"`
	Slots           appointment.SlotSet    `json:"appointmentDetails"`
	Appointment     *crm.AppointmentRecord `json:"appointment,omitempty"`
	Alternatives    []ProposedSlot         `json:"alternatives,omitempty"`
	ErrorCode       string                 `json:"errorCode,omitempty"`
}
