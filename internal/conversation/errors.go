package conversation

import (
	"fmt"
	"time"

	"github.com/TalionSlade/bankassist/internal/crm"
)

// Machine-readable codes surfaced alongside every turn-level failure. The
// transport layer maps these onto HTTP statuses; nothing in this package
// escapes as a bare fault.
const (
	CodeSessionExpired  = "SESSION_EXPIRED"
	CodeInvalidDateTime = "INVALID_DATETIME"
	CodeLLMParse        = "LLM_PARSE"
	CodeLLMUnavailable  = "LLM_UNAVAILABLE"
	CodeConflict        = "CONFLICT"
	CodePersistence     = "PERSISTENCE"
)

// SessionExpiredError means the session is gone or past its TTL. Recoverable:
// the caller re-authenticates and starts fresh; no partial state is reused.
type SessionExpiredError struct {
	SessionID string
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("conversation: session %s expired or unknown", e.SessionID)
}

// Code returns the machine-readable error code.
func (e *SessionExpiredError) Code() string { return CodeSessionExpired }

// InvalidDateTimeError means the collected date/time could not be normalized.
// Slot state is retained so the user can correct just that field.
type InvalidDateTimeError struct {
	Date string
	Time string
	Err  error
}

func (e *InvalidDateTimeError) Error() string {
	return fmt.Sprintf("conversation: cannot combine date %q and time %q: %v", e.Date, e.Time, e.Err)
}

func (e *InvalidDateTimeError) Unwrap() error { return e.Err }

// Code returns the machine-readable error code.
func (e *InvalidDateTimeError) Code() string { return CodeInvalidDateTime }

// LLMUnavailableError wraps a failed completion call. Terminal for the turn;
// there is no retry layer here.
type LLMUnavailableError struct {
	Err error
}

func (e *LLMUnavailableError) Error() string {
	return fmt.Sprintf("conversation: llm completion failed: %v", e.Err)
}

func (e *LLMUnavailableError) Unwrap() error { return e.Err }

// Code returns the machine-readable error code.
func (e *LLMUnavailableError) Code() string { return CodeLLMUnavailable }

// ConflictError means the requested slot is already booked. Alternatives are
// suggested instead of creating a duplicate.
type ConflictError struct {
	Timestamp    time.Time
	Location     string
	Alternatives []ProposedSlot
	Existing     *crm.AppointmentRecord
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conversation: %s at %s is already booked", e.Location, e.Timestamp.Format(time.RFC3339))
}

// Code returns the machine-readable error code.
func (e *ConflictError) Code() string { return CodeConflict }

// PersistenceError wraps a CRM write failure verbatim. The caller owns the
// decision to retry the whole turn.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("conversation: failed to persist appointment: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Code returns the machine-readable error code.
func (e *PersistenceError) Code() string { return CodePersistence }

// coder lets the transport layer pull a code off any taxonomy error without
// enumerating the concrete types.
type coder interface {
	Code() string
}
