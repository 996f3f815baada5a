package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TalionSlade/bankassist/internal/appointment"
	"github.com/TalionSlade/bankassist/internal/crm"
)

const unparsedFallbackReply = "Sorry, I didn't quite catch that. Could you say it another way?"

// ProcessTurn runs one free-form chat turn end to end: canned intents first,
// then LLM extraction, slot merge, and - once every required slot is filled -
// the booking attempt. Turns on the same session are serialized; recoverable
// failures come back in the response with an error code, and only
// collaborator faults (LLM, session store) return a Go error.
func (e *Engine) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResponse, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, errors.New("conversation: session id is required")
	}
	release := e.locks.acquire(req.SessionID)
	defer release()

	ctx, span := e.tracer.Start(ctx, "conversation.process_turn")
	defer span.End()

	start := time.Now()
	outcome := "reply"
	defer func() {
		turnLatency.WithLabelValues("chat", outcome).Observe(time.Since(start).Seconds())
	}()

	log := e.logger.WithSession(req.SessionID)

	state, err := e.sessions.LoadOrCreate(ctx, req.SessionID)
	if err != nil {
		outcome = "error"
		return nil, err
	}

	// Known non-booking queries never reach the model.
	if intent, ok := e.intents.Route(req.Utterance); ok {
		log.Info("canned intent matched", "intent", intent.Name)
		state.Append(ChatRoleUser, req.Utterance)
		state.Append(ChatRoleAssistant, intent.Reply)
		if err := e.sessions.Save(ctx, state); err != nil {
			outcome = "error"
			return nil, err
		}
		return &TurnResponse{
			Reply:         intent.Reply,
			Slots:         state.Slots,
			MissingFields: state.Slots.MissingFields(),
		}, nil
	}

	block, err := e.assembler.BuildContext(ctx, req.Customer)
	if err != nil {
		// History is a hint, not a dependency. The turn proceeds without it.
		log.Warn("context assembly failed, continuing without history", "error", err)
		block = ContextBlock{}
	}

	state.Append(ChatRoleUser, req.Utterance)

	resp, err := e.llm.Complete(ctx, LLMRequest{
		Model:       e.model,
		System:      buildChatSystem(block.Render(), e.now()),
		Messages:    tailMessages(state.ChatHistory(), maxHistoryMessages),
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		outcome = "error"
		return nil, &LLMUnavailableError{Err: err}
	}
	observeTokens(resp.Usage)

	parse := ParseTurnPayload(resp.Text)
	response := &TurnResponse{Previous: block.PriorAppointments}
	reply := strings.TrimSpace(parse.Payload.Response)

	if parse.Parsed {
		state.Slots.Merge(parse.Payload.AppointmentDetails)
	} else {
		// The model said something, just not in the agreed shape. Degrade to
		// its raw text instead of failing the turn.
		log.Warn("unparseable llm output", "strategy", parse.Strategy)
		response.ErrorCode = CodeLLMParse
		reply = strings.TrimSpace(parse.Raw)
		if reply == "" {
			reply = unparsedFallbackReply
		}
	}

	response.MissingFields = state.Slots.MissingFields()

	if parse.Parsed && len(response.MissingFields) == 0 {
		reply = e.tryBook(ctx, state, req.Customer, response, reply)
		switch response.ErrorCode {
		case CodeConflict:
			outcome = "conflict"
		case CodeInvalidDateTime, CodePersistence:
			outcome = "error"
		default:
			outcome = "booked"
		}
	}

	if e.options != nil && response.ErrorCode == "" && response.Appointment == nil {
		opts, err := e.options.ExtractOptions(ctx, reply)
		if err != nil {
			log.Warn("option extraction failed", "error", err)
		} else {
			response.Options = opts
		}
	}

	state.Append(ChatRoleAssistant, reply)
	if err := e.sessions.Save(ctx, state); err != nil {
		outcome = "error"
		return nil, err
	}

	response.Reply = reply
	if response.Appointment == nil {
		response.Slots = state.Slots
	}
	return response, nil
}

// tryBook resolves the completed slot set and commits it, folding the
// recoverable outcomes into the response. Returns the reply text to send.
func (e *Engine) tryBook(ctx context.Context, state *ConversationState, customer crm.Customer, response *TurnResponse, reply string) string {
	log := e.logger.WithSession(state.SessionID)

	if err := state.Slots.Resolve(); err != nil {
		log.Warn("invalid date/time", "date", state.Slots.Date, "time", state.Slots.Time, "error", err)
		response.ErrorCode = CodeInvalidDateTime
		return fmt.Sprintf(
			"I couldn't make sense of %q at %q as a date and time. Could you give me the date as YYYY-MM-DD and a time like 2:30 PM?",
			state.Slots.Date, state.Slots.Time,
		)
	}

	record, err := e.committer.Commit(ctx, state.Slots, customer)
	if err == nil {
		response.Appointment = record
		response.Slots = state.Slots
		// Done with this booking; the session can start another.
		state.Slots.Reset()
		return bookedReply(record)
	}

	var conflict *ConflictError
	if errors.As(err, &conflict) {
		response.ErrorCode = CodeConflict
		response.Alternatives = conflict.Alternatives
		return conflictReply(conflict)
	}

	var persistence *PersistenceError
	if errors.As(err, &persistence) {
		log.Error("booking persistence failed", "error", persistence.Err)
		response.ErrorCode = CodePersistence
		return "Something went wrong while saving your appointment, so nothing was booked. Please try again in a moment."
	}

	// Precondition violations only; Complete() was checked above.
	log.Error("unexpected commit failure", "error", err)
	response.ErrorCode = CodePersistence
	return "Something went wrong while saving your appointment, so nothing was booked. Please try again in a moment."
}

func bookedReply(record *crm.AppointmentRecord) string {
	reply := fmt.Sprintf("You're all set: %s at the %s branch, %s.",
		record.Reason, record.Location, appointment.FormatTimestamp(record.Timestamp))
	if record.BankerID != "" {
		reply += fmt.Sprintf(" You'll be seeing %s.", record.BankerID)
	}
	return reply + fmt.Sprintf(" Your confirmation number is %s.", record.ID)
}

func conflictReply(conflict *ConflictError) string {
	reply := fmt.Sprintf("Unfortunately %s at the %s branch is already taken.",
		appointment.FormatTimestamp(conflict.Timestamp), conflict.Location)
	if len(conflict.Alternatives) == 0 {
		return reply + " Could you suggest a different time?"
	}
	displays := make([]string, len(conflict.Alternatives))
	for i, alt := range conflict.Alternatives {
		displays[i] = alt.Display
	}
	return reply + " I could offer: " + strings.Join(displays, "; ") + ". Would any of those work?"
}

// tailMessages keeps the most recent n messages of the prompt history.
func tailMessages(msgs []ChatMessage, n int) []ChatMessage {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
