package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TalionSlade/bankassist/internal/appointment"
)

// ProcessGuidedStep advances the booking wizard by one interaction. The
// authoritative position is ConversationState.GuidedStep; the step in the
// request only decides whether an expired session may restart silently.
// Saying "cancel" at any point returns the wizard to the reason step.
func (e *Engine) ProcessGuidedStep(ctx context.Context, req GuidedRequest) (*GuidedResponse, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, errors.New("conversation: session id is required")
	}
	release := e.locks.acquire(req.SessionID)
	defer release()

	ctx, span := e.tracer.Start(ctx, "conversation.process_guided_step")
	defer span.End()

	start := time.Now()
	outcome := "reply"
	defer func() {
		turnLatency.WithLabelValues("guided", outcome).Observe(time.Since(start).Seconds())
	}()

	log := e.logger.WithSession(req.SessionID)

	state, err := e.sessions.Load(ctx, req.SessionID)
	if err != nil {
		var expired *SessionExpiredError
		if !errors.As(err, &expired) {
			outcome = "error"
			return nil, err
		}
		// A fresh start is fine; claiming to be mid-flow with no session is
		// not, because the collected slots are gone.
		if req.Step != StepNone && req.Step != StepReason {
			outcome = "error"
			return nil, err
		}
		state = NewConversationState(req.SessionID)
	}

	if state.GuidedStep == StepNone || state.GuidedStep == StepCompleted {
		state.ResetGuided()
	}

	state.Append(ChatRoleUser, req.Query)

	var response *GuidedResponse
	if isCancellation(req.Query) && state.GuidedStep != StepReason {
		log.Info("guided flow cancelled", "step", state.GuidedStep)
		state.ResetGuided()
		response = &GuidedResponse{
			Reply: "No problem, let's start over. What would you like the appointment for?",
			Step:  StepReason,
		}
	} else {
		switch state.GuidedStep {
		case StepReason:
			response, err = e.guidedReason(ctx, state, req.Query)
		case StepTime:
			response, err = e.guidedTime(ctx, state, req.Query)
		case StepLocation:
			response, err = e.guidedLocation(ctx, state, req.Query)
		case StepConfirmation:
			response, err = e.guidedConfirm(ctx, state, req)
		default:
			err = fmt.Errorf("conversation: unknown guided step %q", state.GuidedStep)
		}
		if err != nil {
			outcome = "error"
			return nil, err
		}
	}

	switch {
	case response.Appointment != nil:
		outcome = "booked"
	case response.ErrorCode == CodeConflict:
		outcome = "conflict"
	case response.ErrorCode != "":
		outcome = "error"
	}

	state.Append(ChatRoleAssistant, response.Reply)
	if err := e.sessions.Save(ctx, state); err != nil {
		outcome = "error"
		return nil, err
	}

	response.Step = state.GuidedStep
	if response.Appointment == nil {
		response.Slots = state.Slots
	}
	return response, nil
}

// guidedReason records what the visit is for and asks the model to propose
// candidate times.
func (e *Engine) guidedReason(ctx context.Context, state *ConversationState, query string) (*GuidedResponse, error) {
	reason := strings.TrimSpace(query)
	if reason == "" {
		return &GuidedResponse{
			Reply: "What would you like the appointment for? For example: opening an account, a mortgage consultation, or a notary visit.",
		}, nil
	}
	state.Slots.Reason = reason

	resp, err := e.llm.Complete(ctx, LLMRequest{
		Model:       e.model,
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: buildGuidedTimePrompt(reason, e.now())}},
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		return nil, &LLMUnavailableError{Err: err}
	}
	observeTokens(resp.Usage)

	payload, ok := parseGuidedPayload(resp.Text)
	proposals := parseProposedTimes(payload.TimeSlots)
	if !ok || len(proposals) == 0 {
		return &GuidedResponse{
			Reply:     "I'm having trouble finding times right now. Could you tell me the reason again?",
			ErrorCode: CodeLLMParse,
		}, nil
	}

	state.ProposedTimes = proposals
	state.GuidedStep = StepTime

	return &GuidedResponse{
		Reply:     fmt.Sprintf("Got it, %s. Here are some times that could work:\n%s\nWhich one suits you?", reason, numberedSlots(proposals)),
		TimeSlots: proposals,
	}, nil
}

// guidedTime resolves the picked slot and asks for a branch.
func (e *Engine) guidedTime(ctx context.Context, state *ConversationState, query string) (*GuidedResponse, error) {
	pick, ok := pickProposedTime(query, state.ProposedTimes)
	if !ok {
		return &GuidedResponse{
			Reply:     fmt.Sprintf("Sorry, I didn't catch which time you meant. Your choices are:\n%s", numberedSlots(state.ProposedTimes)),
			TimeSlots: state.ProposedTimes,
		}, nil
	}

	state.Slots.Date, state.Slots.Time = appointment.SplitTimestamp(pick.Timestamp)
	if err := state.Slots.Resolve(); err != nil {
		return nil, &InvalidDateTimeError{Date: state.Slots.Date, Time: state.Slots.Time, Err: err}
	}

	locations := allBranchNames()
	resp, err := e.llm.Complete(ctx, LLMRequest{
		Model:       e.model,
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: buildGuidedLocationPrompt(state.Slots.Reason, pick.Timestamp)}},
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		return nil, &LLMUnavailableError{Err: err}
	}
	observeTokens(resp.Usage)
	if payload, ok := parseGuidedPayload(resp.Text); ok {
		if offered := validBranchNames(payload.LocationOptions); len(offered) > 0 {
			locations = offered
		}
	}

	state.ProposedLocations = locations
	state.GuidedStep = StepLocation

	return &GuidedResponse{
		Reply:           fmt.Sprintf("%s it is. Which branch would you like?\n%s", appointment.FormatTimestamp(pick.Timestamp), numberedStrings(locations)),
		LocationOptions: locations,
	}, nil
}

// guidedLocation records the branch and asks the model for a confirmation
// summary.
func (e *Engine) guidedLocation(ctx context.Context, state *ConversationState, query string) (*GuidedResponse, error) {
	loc, ok := pickLocation(query, state.ProposedLocations)
	if !ok {
		return &GuidedResponse{
			Reply:           fmt.Sprintf("Sorry, which branch did you mean?\n%s", numberedStrings(state.ProposedLocations)),
			LocationOptions: state.ProposedLocations,
		}, nil
	}
	state.Slots.Location = loc

	summary := fallbackConfirmSummary(state.Slots)
	resp, err := e.llm.Complete(ctx, LLMRequest{
		Model:       e.model,
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: buildGuidedConfirmPrompt(state.Slots)}},
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		return nil, &LLMUnavailableError{Err: err}
	}
	observeTokens(resp.Usage)
	if text := strings.TrimSpace(resp.Text); text != "" {
		summary = text
	}

	state.GuidedStep = StepConfirmation

	return &GuidedResponse{Reply: summary}, nil
}

// guidedConfirm commits on a yes, restarts on a no, and otherwise asks
// again. Commit failures keep the wizard at confirmation so the user can
// retry or bail out.
func (e *Engine) guidedConfirm(ctx context.Context, state *ConversationState, req GuidedRequest) (*GuidedResponse, error) {
	// Declines win over anything that merely contains an affirmative word:
	// "no, don't book it" is a no.
	switch {
	case isNegative(req.Query):
		state.ResetGuided()
		return &GuidedResponse{
			Reply: "Okay, let's try again. What would you like the appointment for?",
		}, nil

	case isAffirmative(req.Query):
		record, err := e.committer.Commit(ctx, state.Slots, req.Customer)
		if err == nil {
			booked := state.Slots
			state.Slots.Reset()
			state.ProposedTimes = nil
			state.ProposedLocations = nil
			state.GuidedStep = StepCompleted
			return &GuidedResponse{
				Reply:       bookedReply(record),
				Slots:       booked,
				Appointment: record,
			}, nil
		}

		var conflict *ConflictError
		if errors.As(err, &conflict) {
			return &GuidedResponse{
				Reply:        conflictReply(conflict),
				ErrorCode:    CodeConflict,
				Alternatives: conflict.Alternatives,
			}, nil
		}
		return &GuidedResponse{
			Reply:     "Something went wrong while saving your appointment, so nothing was booked. Say yes to try again, or cancel to start over.",
			ErrorCode: CodePersistence,
		}, nil

	default:
		return &GuidedResponse{
			Reply: "Should I book it? A simple yes or no works.",
		}, nil
	}
}

func parseProposedTimes(raw []string) []ProposedSlot {
	proposals := make([]ProposedSlot, 0, maxOptions)
	for _, v := range raw {
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(v))
		if err != nil {
			continue
		}
		ts = ts.UTC()
		proposals = append(proposals, ProposedSlot{
			Timestamp: ts,
			Display:   appointment.FormatTimestamp(ts),
		})
		if len(proposals) == maxOptions {
			break
		}
	}
	return proposals
}

func allBranchNames() []string {
	return []string{
		string(appointment.LocationBrooklyn),
		string(appointment.LocationManhattan),
		string(appointment.LocationNewYork),
	}
}

func validBranchNames(raw []string) []string {
	var out []string
	for _, v := range raw {
		if loc, ok := appointment.ParseLocation(v); ok {
			out = append(out, string(loc))
		}
		if len(out) == maxOptions {
			break
		}
	}
	return out
}

func fallbackConfirmSummary(slots appointment.SlotSet) string {
	when := ""
	if slots.Timestamp != nil {
		when = appointment.FormatTimestamp(*slots.Timestamp)
	}
	return fmt.Sprintf("To confirm: %s at the %s branch, %s. Shall I book it?", slots.Reason, slots.Location, when)
}

func numberedSlots(slots []ProposedSlot) string {
	lines := make([]string, len(slots))
	for i, s := range slots {
		lines[i] = fmt.Sprintf("%d. %s", i+1, s.Display)
	}
	return strings.Join(lines, "\n")
}

func numberedStrings(vs []string) string {
	lines := make([]string, len(vs))
	for i, v := range vs {
		lines[i] = fmt.Sprintf("%d. %s", i+1, v)
	}
	return strings.Join(lines, "\n")
}
