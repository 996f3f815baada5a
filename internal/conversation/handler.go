package conversation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/TalionSlade/bankassist/internal/appointment"
	"github.com/TalionSlade/bankassist/internal/crm"
	"github.com/TalionSlade/bankassist/pkg/logging"
)

// Handler wires HTTP requests to the conversation service.
type Handler struct {
	service Service
	logger  *logging.Logger
}

// NewHandler creates a conversation handler.
func NewHandler(service Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// turnWire is the JSON body for POST /conversation/turn.
type turnWire struct {
	SessionID    string `json:"sessionId"`
	Query        string `json:"query"`
	CustomerType string `json:"customerType"`
	CustomerRef  string `json:"customerRef,omitempty"`
}

// guidedWire is the JSON body for POST /conversation/guided.
type guidedWire struct {
	turnWire
	Step string `json:"step,omitempty"`
}

// stateWire is the JSON payload for GET /conversation/state. Internal state
// fields (proposals, timestamps) stay server-side.
type stateWire struct {
	Messages   []TurnEntry         `json:"messages"`
	Slots      appointment.SlotSet `json:"appointmentDetails"`
	GuidedStep GuidedStep          `json:"guidedStep,omitempty"`
}

func (w turnWire) customer() crm.Customer {
	if strings.EqualFold(w.CustomerType, string(crm.CustomerTypeRegular)) {
		return crm.Customer{Type: crm.CustomerTypeRegular, Ref: w.CustomerRef}
	}
	return crm.Customer{Type: crm.CustomerTypeGuest}
}

// Turn handles POST /conversation/turn.
func (h *Handler) Turn(w http.ResponseWriter, r *http.Request) {
	var req turnWire
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode turn request", "error", err)
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Query) == "" {
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "sessionId and query are required")
		return
	}

	resp, err := h.service.ProcessTurn(r.Context(), TurnRequest{
		SessionID: req.SessionID,
		Customer:  req.customer(),
		Utterance: req.Query,
	})
	if err != nil {
		h.writeServiceError(w, req.SessionID, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Guided handles POST /conversation/guided.
func (h *Handler) Guided(w http.ResponseWriter, r *http.Request) {
	var req guidedWire
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode guided request", "error", err)
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "sessionId is required")
		return
	}

	resp, err := h.service.ProcessGuidedStep(r.Context(), GuidedRequest{
		SessionID: req.SessionID,
		Customer:  req.customer(),
		Query:     req.Query,
		Step:      GuidedStep(req.Step),
	})
	if err != nil {
		h.writeServiceError(w, req.SessionID, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// State handles GET /conversation/state.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	if sessionID == "" {
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "sessionId is required")
		return
	}

	state, err := h.service.GetState(r.Context(), sessionID)
	if err != nil {
		h.writeServiceError(w, sessionID, err)
		return
	}

	h.writeJSON(w, http.StatusOK, stateWire{
		Messages:   state.TurnLog,
		Slots:      state.Slots,
		GuidedStep: state.GuidedStep,
	})
}

// EndSession handles DELETE /conversation/state.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	if sessionID == "" {
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "sessionId is required")
		return
	}

	if err := h.service.EndSession(r.Context(), sessionID); err != nil {
		h.writeServiceError(w, sessionID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps taxonomy errors onto HTTP statuses. Anything
// without a code is an internal fault.
func (h *Handler) writeServiceError(w http.ResponseWriter, sessionID string, err error) {
	var c coder
	if errors.As(err, &c) {
		h.logger.Warn("turn failed", "session_id", sessionID, "code", c.Code(), "error", err)
		h.writeError(w, statusForCode(c.Code()), c.Code(), err.Error())
		return
	}
	h.logger.Error("conversation request failed", "session_id", sessionID, "error", err)
	h.writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}

func statusForCode(code string) int {
	switch code {
	case CodeSessionExpired:
		return http.StatusGone
	case CodeInvalidDateTime:
		return http.StatusUnprocessableEntity
	case CodeConflict:
		return http.StatusConflict
	case CodeLLMUnavailable:
		return http.StatusBadGateway
	case CodeLLMParse:
		return http.StatusBadGateway
	case CodePersistence:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
