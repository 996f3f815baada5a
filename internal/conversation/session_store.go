package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultSessionTTL = 30 * time.Minute

// SessionStore persists ConversationState in Redis, keyed by session ID with
// a sliding TTL. Expiry shows up as SessionExpiredError so callers can tell
// "re-authenticate" apart from "Redis is down".
type SessionStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewSessionStore creates a session store with the given TTL (zero means the
// default of 30 minutes).
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("bankassist.internal.conversation.session"),
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Save persists the state and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, state *ConversationState) error {
	ctx, span := s.tracer.Start(ctx, "conversation.save_session")
	defer span.End()

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal session state: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(state.SessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist session state: %w", err)
	}
	return nil
}

// Load retrieves the state for a session. A missing key means the session
// expired (or never existed) and returns SessionExpiredError.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*ConversationState, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_session")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, &SessionExpiredError{SessionID: sessionID}
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load session state: %w", err)
	}

	var state ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode session state: %w", err)
	}
	return &state, nil
}

// LoadOrCreate returns existing state, or fresh state when the session is
// new or expired. Used by entry points where an expired session simply means
// starting over rather than an error.
func (s *SessionStore) LoadOrCreate(ctx context.Context, sessionID string) (*ConversationState, error) {
	state, err := s.Load(ctx, sessionID)
	if err == nil {
		return state, nil
	}
	if _, expired := err.(*SessionExpiredError); expired {
		return NewConversationState(sessionID), nil
	}
	return nil, err
}

// Destroy removes the session, e.g. on logout.
func (s *SessionStore) Destroy(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "conversation.destroy_session")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to destroy session: %w", err)
	}
	return nil
}
