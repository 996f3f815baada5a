package conversation

import (
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/TalionSlade/bankassist/internal/crm"
	"github.com/TalionSlade/bankassist/pkg/logging"
)

// testNow is the fixed clock every engine test runs on.
var testNow = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

func newTestSessions(t *testing.T) *SessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client, time.Minute)
}

func newTestEngine(t *testing.T, llm LLMClient, store crm.Store, opts ...EngineOption) *Engine {
	t.Helper()
	base := []EngineOption{
		WithModel("test-model"),
		WithClock(func() time.Time { return testNow }),
	}
	return NewEngine(llm, newTestSessions(t), store, logging.New("error"), append(base, opts...)...)
}

// turnJSON renders the payload shape the chat system prompt demands.
func turnJSON(response, reason, date, clock, location, banker string) string {
	return fmt.Sprintf(`{
		"response": %q,
		"appointmentDetails": {
			"reason": %q,
			"date": %q,
			"time": %q,
			"location": %q,
			"banker": %q
		}
	}`, response, reason, date, clock, location, banker)
}
