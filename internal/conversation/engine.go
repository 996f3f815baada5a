package conversation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/TalionSlade/bankassist/internal/crm"
	"github.com/TalionSlade/bankassist/pkg/logging"
)

const (
	defaultMaxTokens   = 1024
	defaultTemperature = 0.2

	// The transcript grows without bound within a session; only the most
	// recent lines go back into the prompt.
	maxHistoryMessages = 24
)

// Engine drives both conversation styles: free-form chat turns and the
// step-ordered guided wizard. It owns no state of its own beyond per-session
// locks; everything conversational lives in the session store.
type Engine struct {
	llm         LLMClient
	model       string
	maxTokens   int32
	temperature float32

	sessions  *SessionStore
	assembler *ContextAssembler
	committer *Committer
	intents   *IntentRouter
	options   *OptionExtractor

	logger *logging.Logger
	tracer trace.Tracer
	locks  *sessionLocks
	now    func() time.Time
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithModel sets the model identifier passed through to the LLM client.
func WithModel(model string) EngineOption {
	return func(e *Engine) { e.model = model }
}

// WithMaxTokens caps completion length.
func WithMaxTokens(n int32) EngineOption {
	return func(e *Engine) { e.maxTokens = n }
}

// WithTemperature sets sampling temperature.
func WithTemperature(t float32) EngineOption {
	return func(e *Engine) { e.temperature = t }
}

// WithIntents replaces the default canned intents.
func WithIntents(intents ...CannedIntent) EngineOption {
	return func(e *Engine) { e.intents = NewIntentRouter(intents...) }
}

// WithOptionExtractor enables quick-reply extraction over assistant replies.
// Off by default since it costs a second completion per turn.
func WithOptionExtractor(x *OptionExtractor) EngineOption {
	return func(e *Engine) { e.options = x }
}

// WithClock injects a time source. Test hook.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine wires the dialogue engine over its collaborators.
func NewEngine(llm LLMClient, sessions *SessionStore, store crm.Store, logger *logging.Logger, opts ...EngineOption) *Engine {
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	if sessions == nil {
		panic("conversation: session store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	e := &Engine{
		llm:         llm,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
		sessions:    sessions,
		assembler:   NewContextAssembler(store),
		committer:   NewCommitter(store, logger),
		intents:     NewIntentRouter(DefaultIntents()...),
		logger:      logger,
		tracer:      otel.Tracer("bankassist.internal.conversation"),
		locks:       newSessionLocks(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GetState returns the live state of a session, or SessionExpiredError when
// it is gone.
func (e *Engine) GetState(ctx context.Context, sessionID string) (*ConversationState, error) {
	return e.sessions.Load(ctx, sessionID)
}

// EndSession discards a session and everything in it.
func (e *Engine) EndSession(ctx context.Context, sessionID string) error {
	return e.sessions.Destroy(ctx, sessionID)
}
