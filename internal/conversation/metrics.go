package conversation

import "github.com/prometheus/client_golang/prometheus"

var turnLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "bankassist",
		Subsystem: "conversation",
		Name:      "turn_latency_seconds",
		Help:      "Latency of dialogue turns",
		Buckets:   []float64{0.25, 0.5, 1, 2, 3, 4, 5, 6, 8, 10, 15, 20, 30},
	},
	[]string{"flow", "outcome"}, // flow: chat, guided; outcome: reply, booked, conflict, error
)

var llmTokensTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "bankassist",
		Subsystem: "conversation",
		Name:      "llm_tokens_total",
		Help:      "Tokens used by the LLM",
	},
	[]string{"type"}, // type: input, output, total
)

var parseStrategyTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "bankassist",
		Subsystem: "conversation",
		Name:      "llm_parse_strategy_total",
		Help:      "Which parser strategy recovered structured output from the LLM",
	},
	[]string{"strategy"}, // direct, fenced, balanced, unparseable
)

var bookingOutcomeTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "bankassist",
		Subsystem: "conversation",
		Name:      "booking_outcome_total",
		Help:      "Counts booking attempts by outcome",
	},
	[]string{"outcome"}, // created, conflict, persistence_error
)

func init() {
	prometheus.MustRegister(turnLatency)
	prometheus.MustRegister(llmTokensTotal)
	prometheus.MustRegister(parseStrategyTotal)
	prometheus.MustRegister(bookingOutcomeTotal)
}

// RegisterMetrics registers conversation metrics with a custom registry.
// Use this when exposing a non-default registry.
func RegisterMetrics(reg prometheus.Registerer) {
	if reg == nil || reg == prometheus.DefaultRegisterer {
		return
	}
	reg.MustRegister(turnLatency, llmTokensTotal, parseStrategyTotal, bookingOutcomeTotal)
}

func observeTokens(usage TokenUsage) {
	if usage.InputTokens > 0 {
		llmTokensTotal.WithLabelValues("input").Add(float64(usage.InputTokens))
	}
	if usage.OutputTokens > 0 {
		llmTokensTotal.WithLabelValues("output").Add(float64(usage.OutputTokens))
	}
	if usage.TotalTokens > 0 {
		llmTokensTotal.WithLabelValues("total").Add(float64(usage.TotalTokens))
	}
}
