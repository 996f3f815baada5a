package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/TalionSlade/bankassist/internal/conversation"
	httpmiddleware "github.com/TalionSlade/bankassist/internal/http/middleware"
	"github.com/TalionSlade/bankassist/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	ConversationHandler *conversation.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.ConversationHandler != nil {
		r.Route("/conversation", func(c chi.Router) {
			c.Post("/turn", cfg.ConversationHandler.Turn)
			c.Post("/guided", cfg.ConversationHandler.Guided)
			c.Get("/state", cfg.ConversationHandler.State)
			c.Delete("/state", cfg.ConversationHandler.EndSession)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
