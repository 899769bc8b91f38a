package router

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/truck-repair-platform/internal/chatbot"
	"github.com/wolfman30/truck-repair-platform/internal/content"
	"github.com/wolfman30/truck-repair-platform/internal/conversation"
	httpmiddleware "github.com/wolfman30/truck-repair-platform/internal/http/middleware"
	"github.com/wolfman30/truck-repair-platform/internal/leads"
	"github.com/wolfman30/truck-repair-platform/internal/webchat"
	"github.com/wolfman30/truck-repair-platform/pkg/logging"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	ChatbotHandler      *chatbot.Handler
	ConversationHandler *conversation.Handler
	WebChatHandler      *webchat.Handler
	LeadsHandler        *leads.Handler
	ContentHandler      *content.Handler
	MetricsHandler      http.Handler
	HealthChecks        map[string]HealthCheck

	AdminAuthSecret    string
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/health", healthHandler(cfg.HealthChecks))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Public site and chat widget
	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		public.Route("/api", func(api chi.Router) {
			if cfg.ChatbotHandler != nil {
				api.Post("/chatbot-ai", cfg.ChatbotHandler.HandleChatbot)
			}
			api.Route("/chat", func(chat chi.Router) {
				if cfg.ChatbotHandler != nil {
					chat.Get("/faq", cfg.ChatbotHandler.HandleFAQ)
				}
				if cfg.ConversationHandler != nil {
					cfg.ConversationHandler.Routes(chat)
				}
			})
			if cfg.ContentHandler != nil {
				cfg.ContentHandler.PublicRoutes(api)
			}
		})
		if cfg.WebChatHandler != nil {
			public.Get("/chat/ws", cfg.WebChatHandler.HandleWebSocket)
		}
	})

	// Shop admin: lead inbox and content editor
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		if cfg.LeadsHandler != nil {
			admin.Route("/leads", func(r chi.Router) {
				r.Get("/", cfg.LeadsHandler.ListLeads)
				r.Get("/export.csv", cfg.LeadsHandler.ExportCSV)
				r.Get("/{leadID}", cfg.LeadsHandler.GetLead)
				r.Patch("/{leadID}/status", cfg.LeadsHandler.UpdateStatus)
				r.Delete("/{leadID}", cfg.LeadsHandler.DeleteLead)
			})
		}
		if cfg.ContentHandler != nil {
			cfg.ContentHandler.AdminRoutes(admin)
		}
	})

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		resp := map[string]any{"status": "ok"}
		if len(names) > 0 {
			results := make(map[string]string, len(names))
			for _, name := range names {
				if err := checks[name](ctx); err != nil {
					results[name] = err.Error()
					status = http.StatusServiceUnavailable
					resp["status"] = "degraded"
					continue
				}
				results[name] = "ok"
			}
			resp["checks"] = results
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
