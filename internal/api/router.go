package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/fluencycoach/internal/api/handlers"
	"github.com/nikhilbhutani/fluencycoach/internal/api/middleware"
	"github.com/nikhilbhutani/fluencycoach/internal/config"
	"github.com/nikhilbhutani/fluencycoach/internal/store"
)

// Deps are the services behind the HTTP routes. DB, Cache and Usage may be nil
// when the backing store could not be reached at startup.
type Deps struct {
	Analyzer   handlers.Analyzer
	Mentor     handlers.Replier
	Translator handlers.Translator
	History    store.Store
	Usage      handlers.UsageSummarizer
	Models     handlers.ModelLister
	DB         handlers.Pinger
	Cache      handlers.Pinger
}

type Router struct {
	mux     *chi.Mux
	cfg     *config.Config
	deps    Deps
	limiter *middleware.RateLimiter
}

func NewRouter(cfg *config.Config, deps Deps) *Router {
	return &Router{
		mux:     chi.NewRouter(),
		cfg:     cfg,
		deps:    deps,
		limiter: middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Server.AllowedOrigins))

	health := handlers.NewHealthHandler(rt.deps.DB, rt.deps.Cache)
	r.Get("/", health.Root)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	r.Group(func(r chi.Router) {
		r.Use(rt.limiter.Limit)

		r.Post("/analyze", handlers.NewAnalyzeHandler(rt.deps.Analyzer, rt.cfg.Audio.MaxUploadBytes).Analyze)
		r.Post("/chat", handlers.NewChatHandler(rt.deps.Mentor).Chat)
		r.Post("/translate", handlers.NewTranslateHandler(rt.deps.Translator).Translate)

		historyH := handlers.NewHistoryHandler(rt.deps.History)
		r.Route("/analyses", func(r chi.Router) {
			r.Get("/", historyH.List)
			r.Get("/{id}", historyH.Get)
		})

		r.Get("/usage", handlers.NewUsageHandler(rt.deps.Usage).Usage)
		r.Get("/models", handlers.NewModelsHandler(rt.deps.Models).List)
	})

	return r
}

// Close releases background resources held by middleware.
func (rt *Router) Close() {
	rt.limiter.Stop()
}
