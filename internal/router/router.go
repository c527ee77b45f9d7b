package router

import (
	"net/http"
	"time"

	_ "companion-recall/docs"
	"companion-recall/internal/domain/companions"
	"companion-recall/internal/domain/cooldowns"
	"companion-recall/internal/domain/eligibility"
	"companion-recall/internal/domain/lifecycle"
	"companion-recall/internal/domain/recall"
	"companion-recall/internal/middleware"
	"companion-recall/internal/platform/logger"
	"companion-recall/internal/ports/feedback"
	"companion-recall/internal/ports/world"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Server     world.Server
	Registries *companions.Registries
	Rules      *eligibility.Rules
	Cooldowns  *cooldowns.Service
	Feedback   feedback.Sink // puede ser nil
	Logger     logger.Logger // puede ser nil

	// WhistleCooldown <= 0 desactiva el cooldown.
	WhistleCooldown time.Duration
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)

	r.Use(middleware.CallerContext())

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	cds := opts.Cooldowns
	if cds == nil {
		cds = cooldowns.New()
	}

	// Services por módulo
	engine := recall.NewEngine(recall.Deps{
		Server:     opts.Server,
		Registries: opts.Registries,
		Rules:      opts.Rules,
		Cooldowns:  cds,
		Feedback:   opts.Feedback,
		Logger:     log,
	}, opts.WhistleCooldown)
	lifecycleSvc := lifecycle.NewService(opts.Server, opts.Registries, opts.Rules, log)

	// Rutas por módulo
	recall.RegisterRoutes(r, engine)
	lifecycle.RegisterRoutes(r, lifecycleSvc)

	return r
}
