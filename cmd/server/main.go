// @title Companion Recall API
// @version 1.0
// @description Registro y llamado de mascotas y monturas por jugador.
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pg "companion-recall/internal/adapters/storage/postgres"
	mem "companion-recall/internal/adapters/storage/memory"
	"companion-recall/internal/adapters/storage/sqlite"
	fb "companion-recall/internal/adapters/feedback"
	"companion-recall/internal/adapters/world/memory"
	"companion-recall/internal/domain/companions"
	"companion-recall/internal/domain/cooldowns"
	"companion-recall/internal/domain/eligibility"
	"companion-recall/internal/domain/maintenance"
	"companion-recall/internal/platform/config"
	"companion-recall/internal/platform/logger"
	"companion-recall/internal/ports/feedback"
	"companion-recall/internal/router"

	"golang.org/x/sync/errgroup"
)

func main() {
	log := logger.NewFromEnv()
	if err := run(log); err != nil {
		log.Error("server exited", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(log logger.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closer, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closer.Close()

	persister := companions.NewPersister(store, log)
	regs := companions.NewRegistries(store, persister.Enqueue, log)
	srv := memory.NewServer(log, cfg.Zones...)
	for _, z := range cfg.Zones {
		if _, err := regs.Open(ctx, z); err != nil {
			return fmt.Errorf("open registry %s: %w", z, err)
		}
	}

	rules := eligibility.NewRules(cfg.Rules.PetTypes, cfg.Rules.MountTypes)
	cds := cooldowns.New()

	sched := maintenance.New(maintenance.Config{
		PetRegen:            cfg.Rules.PetRegen,
		MountRegen:          cfg.Rules.MountRegen,
		PetImmortal:         cfg.Rules.PetImmortal,
		MountImmortal:       cfg.Rules.MountImmortal,
		FightThreshold:      float64(cfg.Rules.HealthRequiredToFight),
		MoveThreshold:       float64(cfg.Rules.HealthRequiredToMove),
		DisableFriendlyFire: cfg.Rules.DisableFriendlyFire,
		WhistleCooldown:     cfg.Rules.WhistleCooldown(),
	}, regs, rules, cds, log)
	for _, z := range srv.Zones() {
		sched.Attach(z)
	}

	var (
		sink    feedback.Sink = fb.NewLogSink(log)
		webhook *fb.WebhookSink
	)
	if cfg.Feedback.WebhookURL != "" {
		webhook, err = fb.NewWebhookSink(fb.WebhookConfig{
			URL:          cfg.Feedback.WebhookURL,
			APIKey:       cfg.Feedback.WebhookKey,
			APIKeyHeader: cfg.Feedback.WebhookHeader,
			Timeout:      cfg.Feedback.Timeout,
		}, log)
		if err != nil {
			return fmt.Errorf("feedback webhook: %w", err)
		}
		sink = webhook
	}

	httpSrv := &http.Server{
		Addr: cfg.Addr,
		Handler: router.NewRouter(router.Options{
			Server:          srv,
			Registries:      regs,
			Rules:           rules,
			Cooldowns:       cds,
			Feedback:        sink,
			Logger:          log,
			WhistleCooldown: cfg.Rules.WhistleCooldown(),
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx, cfg.TickInterval) })
	g.Go(func() error { return persister.Run(gctx) })
	g.Go(func() error { return sched.Run(gctx) })
	if webhook != nil {
		g.Go(func() error { return webhook.Run(gctx) })
	}
	g.Go(func() error {
		log.Info("starting server", map[string]any{"addr": cfg.Addr, "zones": cfg.Zones, "storage": cfg.Storage.Driver})
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	runErr := g.Wait()

	// Las zonas ya pararon: nadie más toca los registros.
	for _, z := range regs.Zones() {
		if reg, ok := regs.For(z); ok {
			reg.Flush()
		}
	}
	syncCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := persister.Sync(syncCtx); err != nil {
		log.Error("final sync failed", map[string]any{"error": err.Error(), "pending": persister.Pending()})
	}

	return runErr
}

func openStore(ctx context.Context, cfg config.StorageConfig) (companions.Store, io.Closer, error) {
	switch cfg.Driver {
	case config.StorageSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.StoragePostgres:
		db, err := pg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return pg.NewCompanionsRepo(db), db, nil
	default:
		return mem.NewCompanionsStore(), io.NopCloser(nil), nil
	}
}
