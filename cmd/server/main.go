package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/config"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/handler"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/logger"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/repository"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/repository/postgres"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/service"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/ws"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repository.New(ctx, cfg, &appLogger)
	if err != nil {
		log.Fatalf("❌ Postgres connection failed: %v", err)
	}
	defer store.Close()

	pool := store.Pool()
	teamRepo := postgres.NewTeamRepository(pool)
	matchRepo := postgres.NewMatchRepository(pool)
	txManager := postgres.NewTxManager(pool)
	pinger := postgres.NewPinger(pool)

	hub := ws.NewHub(appLogger)

	teamSvc := service.NewTeamService(teamRepo, txManager, appLogger)
	matchSvc := service.NewMatchService(matchRepo, teamRepo, hub, cfg.Match.RuleSet(), appLogger)
	monitor := service.NewClockMonitor(matchSvc, time.Second, 10*time.Second, appLogger)

	if cfg.Logger.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	handler.Register(engine, pinger, teamSvc, matchSvc, hub)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.App.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.App.WriteTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info().Str("addr", srv.Addr).Msg("🚀 HTTP server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		hub.Run()
		return nil
	})
	g.Go(func() error {
		err := monitor.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.App.ShutdownTimeout)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error().Err(err).Msg("http shutdown failed")
		}
		hub.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		appLogger.Error().Err(err).Msg("service exited with error")
		return
	}
	appLogger.Info().Msg("service stopped cleanly")
}
