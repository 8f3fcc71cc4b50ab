// Command server boots the Study Orchestration Core: it loads the
// environment and the two config documents, wires every collaborator, and
// serves the REST + WebSocket surface of §6 until terminated.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shine-lab/orchestration-core/internal/cache"
	"github.com/shine-lab/orchestration-core/internal/config"
	"github.com/shine-lab/orchestration-core/internal/eventbus"
	"github.com/shine-lab/orchestration-core/internal/eventlog"
	"github.com/shine-lab/orchestration-core/internal/explainengine"
	"github.com/shine-lab/orchestration-core/internal/handlers"
	"github.com/shine-lab/orchestration-core/internal/logging"
	"github.com/shine-lab/orchestration-core/internal/middleware"
	"github.com/shine-lab/orchestration-core/internal/orchestrator"
	"github.com/shine-lab/orchestration-core/internal/scheduler"
	"github.com/shine-lab/orchestration-core/internal/session"
	"github.com/shine-lab/orchestration-core/internal/store"
)

func main() {
	env := config.LoadEnv()
	logging.Initialize(env.LogLevel, env.LogPretty)
	log := logging.HTTP()

	game, err := config.LoadGame(env.GameConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load game config")
	}
	explain, err := config.LoadExplanation(env.ExplainConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("load explanation config")
	}

	ctx := context.Background()
	st, err := store.Open(ctx, env.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	redisCache := cache.New(env.RedisAddr, env.RedisPassword, 0)
	if redisCache.IsEnabled() {
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable at boot, continuing degraded")
		}
	}

	engine, err := explainengine.Build(explainengine.Deps{Config: explain, Store: st})
	if err != nil {
		log.Fatal().Err(err).Msg("build explanation engine")
	}

	manager := session.New(st, game)
	logger := eventlog.New(st)
	sched := scheduler.New(st, game, logger)
	hub := eventbus.NewHub(nil)

	orch := orchestrator.New(orchestrator.Deps{
		Store:       st,
		Game:        game,
		Explanation: explain,
		Cache:       redisCache,
		Manager:     manager,
		Scheduler:   sched,
		Logger:      logger,
		Engine:      engine,
		Hub:         hub,
	})
	hub.SetHandler(orch)

	if deliverable, ok := engine.(interface {
		SetDeliveryFunc(explainengine.DeliveryFunc)
	}); ok {
		deliverable.SetDeliveryFunc(func(sessionID string, result explainengine.Result) {
			hub.Push(sessionID, eventbus.PushExplanation, eventbus.ExplanationPush{Explanation: result.Explanation})
		})
	}

	sweep := scheduler.NewSweep(sched, st)
	if err := sweep.Start("@every 30s"); err != nil {
		log.Fatal().Err(err).Msg("start timeout sweep")
	}
	defer sweep.Stop()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.DefaultSizeLimiter())

	api := router.Group("/")
	handlers.NewSessionHandler(manager, st).RegisterRoutes(api)
	handlers.NewGameDataHandler(st, game, sched, redisCache).RegisterRoutes(api)
	handlers.NewEventBusHandler(hub).RegisterRoutes(api)
	handlers.NewEngineCallbackHandler(engine, explain).RegisterRoutes(api)

	srv := &http.Server{
		Addr:    env.BindAddress,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", env.BindAddress).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
