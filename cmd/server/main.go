package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ferrepos/internal/config"
	"ferrepos/internal/infra"
	"ferrepos/internal/repository"
	"ferrepos/internal/router"
	"ferrepos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title       ferrepos API
// @version     1.0
// @description Punto de venta de ferretería sobre el servidor de ventas remoto.
// @BasePath    /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger, pretty in dev and JSON in production
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cbCfg := infra.DefaultCBConfig()
	cbCfg.IsFailure = infra.IsBackendOutage
	breaker := infra.NewCircuitBreaker(cbCfg)
	backend := infra.NewBackendClient(cfg.BackendURL, cfg.BackendTimeout(), breaker)

	deps := router.Deps{
		Backend:   backend,
		Breaker:   breaker,
		Sesiones:  repository.NewSesionRepository(rdb),
		Historial: repository.NewHistorialRepository(rdb, cfg.HistorialTTL()),
		Impresora: infra.NewImpresora(cfg.PrinterAddress),
		Redis:     rdb,
	}

	// Receipt e-mails are only queued when SMTP is configured.
	mailer := infra.NewMailer(cfg)
	if mailer.Configurado() {
		deps.Correos = worker.NewDispatcher(rdb)
		worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, map[string]worker.JobHandler{
			worker.JobReciboEmail: worker.NewEmailWorker(mailer),
		})
	} else {
		log.Warn().Msg("SMTP_HOST not set, receipt e-mails disabled")
	}

	deps.Terminales = router.NewTerminales(cfg, deps)
	deps.Terminales.IniciarPurga(ctx, time.Minute)

	r := router.New(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("backend", cfg.BackendURL).Msgf("ferrepos listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
