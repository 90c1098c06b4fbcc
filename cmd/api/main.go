package main

import (
	"database/sql"
	"net/http"
	"time"

	"med-adherence/internal/adapters/formulary/rxdir"
	pg "med-adherence/internal/adapters/storage/postgres"
	"med-adherence/internal/config"
	"med-adherence/internal/platform/logger"
	"med-adherence/internal/ports/formulary"
	"med-adherence/internal/router"
)

// @title med-adherence API
// @version 1.0
// @description Backend de adherencia a medicamentos: schedules, logs de dosis con backfill de dosis salteadas y reporte de adherencia.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		App:    cfg.AppName,
	})

	// Sin DSN corremos con repos in-memory (modo dev / handoff).
	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = pg.Open(cfg.DBDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("open database")
		}
		defer db.Close()
		log.Info().Msg("storage: postgres")
	} else {
		log.Warn().Msg("storage: in-memory (DB_DSN not set)")
	}

	// Formulario externo opcional.
	var resolver formulary.Resolver
	if cfg.FormularyBaseURL != "" {
		client, err := rxdir.NewClient(rxdir.Config{
			BaseURL: cfg.FormularyBaseURL,
			APIKey:  cfg.FormularyAPIKey,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("formulary client")
		}
		resolver = rxdir.NewResolver(client)
		log.Info().Msg("formulary lookup enabled")
	}

	r := router.NewRouter(router.Options{
		Logger:    log,
		DB:        db,
		Formulary: resolver,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", cfg.Addr()).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server error")
	}
}
