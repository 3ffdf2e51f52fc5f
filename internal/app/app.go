// Package app wires configuration, upstream clients and HTTP handling into
// a runnable service shared by the server and Lambda entrypoints.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/emailwriter/emailwriter/internal/analyzer"
	"github.com/emailwriter/emailwriter/internal/config"
	"github.com/emailwriter/emailwriter/internal/database"
	"github.com/emailwriter/emailwriter/internal/gemini"
	"github.com/emailwriter/emailwriter/internal/handler"
	"github.com/emailwriter/emailwriter/internal/logger"
	"github.com/emailwriter/emailwriter/internal/middleware"
	"github.com/emailwriter/emailwriter/internal/router"
	"github.com/emailwriter/emailwriter/internal/service"
	"github.com/emailwriter/emailwriter/internal/translate"
)

// App is a fully wired service
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Email   *service.EmailService
	Handler http.Handler

	rdb *database.Redis
}

// New builds the App from cfg
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	var counter middleware.Counter
	var health handler.HealthChecker
	if cfg.Redis.Enabled {
		rdb, err := database.NewRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.rdb = rdb
		counter = rdb
		health = rdb
		log.Info().Str("addr", cfg.Redis.Addr()).Msg("connected to Redis")
	}

	gen, err := gemini.NewClient(cfg.Gemini, nil, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}

	tr, err := translate.NewClient(ctx, cfg.Translate, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize translate client: %w", err)
	}

	an, err := analyzer.New(cfg.Analyzer)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Email = service.NewEmailService(gen, tr, an, cfg.API.InlineErrors, log)
	log.Info().
		Str("analyzer", cfg.Analyzer.Mode).
		Bool("inline_errors", cfg.API.InlineErrors).
		Msg("email service initialized")

	h := handler.New(a.Email, health, log)
	mw := middleware.New(counter, log, cfg)
	a.Handler = router.New(h, mw, cfg)

	return a, nil
}

// Close releases connections held by the App
func (a *App) Close() error {
	if a.rdb != nil {
		return a.rdb.Close()
	}
	return nil
}
