// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/artpar/formgate/adapters/clock"
	"github.com/artpar/formgate/adapters/hasher"
	"github.com/artpar/formgate/adapters/http/api"
	"github.com/artpar/formgate/adapters/idgen"
	"github.com/artpar/formgate/adapters/metrics"
	"github.com/artpar/formgate/adapters/sqlite"
	"github.com/artpar/formgate/app"
	"github.com/artpar/formgate/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Holder
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector

	Catalog    *app.CatalogService
	Placements *app.PlacementService
	Sync       *app.SyncService
	Validator  *app.ValidatorService
	Forms      *app.FormService
}

// New creates and initializes the application from a config file path.
// A missing file falls back to environment-only configuration.
func New(configPath string) (*App, error) {
	cfg, err := config.LoadWithFallback(configPath)
	if err != nil {
		return nil, err
	}
	logger := setupLogger(cfg.Logging)

	a := &App{Logger: logger}

	if configPath != "" {
		if _, statErr := os.Stat(configPath); statErr == nil {
			holder, err := config.NewHolder(configPath, logger)
			if err != nil {
				return nil, err
			}
			a.Config = holder
		}
	}

	logger.Info().Str("dsn", cfg.Database.DSN).Msg("initializing formgate")

	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	a.DB = db

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		logger.Info().Str("path", cfg.Metrics.Path).Msg("prometheus metrics enabled")
	}

	a.buildServices()

	if err := a.buildHTTPServer(cfg); err != nil {
		db.Close()
		return nil, err
	}

	if a.Config != nil {
		a.Config.OnChange(func(*config.Config) {
			if a.Metrics != nil {
				a.Metrics.ConfigReloads.Inc()
			}
		})
		a.Config.OnReloadError(func(error) {
			if a.Metrics != nil {
				a.Metrics.ConfigReloadErrors.Inc()
			}
		})
	}

	return a, nil
}

func (a *App) buildServices() {
	fields := sqlite.NewFieldStore(a.DB)
	placements := sqlite.NewPlacementStore(a.DB)
	forms := sqlite.NewFormStore(a.DB)
	submissions := sqlite.NewSubmissionStore(a.DB)
	profiles := sqlite.NewProfileStore(a.DB)
	ids := idgen.UUID{}
	clk := clock.Real{}

	a.Catalog = app.NewCatalogService(fields, placements, ids, clk, a.Logger)
	a.Placements = app.NewPlacementService(a.Catalog, placements, ids, a.Logger, a.Metrics)
	a.Sync = app.NewSyncService(a.Catalog, placements, ids, a.Logger, a.Metrics)
	a.Validator = app.NewValidatorService(placements, profiles, a.Logger, a.Metrics)
	a.Forms = app.NewFormService(forms, submissions, profiles, a.Validator, ids, clk, a.Logger, a.Metrics)
}

func (a *App) buildHTTPServer(cfg *config.Config) error {
	bc := hasher.NewBcrypt(cfg.Admin.BcryptCost)

	var tokenHash []byte
	if cfg.Admin.Token != "" {
		var err error
		tokenHash, err = bc.Hash(cfg.Admin.Token)
		if err != nil {
			return fmt.Errorf("hash admin token: %w", err)
		}
	} else {
		a.Logger.Warn().Msg("no admin token configured, admin API disabled")
	}

	handler := api.NewHandler(api.Deps{
		Catalog:        a.Catalog,
		Placements:     a.Placements,
		Sync:           a.Sync,
		Validator:      a.Validator,
		Forms:          a.Forms,
		Hasher:         bc,
		AdminTokenHash: tokenHash,
		ListLimit:      cfg.Submissions.ListLimit,
		Logger:         a.Logger,
		Collector:      a.Metrics,
	})

	root := chi.NewRouter()
	root.Mount("/", handler.Router())
	if cfg.Metrics.Enabled {
		root.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	a.HTTPServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      root,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return nil
}

// Run starts the HTTP server and blocks until a signal or server error.
func (a *App) Run() error {
	if a.Config != nil {
		if err := a.Config.WatchFile(); err != nil {
			a.Logger.Warn().Err(err).Msg("config file watch unavailable")
		}
		a.Config.WatchSignals()
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	shutdownTimeout := config.Default().Server.ShutdownTimeout
	if a.Config != nil {
		shutdownTimeout = a.Config.Get().Server.ShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.Config != nil {
		a.Config.Stop()
	}
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func setupLogger(cfg config.Logging) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
