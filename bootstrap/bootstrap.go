// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	brickapi "github.com/merchantkit/brickgate/adapters/brick"
	"github.com/merchantkit/brickgate/adapters/clock"
	"github.com/merchantkit/brickgate/adapters/hasher"
	"github.com/merchantkit/brickgate/adapters/idgen"
	"github.com/merchantkit/brickgate/adapters/memory"
	"github.com/merchantkit/brickgate/adapters/metrics"
	"github.com/merchantkit/brickgate/adapters/sqlite"
	"github.com/merchantkit/brickgate/app"
	"github.com/merchantkit/brickgate/config"
	"github.com/merchantkit/brickgate/ports"
	"github.com/merchantkit/brickgate/web"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector
	Payments   *app.PaymentService

	holder *config.Holder
}

// New creates and initializes the application from a config file,
// without hot reload.
func New(path string) (*App, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return build(cfg, nil)
}

// NewWithHotReload creates the application with a config holder that
// re-reads the file on change and on SIGHUP.
func NewWithHotReload(path string) (*App, error) {
	bootLogger := setupLogger(config.LoggingConfig{Level: "info", Format: "json"})

	holder, err := config.NewHolder(path, bootLogger)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	a, err := build(holder.Get(), holder)
	if err != nil {
		holder.Stop()
		return nil, err
	}

	// All callbacks are registered before the watchers start so the
	// first file event already sees them.
	holder.OnChange(func(cfg *config.Config) {
		if a.Metrics != nil {
			a.Metrics.ConfigReloads.Inc()
			a.Metrics.ConfigLastReload.SetToCurrentTime()
		}
	})
	if err := holder.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config file watch unavailable")
	}
	holder.WatchSignals()
	return a, nil
}

func build(cfg *config.Config, holder *config.Holder) (*App, error) {
	logger := setupLogger(cfg.Logging)

	logger.Info().Msg("initializing brickgate")

	a := &App{
		Logger: logger,
		holder: holder,
	}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		logger.Info().Str("path", cfg.Metrics.Path).Msg("prometheus metrics enabled")
	}

	realClock := clock.Real{}
	ids := idgen.UUID{}

	var (
		orders  ports.OrderStore
		subs    ports.SubscriptionStore
		cart    ports.Cart
		notices ports.Notices
	)
	switch cfg.Store.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		a.DB = db
		orders = sqlite.NewOrderStore(db, ids)
		subs = sqlite.NewSubscriptionStore(db)
		logger.Info().Str("path", cfg.Store.Path).Msg("sqlite store initialized")
	default:
		orders = memory.NewOrderStore(realClock, ids)
		subs = memory.NewSubscriptionStore(realClock)
		logger.Info().Msg("in-memory store initialized")
	}
	cart = memory.NewCartStore()
	notices = memory.NewNoticeStore()

	provider := brickapi.New(brickapi.Config{
		PublicKey: cfg.Brick.PublicKey,
		SecretKey: cfg.Brick.SecretKey,
		BaseURL:   cfg.Brick.BaseURL,
		Timeout:   cfg.Brick.Timeout,
	}, logger, a.Metrics)

	a.Payments = app.NewPaymentService(app.PaymentDeps{
		Orders:   orders,
		Subs:     subs,
		Cart:     cart,
		Notices:  notices,
		Provider: provider,
		Clock:    realClock,
	}, app.PaymentConfig{
		SiteName:  cfg.Site.Name,
		ReturnURL: cfg.Site.ReturnURL,
	}, logger)

	keyHash := func() string { return cfg.API.KeyHash }
	if holder != nil {
		keyHash = func() string { return holder.Get().API.KeyHash }

		// Thread the reloadable fields into the running components.
		holder.OnChange(func(next *config.Config) {
			if lvl, err := zerolog.ParseLevel(next.Logging.Level); err == nil && next.Logging.Level != "" {
				zerolog.SetGlobalLevel(lvl)
			}
			provider.UpdateConfig(brickapi.Config{
				PublicKey: next.Brick.PublicKey,
				SecretKey: next.Brick.SecretKey,
				BaseURL:   next.Brick.BaseURL,
			})
			a.Payments.UpdateConfig(app.PaymentConfig{
				SiteName:  next.Site.Name,
				ReturnURL: next.Site.ReturnURL,
			})
		})
	}

	handler := web.NewHandler(web.Deps{
		Payments: a.Payments,
		Events:   a.Payments,
		Orders:   orders,
		Subs:     subs,
		Notices:  notices,
		Hasher:   hasher.NewBcrypt(0),
		KeyHash:  keyHash,
		Logger:   logger,
		Metrics:  a.Metrics,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	a.HTTPServer = &http.Server{
		Addr:         addr,
		Handler:      handler.Routes(cfg.Metrics.Enabled, cfg.Metrics.Path),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info().Str("addr", addr).Msg("http server configured")
	return a, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
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
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.holder != nil {
		a.holder.Stop()
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

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
