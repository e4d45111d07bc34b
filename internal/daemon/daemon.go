package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mindwell-app/mindwell/internal/api"
	"github.com/mindwell-app/mindwell/internal/app/assessment"
	"github.com/mindwell-app/mindwell/internal/app/community"
	"github.com/mindwell-app/mindwell/internal/app/mindfulness"
	"github.com/mindwell-app/mindwell/internal/app/mood"
	"github.com/mindwell-app/mindwell/internal/app/progression"
	"github.com/mindwell-app/mindwell/internal/health"
	"github.com/mindwell-app/mindwell/internal/identity"
	_ "github.com/mindwell-app/mindwell/internal/infra/metrics" // Register Prometheus metrics
	"github.com/mindwell-app/mindwell/internal/infra/sqlite"
)

// Daemon is the core MindWell runtime. It wires together all services.
type Daemon struct {
	Config Config
	Log    *zap.Logger
	DB     *sqlite.DB
	Server *api.Server
	cancel context.CancelFunc

	Progression *progression.Service
	Mood        *mood.Service
	Assessment  *assessment.Service
	Mindfulness *mindfulness.Service
	Community   *community.Service
	Signer      *identity.Signer
	Health      *health.Checker
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	home := mindwellHome()
	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	logger := NewLogger(cfg.Logging)

	db, err := sqlite.Open(home)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A stable user id is minted on first run and saved back.
	if cfg.User.ID == "" {
		cfg.User.ID = uuid.NewString()
		if err := SaveConfig(cfg); err != nil {
			logger.Warn("persist generated user id", zap.Error(err))
		}
	}
	if _, err := db.EnsureProfile(cfg.User.ID, cfg.User.DisplayName); err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}

	secret, err := identity.LoadOrCreateSecret(home)
	if err != nil {
		return nil, fmt.Errorf("load session key: %w", err)
	}
	signer := identity.NewSigner(secret)

	prog := progression.NewService(db, progression.NewEngine(), logger)

	d := &Daemon{
		Config:      cfg,
		Log:         logger,
		DB:          db,
		Progression: prog,
		Mood:        mood.NewService(db, prog, logger),
		Assessment:  assessment.NewService(db, prog, logger),
		Mindfulness: mindfulness.NewService(db, prog, logger),
		Community:   community.NewService(db, logger),
		Signer:      signer,
		Health:      health.NewChecker(db, home),
	}

	d.Server = api.NewServer(api.Deps{
		Progression: d.Progression,
		Mood:        d.Mood,
		Assessment:  d.Assessment,
		Mindfulness: d.Mindfulness,
		Community:   d.Community,
		Signer:      signer,
		Health:      d.Health,
		UserID:      cfg.User.ID,
		CORSOrigins: cfg.API.CORSOrigins,
		Metrics:     cfg.Telemetry.Prometheus,
		Log:         logger,
	})

	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	d.Log.Info("serving", zap.String("addr", addr))
	if d.Config.Telemetry.Prometheus {
		d.Log.Info("metrics enabled", zap.String("url", fmt.Sprintf("http://%s/metrics", addr)))
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
	_ = d.Log.Sync()
}
