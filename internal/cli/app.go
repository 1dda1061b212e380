// Package cli wires settings, storage, the engine and the front ends for the sentinel binary.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/sentinel"
	"github.com/aretw0/sentinel/internal/logging"
	"github.com/aretw0/sentinel/pkg/adapters/openai"
	"github.com/aretw0/sentinel/pkg/config"
	"github.com/aretw0/sentinel/pkg/console"
	"github.com/aretw0/sentinel/pkg/observability"
	"github.com/aretw0/sentinel/pkg/profile"
	"github.com/aretw0/sentinel/pkg/runner"
	"github.com/aretw0/sentinel/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// StoreKind selects where transcripts live when redis is not configured.
type StoreKind string

const (
	StoreMemory StoreKind = "memory"
	StoreFile   StoreKind = "file"
)

// Options are the command-line overrides applied on top of Settings.
type Options struct {
	Tables string // overrides SENTINEL_TABLES
	Debug  bool   // forces debug logging
	Store  StoreKind

	// LogOutput receives logs. Defaults to Stderr.
	LogOutput io.Writer
}

// App is a fully wired Sentinel instance.
type App struct {
	Settings *config.Settings
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Storage  *Storage
	Sessions *session.Manager
	Engine   *sentinel.Engine
	Console  *console.Console
}

// Build wires an App from settings and options.
func Build(settings *config.Settings, opts Options) (*App, error) {
	logger, err := createLogger(settings.LogLevel, opts)
	if err != nil {
		return nil, err
	}

	tables := settings.Tables
	if opts.Tables != "" {
		tables = opts.Tables
	}
	prof, err := loadProfile(tables)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	engine, err := createEngine(settings, prof, metrics, logger)
	if err != nil {
		return nil, err
	}

	storage, err := OpenStorage(settings, opts.Store, logger)
	if err != nil {
		return nil, err
	}

	sessionOpts := []session.Option{session.WithLogger(logger)}
	if storage.Locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(storage.Locker))
	}
	sessions := session.NewManager(storage.Store, sessionOpts...)

	cons := console.New(engine, sessions,
		console.WithSanitizer(runner.NewSanitizer(settings.MaxInputSize)),
		console.WithLogger(logger),
	)

	logger.Info("sentinel ready",
		"profile", prof.Name,
		"online", engine.Online(),
		"store", storage.Kind,
		"encrypted", settings.EncryptionKey != "",
	)

	return &App{
		Settings: settings,
		Logger:   logger,
		Registry: reg,
		Metrics:  metrics,
		Storage:  storage,
		Sessions: sessions,
		Engine:   engine,
		Console:  cons,
	}, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	return a.Storage.Close()
}

// createLogger configures the application logger.
// Logs go to Stderr so they never mix with the widget on Stdout.
func createLogger(level string, opts Options) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidSettings, err)
	}
	if opts.Debug {
		lvl = slog.LevelDebug
	}
	w := opts.LogOutput
	if w == nil {
		w = os.Stderr
	}
	return logging.NewWithWriter(w, lvl), nil
}

// loadProfile returns the compiled-in profile, overlaid with the tables file when one is set.
func loadProfile(path string) (profile.Profile, error) {
	if path == "" {
		return profile.Waseeq(), nil
	}
	p, err := config.LoadProfile(path, profile.Waseeq())
	if err != nil {
		return profile.Profile{}, fmt.Errorf("failed to load tables %s: %w", path, err)
	}
	return p, nil
}

// createEngine initializes the engine, attaching a generator when an API key is set.
func createEngine(settings *config.Settings, prof profile.Profile, metrics *observability.Metrics, logger *slog.Logger) (*sentinel.Engine, error) {
	engineOpts := []sentinel.Option{
		sentinel.WithProfile(prof),
		sentinel.WithLogger(logger),
		sentinel.WithLifecycleHooks(metrics.Hooks(logger)),
		sentinel.WithGeneratorTimeout(settings.GeneratorTimeout),
	}

	if settings.Online() {
		genOpts := []openai.Option{}
		if settings.OpenAIBaseURL != "" {
			genOpts = append(genOpts, openai.WithBaseURL(settings.OpenAIBaseURL))
		}
		if settings.OpenAIModel != "" {
			genOpts = append(genOpts, openai.WithModel(settings.OpenAIModel))
		}
		engineOpts = append(engineOpts, sentinel.WithGenerator(openai.New(settings.OpenAIAPIKey, genOpts...)))
	}

	engine, err := sentinel.New(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// ErrMissingToken is returned by front ends that need a credential that is not set.
var ErrMissingToken = errors.New("missing token")
