package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"easel/internal/config"
	"easel/internal/dispatch"
	"easel/internal/normalize"
	"easel/internal/plugin"
	"easel/internal/runner"
	"easel/internal/server"
	"easel/pkg/logging"
)

// Config holds the application bootstrap configuration.
type Config struct {
	// Debug enables verbose logging.
	Debug bool

	// Silent suppresses all log output. Used by one-shot CLI commands whose
	// stdout is the deliverable.
	Silent bool

	// ConfigPath overrides the per-user configuration directory.
	ConfigPath string

	// EaselConfig is populated during bootstrap.
	EaselConfig *config.EaselConfig
}

// NewConfig creates a new application configuration.
func NewConfig(debug, silent bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		Silent:     silent,
		ConfigPath: configPath,
	}
}

// Application wires together the runner, normalizer, plugin registry and
// dispatcher. It is the single assembly point: commands get their components
// from here instead of constructing them ad hoc.
type Application struct {
	config     *Config
	registry   *plugin.Registry
	dispatcher *dispatch.Dispatcher
	version    string
}

// NewApplication performs the full bootstrap sequence: logging, configuration
// loading, executable resolution and component wiring. The plugin catalog is
// scanned once; individual manifest errors are logged but never abort startup.
func NewApplication(cfg *Config, version string) (*Application, error) {
	logLevel := logging.LevelInfo
	if cfg.Debug {
		logLevel = logging.LevelDebug
	}
	// Stdout may carry protocol traffic or table output; logs go to stderr.
	var logOutput io.Writer = os.Stderr
	if cfg.Silent {
		logOutput = io.Discard
	}
	logging.Init(logLevel, logOutput)

	configPath := cfg.ConfigPath
	if configPath == "" {
		var err error
		configPath, err = config.GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	easelCfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration from %s", configPath)
		return nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}
	cfg.EaselConfig = &easelCfg

	executable, err := easelCfg.Tool.ResolveExecutable()
	if err != nil {
		// Startup proceeds: every dispatch will fail with a classified
		// executable_not_found result, which is more useful to an agent than
		// a dead server.
		logging.Warn("Bootstrap", "No vector tool executable found: %v", err)
		executable = "inkscape"
	}
	logging.Info("Bootstrap", "Using executable %s", executable)

	run := runner.NewRunner()
	norm := normalize.NewNormalizer(easelCfg.Tool.NoisePatterns...)

	registry := plugin.NewRegistry(easelCfg.Plugins.Directories, plugin.ExecConfig{
		Executable: executable,
		Timeout:    easelCfg.Tool.Timeout(),
	}, run, norm)

	count, scanErrs := registry.Scan()
	for _, scanErr := range scanErrs {
		logging.Warn("Bootstrap", "Skipping plugin manifest: %v", scanErr)
	}
	logging.Info("Bootstrap", "Loaded %d plugins from %d directories", count, len(easelCfg.Plugins.Directories))

	dispatcher := dispatch.New(run, norm, registry, dispatch.Options{
		Executable:  executable,
		Timeout:     easelCfg.Tool.Timeout(),
		Concurrency: easelCfg.Dispatch.Concurrency,
		AcquireWait: easelCfg.Dispatch.AcquireWait(),
		HistorySize: easelCfg.Dispatch.HistorySize,
	})

	return &Application{
		config:     cfg,
		registry:   registry,
		dispatcher: dispatcher,
		version:    version,
	}, nil
}

// Registry returns the plugin registry.
func (a *Application) Registry() *plugin.Registry {
	return a.registry
}

// Dispatcher returns the operation dispatcher.
func (a *Application) Dispatcher() *dispatch.Dispatcher {
	return a.dispatcher
}

// RunServer serves MCP over stdio until the transport closes or the context
// ends. When manifest watching is enabled the registry re-scans itself on
// filesystem changes for the lifetime of the server.
func (a *Application) RunServer(ctx context.Context) error {
	if a.config.EaselConfig.Plugins.Watch {
		go func() {
			if err := a.registry.Watch(ctx); err != nil {
				logging.Error("Bootstrap", err, "Plugin manifest watcher stopped")
			}
		}()
	}

	srv := server.NewMCPServer(a.dispatcher, a.registry, a.version)
	return srv.Start(ctx)
}
