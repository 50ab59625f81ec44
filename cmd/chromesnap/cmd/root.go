package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okonechnikov/chromesnap/internal/config"
	"github.com/okonechnikov/chromesnap/internal/logger"
	"github.com/okonechnikov/chromesnap/internal/platform"
	"github.com/okonechnikov/chromesnap/internal/service/keeper"
	"github.com/okonechnikov/chromesnap/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// baseDirFlag overrides the base directory from config and environment.
	baseDirFlag string
	// platformFlag overrides host platform detection.
	platformFlag string
	// logLevelFlag controls logging verbosity.
	logLevelFlag string

	// rootCmd represents the base command for managing snapshot builds.
	rootCmd = &cobra.Command{
		Use:   "chromesnap",
		Short: "Keep and run Chromium snapshot builds",
		Long: `Chromesnap resolves version queries against the Chromium snapshot
storage, downloads the matching build, installs it atomically and runs it.

Queries accept a full version (93.0.4577.82), a version prefix (93),
a bare revision (911515), or the keywords "latest" and "oldest".

The base directory holds the catalog, the installed registry and every
installed build. It resolves from --base-dir, the ` + config.EnvBaseDir + `
environment variable, or the configuration file, in that order.`,
		SilenceUsage: true,
	}
)

// Execute runs the chromesnap CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&baseDirFlag, "base-dir", "b", "", "directory for the catalog and installed builds")
	rootCmd.PersistentFlags().
		StringVarP(&platformFlag, "platform", "p", "", "target platform (linux, mac, mac-arm, win)")
	rootCmd.PersistentFlags().
		StringVarP(&logLevelFlag, "log-level", "l", "info", "logging level (debug, info, warn, error)")
}

// commandContext returns a context cancelled on SIGTERM or SIGINT.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// newService loads the configuration, applies CLI overrides and builds
// the keeper service.
func newService(opts ...keeper.Option) (*keeper.Service, error) {
	if level, ok := logger.ParseLogLevel(logLevelFlag); ok {
		logger.SetLevel(level)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	// Base directory precedence: flag, environment, configuration file.
	if baseDirFlag != "" {
		cfg.BaseDir = baseDirFlag
	} else if env := os.Getenv(config.EnvBaseDir); env != "" {
		cfg.BaseDir = env
	}

	platformName := cfg.Platform
	if platformFlag != "" {
		platformName = platformFlag
	}

	plat, err := platform.Resolve(platformName)
	if err != nil {
		return nil, err
	}

	return keeper.New(cfg, plat, opts...), nil
}
