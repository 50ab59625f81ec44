package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by all chromesnap commands.
type Config struct {
	// BaseDir is the directory holding the catalog, the installed
	// registry, the lock file and every installed build.
	BaseDir string `yaml:"base_dir"`
	// Platform overrides host platform detection (linux, mac, mac-arm, win).
	Platform string `yaml:"platform"`
	// SnapshotsURL is the bucket listing endpoint for snapshot builds.
	SnapshotsURL string `yaml:"snapshots_url"`
	// ReleasesURL is the endpoint serving per-channel release metadata.
	ReleasesURL string `yaml:"releases_url"`
	// Timeout is the duration for individual network operations.
	Timeout time.Duration `yaml:"timeout"`
	// MaxPages caps how many listing pages a catalog rebuild may fetch.
	// Zero means no cap.
	MaxPages int `yaml:"max_pages"`
	// DownloadRetries is how many times a failed download is retried.
	DownloadRetries int `yaml:"download_retries"`
	// RetryDelay is the delay before the first download retry.
	RetryDelay time.Duration `yaml:"retry_delay"`
	// LockTimeout bounds how long a command waits for the cross-process lock.
	LockTimeout time.Duration `yaml:"lock_timeout"`
	// LockStaleAfter is the age past which an abandoned lock is reclaimed.
	LockStaleAfter time.Duration `yaml:"lock_stale_after"`
}

const (
	// DefaultConfigFilename is the default filename for chromesnap settings.
	DefaultConfigFilename = "chromesnap.yaml"

	// EnvBaseDir is the environment variable overriding Config.BaseDir.
	// It is read once at the CLI boundary and threaded through explicitly.
	EnvBaseDir = "CHROMESNAP_HOME"

	// DefaultSnapshotsURL lists Chromium snapshot builds.
	DefaultSnapshotsURL = "https://www.googleapis.com/storage/v1/b/chromium-browser-snapshots/o"

	// DefaultReleasesURL serves per-channel Chromium release metadata.
	DefaultReleasesURL = "https://chromiumdash.appspot.com/fetch_releases"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 30 * time.Second

	// DefaultDownloadRetries is the default download retry budget.
	DefaultDownloadRetries = 3

	// DefaultRetryDelay is the default delay before the first retry.
	DefaultRetryDelay = 2 * time.Second

	// DefaultLockTimeout is how long commands wait for the lock by default.
	DefaultLockTimeout = 30 * time.Second

	// DefaultLockStaleAfter is the default lock staleness threshold.
	DefaultLockStaleAfter = 10 * time.Minute

	// DefaultFilePermissions is the default permission for files written
	// into the base directory.
	DefaultFilePermissions = 0o644

	// DefaultDirPermissions is the default permission for directories
	// created under the base directory.
	DefaultDirPermissions = 0o755
)

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// Default returns a configuration populated with defaults.
// The base directory resolves to ~/.chromesnap, or a temporary
// directory when the home directory cannot be determined.
func Default() *Config {
	base := filepath.Join(os.TempDir(), "chromesnap")
	if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, ".chromesnap")
	}

	return &Config{
		BaseDir:         base,
		SnapshotsURL:    DefaultSnapshotsURL,
		ReleasesURL:     DefaultReleasesURL,
		Timeout:         DefaultTimeout,
		DownloadRetries: DefaultDownloadRetries,
		RetryDelay:      DefaultRetryDelay,
		LockTimeout:     DefaultLockTimeout,
		LockStaleAfter:  DefaultLockStaleAfter,
	}
}

// Load reads configuration from the provided path, fills in defaults and
// validates essential fields. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and backfills defaults for omitted ones.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.BaseDir == "" {
		cfg.BaseDir = Default().BaseDir
	}

	if cfg.SnapshotsURL == "" {
		cfg.SnapshotsURL = DefaultSnapshotsURL
	}

	if cfg.ReleasesURL == "" {
		cfg.ReleasesURL = DefaultReleasesURL
	}

	for _, endpoint := range []string{cfg.SnapshotsURL, cfg.ReleasesURL} {
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return fmt.Errorf("invalid endpoint URL %q: %w", endpoint, err)
		}
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.DownloadRetries < 0 {
		cfg.DownloadRetries = DefaultDownloadRetries
	}

	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = DefaultLockTimeout
	}

	if cfg.LockStaleAfter <= 0 {
		cfg.LockStaleAfter = DefaultLockStaleAfter
	}

	return nil
}

// CatalogPath returns the location of the persisted catalog file.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.BaseDir, "catalog.json")
}

// RegistryPath returns the location of the installed-builds registry file.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.BaseDir, "installed.json")
}

// DownloadsDir returns the staging directory for in-flight downloads.
func (c *Config) DownloadsDir() string {
	return filepath.Join(c.BaseDir, "downloads")
}

// BuildsDir returns the directory holding installed builds.
func (c *Config) BuildsDir() string {
	return filepath.Join(c.BaseDir, "builds")
}

// InstallPath returns the installation directory for an install key.
func (c *Config) InstallPath(key string) string {
	return filepath.Join(c.BuildsDir(), key)
}
