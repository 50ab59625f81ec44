package keeper

import (
	"context"
	"errors"
	"net/http"

	"github.com/okonechnikov/chromesnap/internal/catalog"
	"github.com/okonechnikov/chromesnap/internal/config"
	"github.com/okonechnikov/chromesnap/internal/download"
	"github.com/okonechnikov/chromesnap/internal/lock"
	"github.com/okonechnikov/chromesnap/internal/platform"
	"github.com/okonechnikov/chromesnap/internal/remote"
	catalogrepo "github.com/okonechnikov/chromesnap/internal/repository/catalog"
	registryrepo "github.com/okonechnikov/chromesnap/internal/repository/registry"
)

// retryBackoffFactor doubles the delay after every failed download attempt.
const retryBackoffFactor = 2.0

var (
	// ErrBuildNotFound is returned when no catalog entry resolves a query.
	ErrBuildNotFound = errors.New("no build matches the query")
	// ErrArchiveUnavailable is returned when a revision publishes no
	// archive for the platform.
	ErrArchiveUnavailable = errors.New("no archive published for this revision")
	// ErrSizeMismatch is returned when a downloaded archive does not
	// match its declared size.
	ErrSizeMismatch = errors.New("downloaded archive size mismatch")
	// ErrBundleLayout is returned when an installed build misses the
	// expected bundle structure.
	ErrBundleLayout = errors.New("installed bundle layout is invalid")
)

// Remote aggregates everything the service needs from the snapshot
// storage and the release feed.
type Remote interface {
	catalog.RevisionSource
	catalog.ReleaseSource

	// Artifact returns the downloadable archive for a revision, or nil
	// when the platform archive is not published for it.
	Artifact(ctx context.Context, revision string) (*remote.ArtifactItem, error)
}

// Service wires the catalog, the download pipeline, the atomic
// installer and the lock manager into the user-facing operations.
type Service struct {
	cfg        *config.Config
	plat       platform.Platform
	remote     Remote
	catalogs   catalogrepo.Repository
	installs   registryrepo.Repository
	httpClient download.HTTPClient
	extractor  Extractor
	launcher   Launcher
	onProgress download.ProgressFunc
}

// Option configures a Service.
type Option func(*Service)

// WithRemote substitutes the remote source.
func WithRemote(r Remote) Option {
	return func(s *Service) {
		if r != nil {
			s.remote = r
		}
	}
}

// WithHTTPClient substitutes the HTTP client used for artifact downloads.
func WithHTTPClient(h download.HTTPClient) Option {
	return func(s *Service) {
		if h != nil {
			s.httpClient = h
		}
	}
}

// WithExtractor substitutes the archive extraction collaborator.
func WithExtractor(e Extractor) Option {
	return func(s *Service) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithLauncher substitutes the application launch collaborator.
func WithLauncher(l Launcher) Option {
	return func(s *Service) {
		if l != nil {
			s.launcher = l
		}
	}
}

// WithProgress registers an observer for download progress.
func WithProgress(fn download.ProgressFunc) Option {
	return func(s *Service) {
		s.onProgress = fn
	}
}

// New creates a Service for the given configuration and platform.
func New(cfg *config.Config, plat platform.Platform, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		plat:     plat,
		catalogs: catalogrepo.NewFileRepository(cfg.CatalogPath()),
		installs: registryrepo.NewFileRepository(cfg.RegistryPath()),
		// Archive transfers run for minutes; they are bounded by the
		// request context instead of a flat client timeout.
		httpClient: http.DefaultClient,
		extractor:  ExecExtractor{},
		launcher:   ExecLauncher{},
	}

	metadataClient := &http.Client{Timeout: cfg.Timeout}
	s.remote = remote.NewClient(cfg.SnapshotsURL, cfg.ReleasesURL, plat,
		remote.WithHTTPClient(metadataClient))

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// lockOptions derives lock tuning from the configuration.
func (s *Service) lockOptions() lock.Options {
	return lock.Options{
		Timeout:    s.cfg.LockTimeout,
		StaleAfter: s.cfg.LockStaleAfter,
	}
}

// retryConfig derives download retry tuning from the configuration.
func (s *Service) retryConfig() download.RetryConfig {
	return download.RetryConfig{
		MaxRetries:    s.cfg.DownloadRetries,
		InitialDelay:  s.cfg.RetryDelay,
		BackoffFactor: retryBackoffFactor,
	}
}
