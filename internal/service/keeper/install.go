package keeper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okonechnikov/chromesnap/internal/catalog"
	"github.com/okonechnikov/chromesnap/internal/download"
	"github.com/okonechnikov/chromesnap/internal/install"
	"github.com/okonechnikov/chromesnap/internal/lock"
	"github.com/okonechnikov/chromesnap/internal/logger"
	catalogrepo "github.com/okonechnikov/chromesnap/internal/repository/catalog"
	registryrepo "github.com/okonechnikov/chromesnap/internal/repository/registry"
)

// Install resolves query against the catalog, downloads the matching
// archive and installs it. The whole operation runs under the
// cross-process lock. Installing an already-installed build is a no-op
// returning the existing record.
func (s *Service) Install(ctx context.Context, query string) (*registryrepo.Record, error) {
	ctx = logger.WithKV(ctx, "query", query)

	var result *registryrepo.Record

	err := lock.WithScope(ctx, s.cfg.BaseDir, s.lockOptions(), func(ctx context.Context) error {
		record, err := s.installLocked(ctx, query)
		if err != nil {
			return err
		}

		result = record

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// installLocked performs the install sequence; the caller holds the lock.
func (s *Service) installLocked(ctx context.Context, query string) (*registryrepo.Record, error) {
	entries, err := s.loadOrBuildCatalog(ctx)
	if err != nil {
		return nil, err
	}

	entry := catalog.Resolve(query, entries)
	if entry == nil {
		return nil, fmt.Errorf("resolve %q: %w", query, ErrBuildNotFound)
	}

	key := entry.InstallKey()
	ctx = logger.WithKV(ctx, "build", key)

	if record, getErr := s.installs.Get(ctx, key); getErr == nil {
		logger.InfoKV(ctx, "Build is already installed", "path", record.Path)

		return record, nil
	} else if !errors.Is(getErr, registryrepo.ErrNotFound) {
		return nil, getErr
	}

	archivePath, expectedSize, err := s.downloadArchive(ctx, entry)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = os.Remove(archivePath)
	}()

	if !download.ValidateSize(archivePath, expectedSize) {
		return nil, fmt.Errorf("validate %s: %w", filepath.Base(archivePath), ErrSizeMismatch)
	}

	finalPath := s.cfg.InstallPath(key)
	if err = s.installArchive(ctx, archivePath, finalPath); err != nil {
		return nil, err
	}

	record, err := s.registerInstall(ctx, key, entry.Revision, finalPath)
	if err != nil {
		// The published build without a registry record would be
		// invisible to uninstall; take it back out.
		_ = os.RemoveAll(finalPath)

		return nil, err
	}

	logger.InfoKV(ctx, "Build installed", "path", record.Path, "size", record.Size)

	return record, nil
}

// downloadArchive fetches the artifact metadata and streams the archive
// into the downloads directory, retrying transient failures. It returns
// the local archive path and the declared size.
func (s *Service) downloadArchive(ctx context.Context, entry *catalog.Entry) (string, int64, error) {
	artifact, err := s.remote.Artifact(ctx, entry.Revision)
	if err != nil {
		return "", 0, fmt.Errorf("fetch artifact metadata: %w", err)
	}

	if artifact == nil {
		return "", 0, fmt.Errorf("revision %s: %w", entry.Revision, ErrArchiveUnavailable)
	}

	expectedSize, err := artifact.SizeBytes()
	if err != nil {
		return "", 0, err
	}

	archivePath := filepath.Join(s.cfg.DownloadsDir(), entry.Revision+"-"+s.plat.ArchiveName)

	logger.InfoKV(ctx, "Downloading archive",
		"url", artifact.MediaLink, "size", expectedSize)

	_, err = download.Retry(ctx, s.retryConfig(), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, download.Fetch(ctx, s.httpClient, artifact.MediaLink, archivePath, s.onProgress)
	})
	if err != nil {
		// A failed transfer may leave a partial file behind.
		_ = os.Remove(archivePath)

		return "", 0, fmt.Errorf("download archive: %w", err)
	}

	return archivePath, expectedSize, nil
}

// installArchive extracts the archive inside a temporary directory and
// publishes the bundle found there at finalPath.
func (s *Service) installArchive(ctx context.Context, archivePath, finalPath string) error {
	logger.InfoKV(ctx, "Extracting archive", "archive", archivePath)

	err := install.Atomically(ctx, func(tempDir string) (string, error) {
		if extractErr := s.extractor.Extract(ctx, archivePath, tempDir); extractErr != nil {
			return "", fmt.Errorf("extract archive: %w", extractErr)
		}

		bundle := filepath.Join(tempDir, s.plat.BundleDir)
		if _, statErr := os.Stat(bundle); statErr != nil {
			return "", fmt.Errorf("locate bundle %s: %w", s.plat.BundleDir, statErr)
		}

		return bundle, nil
	}, finalPath, s.cfg.DownloadsDir())
	if err != nil {
		return fmt.Errorf("publish install: %w", err)
	}

	return nil
}

// registerInstall verifies the published bundle and records it in the
// installed registry.
func (s *Service) registerInstall(ctx context.Context, key, revision, finalPath string) (*registryrepo.Record, error) {
	ok, err := install.VerifyBundle(finalPath, s.plat)
	if err != nil {
		return nil, fmt.Errorf("verify bundle: %w", err)
	}

	if !ok {
		return nil, fmt.Errorf("verify %s: %w", finalPath, ErrBundleLayout)
	}

	size, err := install.DirectorySize(finalPath)
	if err != nil {
		return nil, fmt.Errorf("measure install: %w", err)
	}

	record := registryrepo.Record{
		Revision:    revision,
		Path:        finalPath,
		InstalledAt: time.Now().UTC(),
		Size:        size,
	}

	if err = s.installs.Put(ctx, key, record); err != nil {
		return nil, fmt.Errorf("update registry: %w", err)
	}

	return &record, nil
}

// loadOrBuildCatalog returns the persisted catalog, building and
// persisting a fresh one when none exists yet.
func (s *Service) loadOrBuildCatalog(ctx context.Context) (catalog.Catalog, error) {
	entries, err := s.catalogs.Load(ctx)
	if err == nil {
		return entries, nil
	}

	if !errors.Is(err, catalogrepo.ErrNotFound) {
		return nil, err
	}

	logger.Info(ctx, "No catalog yet, building one")

	return s.rebuildCatalog(ctx)
}
