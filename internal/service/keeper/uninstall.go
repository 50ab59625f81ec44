package keeper

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/okonechnikov/chromesnap/internal/catalog"
	"github.com/okonechnikov/chromesnap/internal/lock"
	"github.com/okonechnikov/chromesnap/internal/logger"
	registryrepo "github.com/okonechnikov/chromesnap/internal/repository/registry"
)

// Uninstall removes an installed build and its registry record, under
// the cross-process lock.
func (s *Service) Uninstall(ctx context.Context, query string) error {
	ctx = logger.WithKV(ctx, "query", query)

	return lock.WithScope(ctx, s.cfg.BaseDir, s.lockOptions(), func(ctx context.Context) error {
		key, record, err := s.findInstalled(ctx, query)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Removing installed build", "build", key, "path", record.Path)

		if err = os.RemoveAll(record.Path); err != nil {
			return fmt.Errorf("remove install: %w", err)
		}

		if err = s.installs.Delete(ctx, key); err != nil {
			return fmt.Errorf("update registry: %w", err)
		}

		return nil
	})
}

// Installed returns all registry records keyed by install key.
func (s *Service) Installed(ctx context.Context) (map[string]registryrepo.Record, error) {
	return s.installs.Load(ctx)
}

// findInstalled maps a query to a registry record: first as a literal
// install key, then by resolving it against the catalog.
func (s *Service) findInstalled(ctx context.Context, query string) (string, *registryrepo.Record, error) {
	record, err := s.installs.Get(ctx, query)
	if err == nil {
		return query, record, nil
	}

	if !errors.Is(err, registryrepo.ErrNotFound) {
		return "", nil, err
	}

	entries, catErr := s.loadOrBuildCatalog(ctx)
	if catErr != nil {
		return "", nil, catErr
	}

	entry := catalog.Resolve(query, entries)
	if entry == nil {
		return "", nil, err
	}

	key := entry.InstallKey()

	record, err = s.installs.Get(ctx, key)
	if err != nil {
		return "", nil, err
	}

	return key, record, nil
}
