package keeper

import (
	"context"
	"fmt"

	"github.com/okonechnikov/chromesnap/internal/catalog"
	"github.com/okonechnikov/chromesnap/internal/logger"
)

// RefreshCatalog rebuilds the catalog from the remote listings and
// replaces the persisted one. On a failed build the previous catalog
// stays untouched.
func (s *Service) RefreshCatalog(ctx context.Context) (catalog.Catalog, error) {
	return s.rebuildCatalog(logger.WithName(ctx, "catalog"))
}

// rebuildCatalog fetches both remote listings, merges them and persists
// the result.
func (s *Service) rebuildCatalog(ctx context.Context) (catalog.Catalog, error) {
	builder := catalog.NewBuilder(s.remote, s.remote, s.cfg.MaxPages)

	entries, err := builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	if err = s.catalogs.Save(ctx, entries); err != nil {
		return nil, fmt.Errorf("persist catalog: %w", err)
	}

	versioned := 0
	for _, entry := range entries {
		if entry.HasVersion {
			versioned++
		}
	}

	logger.InfoKV(ctx, "Catalog rebuilt",
		"entries", len(entries), "versioned", versioned)

	return entries, nil
}

// Available returns the persisted catalog, building one on first use.
func (s *Service) Available(ctx context.Context) (catalog.Catalog, error) {
	return s.loadOrBuildCatalog(ctx)
}
