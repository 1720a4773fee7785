package service

import (
	"context"
	"fmt"
	"time"

	"github.com/latoulicious/pokedex/pkg/logging"
	"github.com/latoulicious/pokedex/pkg/pokedex"
)

type PopulateService struct {
	listing pokedex.ListingServiceInterface
	logger  logging.Logger
}

var _ pokedex.PopulateServiceInterface = (*PopulateService)(nil)

func NewPopulateService(s *pokedex.Service, listing pokedex.ListingServiceInterface) pokedex.PopulateServiceInterface {
	if listing == nil {
		listing = NewListingService(s, nil)
	}
	return &PopulateService{
		listing: listing,
		logger:  s.LoggerFactory().CreateLogger("populator"),
	}
}

// Populate walks the upstream listing from the first page, syncing up to
// pages pages of pageSize entries. A failing page is logged and skipped; the
// walk stops early when the listing has no next page or ctx is done. Page
// sizes outside the listing's range are clamped so offsets never skip entries.
// A pass where every attempted page failed returns an error.
func (ps *PopulateService) Populate(ctx context.Context, pageSize, pages int) (*pokedex.PopulateResult, error) {
	start := time.Now()
	result := &pokedex.PopulateResult{}
	pageSize = clampLimit(pageSize)

	ps.logger.Info("Starting catalog population", map[string]interface{}{
		"page_size": pageSize,
		"pages":     pages,
		"stage":     "start",
	})

	var lastErr error
	for page := 0; page < pages; page++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		offset := page * pageSize
		synced, err := ps.listing.SyncPage(ctx, pageSize, offset)
		if err != nil {
			ps.logger.Error("Failed to populate page", err, map[string]interface{}{
				"offset": offset,
				"stage":  "page_failed",
			})
			result.FailedPages++
			lastErr = err
			continue
		}

		result.Pages++
		result.Entries += len(synced.Results)
		if synced.Next == nil {
			break
		}
	}

	result.Duration = time.Since(start)

	ps.logger.Info("Catalog population completed", map[string]interface{}{
		"pages":        result.Pages,
		"failed_pages": result.FailedPages,
		"entries":      result.Entries,
		"duration":     result.Duration.String(),
		"stage":        "completed",
	})

	if result.Pages == 0 && result.FailedPages > 0 {
		return result, fmt.Errorf("all %d attempted pages failed: %w", result.FailedPages, lastErr)
	}
	return result, nil
}
