// Package fetcher walks a paginated upstream feed one page at a time.
package fetcher

import (
	"context"
	"time"

	"github.com/moh-tz/hfrsync/internal/transport"
	"github.com/moh-tz/hfrsync/pkg/constants"
	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/hfr"
	"github.com/moh-tz/hfrsync/pkg/logging"
)

// PageFunc fetches a single page.
type PageFunc func(ctx context.Context, page int) (*hfr.Page, error)

// ProcessFunc handles the records of one page. It runs before the next
// page is requested.
type ProcessFunc func(ctx context.Context, page *hfr.Page)

// Options configures FetchAll.
type Options struct {
	// Feed names the feed in logs and errors.
	Feed string
	// Policy bounds the retries of each page.
	Policy transport.Policy
}

// Stats summarizes a walk over a feed.
type Stats struct {
	Pages     int
	Records   int
	PageCount int
	LastPage  int
	Retries   int
	Duration  time.Duration
}

// FetchAll fetches pages from startPage until the current page passes the
// feed's page count. A page that keeps failing is retried up to the policy's
// ceiling; after that the walk stops and a FetchError is returned along with
// the stats gathered so far.
func FetchAll(ctx context.Context, fetch PageFunc, process ProcessFunc, startPage int, opts Options) (Stats, error) {
	if startPage < constants.DefaultStartPage {
		startPage = constants.DefaultStartPage
	}
	if opts.Policy.Attempts < 1 {
		opts.Policy.Attempts = 1
	}

	ctx = logging.WithFeed(ctx, opts.Feed)
	logger := logging.FromContext(ctx)

	var stats Stats
	start := time.Now()

	page := startPage
	for {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}

		pageCtx := logging.WithPage(ctx, page)
		logger.Info().Int("page", page).Msg("Fetching feed page")

		var p *hfr.Page
		attempts, err := transport.Retry(pageCtx, opts.Policy,
			func(ctx context.Context) error {
				got, err := fetch(ctx, page)
				if err != nil {
					return err
				}
				if got == nil {
					return errors.New("empty page")
				}
				p = got
				return nil
			},
			func(attempt int, err error, next time.Duration) {
				logger.Error().Err(err).
					Int("page", page).
					Int("attempt", attempt).
					Int("max_attempts", opts.Policy.Attempts).
					Dur("retry_in", next).
					Msg("Failed to fetch feed page")
			},
		)
		stats.Retries += attempts - 1
		if err != nil {
			logger.Error().Int("page", page).Int("attempts", attempts).Msg("Max attempts reached, aborting feed")
			stats.Duration = time.Since(start)
			return stats, &errors.FetchError{Feed: opts.Feed, Page: page, Attempts: attempts, Err: err}
		}

		stats.Pages++
		stats.Records += len(p.Data)
		stats.PageCount = p.MetaData.PageCount
		stats.LastPage = page

		process(pageCtx, p)

		current := p.MetaData.CurrentPage
		if current < page {
			current = page
		}
		if current+1 > p.MetaData.PageCount {
			break
		}
		page = current + 1
	}

	stats.Duration = time.Since(start)
	logger.Info().
		Int("pages", stats.Pages).
		Int("records", stats.Records).
		Dur("duration", stats.Duration).
		Msg("Feed complete")
	return stats, nil
}
