package hfrsync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/moh-tz/hfrsync/internal/fetcher"
	"github.com/moh-tz/hfrsync/internal/importer"
	"github.com/moh-tz/hfrsync/internal/sources/hamlets"
	"github.com/moh-tz/hfrsync/internal/transport"
	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/hfr"
	"github.com/moh-tz/hfrsync/pkg/index"
	"github.com/moh-tz/hfrsync/pkg/logging"
	"github.com/moh-tz/hfrsync/pkg/reconciler"
	"github.com/moh-tz/hfrsync/pkg/sync"
)

// Sync lists the registry, then runs the facility feed, the hierarchy feed
// and the hamlet CSV in that order. Runs on the same Client are serialized.
//
// A feed that is abandoned or has failing records is recorded in its
// FeedResult and the run moves on to the next feed. Only a failure to list
// the registry, invalid options or cancellation end the run with an error.
func (c *client) Sync(ctx context.Context, opts ...sync.Option) (*sync.Result, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}

	// Step 1: Parse and validate options
	options := sync.Defaults().Apply(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Step 2: Setup context with timeout
	var cancel context.CancelFunc
	if options.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
	} else {
		cancel = func() {}
	}
	defer cancel()

	// Step 3: Tag every log line with the run id
	result := &sync.Result{RunID: uuid.NewString(), Started: time.Now()}
	ctx = logging.WithRunID(ctx, result.RunID)
	logger := logging.FromContext(ctx)
	logger.Info().Strs("feeds", selected(options)).Msg("Sync started")

	// Step 4: Build the index from the full registry listing
	idx, dups, err := c.Index(ctx)
	if err != nil {
		return nil, err
	}
	result.Locations = idx.Len()
	result.Duplicates = len(dups)

	// Step 5: Build the reconciler shared by every feed
	base, err := c.reconciler(idx)
	if err != nil {
		return nil, err
	}
	reportDuplicates(ctx, base, dups)

	// Step 6: Run the feeds in order
	for _, feed := range sync.AllFeeds() {
		fr := sync.NewFeedResult(feed)
		result.Feeds = append(result.Feeds, fr)
		if !options.Runs(feed) {
			fr.Skipped = true
			continue
		}

		feedCtx := logging.WithFeed(ctx, feed)
		r := base.WithRecorder(c.recorder(fr))
		start := time.Now()
		switch feed {
		case sync.FeedFacility:
			f := importer.NewFacility(r)
			c.runPaged(feedCtx, fr, c.feeds.Facilities, f.ProcessPage, options.FacilityAttempts, options)
		case sync.FeedHierarchy:
			a := importer.NewAdmin(r, c.config.countryCode)
			c.runPaged(feedCtx, fr, c.feeds.Hierarchy, a.ProcessPage, options.HierarchyAttempts, options)
		case sync.FeedHamlet:
			runHamlets(feedCtx, fr, importer.NewHamlet(r), options.HamletPath)
			fr.Duration = time.Since(start)
		}

		logger.Info().
			Str("feed", feed).
			Int("pages", fr.Pages).
			Int("records", fr.Records).
			Int("writes", fr.Changes.Total()).
			Int("anomalies", len(fr.Anomalies)).
			Int("errors", len(fr.Errors)).
			Bool("aborted", fr.Aborted).
			Msg("Feed finished")

		if err := ctx.Err(); err != nil {
			result.Finished = time.Now()
			return result, err
		}
	}

	// Step 7: Summarize
	result.Finished = time.Now()
	changes := result.Changes()
	logger.Info().
		Int("created", changes.Created).
		Int("renamed", changes.Renamed).
		Int("reparented", changes.Reparented).
		Int("realigned", changes.Realigned).
		Int("retagged", changes.Retagged).
		Int("anomalies", result.Anomalies()).
		Bool("errors", result.HasErrors()).
		Dur("duration", result.Duration()).
		Msg("sync completed")

	return result, nil
}

// ============================================================================
// Helper Methods for Sync
// ============================================================================

func (c *client) reconciler(idx *index.Index) (*reconciler.Reconciler, error) {
	return reconciler.New(idx, c.registry,
		reconciler.WithAttributeTypes(c.config.attributeTypes),
		reconciler.WithTagMismatchPolicy(c.config.policy),
		reconciler.WithRecorder(c.recorder(nil)),
	)
}

// recorder fans out to the feed result, the configured recorders and the hooks.
func (c *client) recorder(fr *sync.FeedResult) reconciler.Recorder {
	m := reconciler.MultiRecorder{c.hooks}
	m = append(m, c.config.recorders...)
	if fr != nil {
		m = append(m, fr)
	}
	return m
}

func reportDuplicates(ctx context.Context, r *reconciler.Reconciler, dups []index.Duplicate) {
	for _, d := range dups {
		r.Report(ctx, reconciler.Anomaly{
			Kind:       reconciler.AnomalyDuplicateCode,
			Code:       d.Code,
			Name:       d.Rejected.Name,
			Tag:        d.Rejected.Level(),
			LocationID: d.Rejected.ID,
			Detail:     fmt.Sprintf("code already held by %s", d.Kept.ID),
		}, "Registry holds two locations with the same code")
	}
}

// runPaged walks a paginated feed into fr. An abandoned feed is recorded,
// never returned.
func (c *client) runPaged(ctx context.Context, fr *sync.FeedResult, fetch fetcher.PageFunc,
	process func(context.Context, *hfr.Page) []error, attempts int, options *sync.Options) {
	stats, err := fetcher.FetchAll(ctx, fetch,
		func(ctx context.Context, p *hfr.Page) {
			fr.AddErrors(process(ctx, p)...)
		},
		options.StartPage,
		fetcher.Options{
			Feed: fr.Feed,
			Policy: transport.Policy{
				Attempts:   attempts,
				Backoff:    options.Backoff,
				MaxBackoff: options.MaxBackoff,
			},
		},
	)

	fr.Pages = stats.Pages
	fr.Records = stats.Records
	fr.Duration = stats.Duration
	if err != nil {
		fr.Aborted = errors.IsFetchAborted(err)
		fr.AddErrors(err)
		logging.FromContext(ctx).Error().Err(err).Msg("Feed abandoned")
	}
}

func runHamlets(ctx context.Context, fr *sync.FeedResult, h *importer.Hamlet, path string) {
	logger := logging.FromContext(ctx)
	if path == "" {
		fr.Skipped = true
		logger.Info().Msg("No hamlet CSV configured, skipping")
		return
	}

	rows, rowErrs, err := hamlets.Load(path)
	if err != nil {
		fr.Aborted = true
		fr.AddErrors(err)
		logger.Error().Err(err).Str("path", path).Msg("Failed to open hamlet CSV")
		return
	}
	for _, rowErr := range rowErrs {
		logger.Warn().Err(rowErr).Msg("Skipping hamlet row")
	}

	fr.Pages = 1
	fr.Records = len(rows)
	fr.AddErrors(rowErrs...)
	fr.AddErrors(h.Import(ctx, rows)...)
}

func selected(options *sync.Options) []string {
	var feeds []string
	for _, f := range sync.AllFeeds() {
		if options.Runs(f) {
			feeds = append(feeds, f)
		}
	}
	return feeds
}
