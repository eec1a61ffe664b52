package importer

import (
	"context"
	"strings"

	"github.com/moh-tz/hfrsync/internal/sources/hamlets"
	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/locations"
	"github.com/moh-tz/hfrsync/pkg/logging"
	"github.com/moh-tz/hfrsync/pkg/names"
	"github.com/moh-tz/hfrsync/pkg/reconciler"
)

// FeedHamlet names the hamlet CSV in results and logs.
const FeedHamlet = "hamlet"

// Hamlet imports hamlet rows beneath villages already in the index.
type Hamlet struct {
	r *reconciler.Reconciler
}

// NewHamlet returns a hamlet importer.
func NewHamlet(r *reconciler.Reconciler) *Hamlet {
	return &Hamlet{r: r}
}

// Import resolves each row's village by code and ensures the hamlet under
// it. Rows whose village is unknown or whose hamlet name is blank are
// reported as anomalies and skipped.
func (h *Hamlet) Import(ctx context.Context, rows []hamlets.Row) []error {
	logger := logging.FromContext(ctx)

	var errs []error
	for i, row := range rows {
		if strings.TrimSpace(row.Hamlet) == "" {
			h.r.Report(ctx, reconciler.Anomaly{
				Kind: reconciler.AnomalyMissingName,
				Code: row.HamletCode,
				Tag:  locations.TagHamlet,
			}, "Skipping hamlet row without a name")
			continue
		}
		village, ok := h.r.Resolve(row.VillageCode)
		if !ok {
			h.r.Report(ctx, reconciler.Anomaly{
				Kind:   reconciler.AnomalyMissingParent,
				Code:   row.HamletCode,
				Name:   row.Hamlet,
				Tag:    locations.TagHamlet,
				Detail: "village " + row.VillageCode + " not found",
			}, "Skipping hamlet whose village is not in the registry")
			continue
		}

		_, err := h.r.Ensure(ctx, village,
			names.Compose(row.Hamlet, row.Village, row.Ward),
			row.HamletCode, locations.TagHamlet)
		if err != nil {
			logger.Error().Err(err).Int("line", row.Line).Str("code", row.HamletCode).Msg("Failed to import hamlet")
			errs = append(errs, &errors.RecordError{Feed: FeedHamlet, Page: 1, Index: i, Code: row.HamletCode, Err: err})
		}
	}
	return errs
}
