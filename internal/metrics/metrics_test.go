package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/locations"
	"github.com/moh-tz/hfrsync/pkg/reconciler"
)

func TestRecorderCounters(t *testing.T) {
	m := New()
	ward := &locations.Location{ID: "loc-1", Name: "Moshi", Tags: []locations.Tag{"ward"}}
	village := &locations.Location{ID: "loc-2", Name: "Kiboriloni", Tags: []locations.Tag{locations.TagVillage}}

	m.Created(ward)
	m.Created(village)
	m.Created(village)
	m.Renamed(ward, "Old")
	m.Reparented(village, "loc-0")
	m.Realigned(village)
	m.Retagged(ward, locations.TagCouncil)
	m.Created(nil)
	m.Anomaly(reconciler.Anomaly{Kind: reconciler.AnomalyOrphan})
	m.Anomaly(reconciler.Anomaly{Kind: reconciler.AnomalyOrphan})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.created.WithLabelValues("Ward")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.created.WithLabelValues("Village")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.created.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.renamed.WithLabelValues("Ward")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reparented.WithLabelValues("Village")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.realigned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.retagged.WithLabelValues("Council")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.anomalies.WithLabelValues("orphan")))
}

func TestFeedFinished(t *testing.T) {
	m := New()

	m.FeedFinished("facility", 3, 2, true, 1500*time.Millisecond)
	m.FeedFinished("facility", 1, 0, false, 2*time.Second)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.pages.WithLabelValues("facility")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.recordErrors.WithLabelValues("facility")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aborted.WithLabelValues("facility")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.feedDuration.WithLabelValues("facility")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Created(&locations.Location{Tags: []locations.Tag{locations.TagRegion}})
	m.RunSucceeded(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "hfrsync.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `hfrsync_locations_created_total{level="Region"} 1`)
	assert.Contains(t, out, "hfrsync_last_success_timestamp_seconds 1.7e+09")
	assert.True(t, strings.HasPrefix(out, "# HELP"))
}

func TestWriteTextfileErrors(t *testing.T) {
	m := New()

	err := m.WriteTextfile("")
	assert.True(t, errors.IsValidationError(err))

	err = m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "hfrsync.prom"))
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}
