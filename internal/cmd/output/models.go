package output

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/moh-tz/hfrsync/pkg/locations"
	"github.com/moh-tz/hfrsync/pkg/sync"
)

// ResultToTableData lays out one row per feed.
func ResultToTableData(result *sync.Result) Data {
	data := Data{
		Headers: []string{
			"Feed", "Pages", "Records", "Created", "Renamed", "Reparented",
			"Realigned", "Retagged", "Anomalies", "Errors", "Status",
		},
		RightAligned: []int{1, 2, 3, 4, 5, 6, 7, 8, 9},
	}
	for _, f := range result.Feeds {
		data.Rows = append(data.Rows, []string{
			f.Feed,
			strconv.Itoa(f.Pages),
			strconv.Itoa(f.Records),
			strconv.Itoa(f.Changes.Created),
			strconv.Itoa(f.Changes.Renamed),
			strconv.Itoa(f.Changes.Reparented),
			strconv.Itoa(f.Changes.Realigned),
			strconv.Itoa(f.Changes.Retagged),
			strconv.Itoa(len(f.Anomalies)),
			strconv.Itoa(len(f.Errors)),
			status(f),
		})
	}
	return data
}

func status(f *sync.FeedResult) string {
	switch {
	case f.Skipped:
		return "skipped"
	case f.Aborted:
		return "aborted"
	case f.HasErrors():
		return "errors"
	default:
		return "ok"
	}
}

// LocationsToTableData lays out one row per location, ordered by name.
func LocationsToTableData(locs []*locations.Location) Data {
	sorted := append([]*locations.Location(nil), locs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	data := Data{Headers: []string{"Name", "Level", "Code", "ID", "Parent"}}
	for _, l := range sorted {
		tags := make([]string, len(l.Tags))
		for i, t := range l.Tags {
			tags[i] = t.String()
		}
		data.Rows = append(data.Rows, []string{l.Name, strings.Join(tags, ","), l.Code(), l.ID, l.ParentID})
	}
	return data
}

// FormatResult writes a sync result in format.
func FormatResult(w io.Writer, result *sync.Result, format Format) error {
	var data any = result
	if format == FormatTable || format == "" {
		data = ResultToTableData(result)
	}
	return NewFormatter(format).Format(w, data)
}

// FormatLocations writes locations in format.
func FormatLocations(w io.Writer, locs []*locations.Location, format Format) error {
	var data any = locs
	if format == FormatTable || format == "" {
		data = LocationsToTableData(locs)
	}
	return NewFormatter(format).Format(w, data)
}
