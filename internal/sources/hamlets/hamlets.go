// Package hamlets reads the hamlet CSV extract.
package hamlets

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/moh-tz/hfrsync/pkg/errors"
)

// MinColumns is the fewest columns a data row may have.
const MinColumns = 9

// Row is one hamlet with the names and codes of its ancestors.
type Row struct {
	Line        int
	RegionCode  string
	Region      string
	CouncilCode string
	Council     string
	WardCode    string
	Ward        string
	VillageCode string
	Village     string
	HamletCode  string
	Hamlet      string
}

// Column positions. In the ministry extract the header reads
// region_code,region,council_code,council,ward_code,ward,street_code,street,
// village_code,Village,hamlet_code,hamlet: the street (mtaa) columns carry the
// village level the admin feed creates, and the village_code/Village columns
// carry the hamlet. Trailing columns are ignored.
const (
	colRegionCode = iota
	colRegion
	colCouncilCode
	colCouncil
	colWardCode
	colWard
	colVillageCode
	colVillage
	colHamletCode
	colHamlet
)

func column(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// Read parses the CSV. The first row is a header and is skipped; columns are
// read by position whatever it names. Rows with fewer than
// MinColumns columns and rows the CSV reader rejects are reported as errors
// and skipped; reading continues.
func Read(r io.Reader) ([]Row, []error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	_, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, []error{errors.NewParseError("csv", "header", err.Error(), err)}
	}

	var (
		rows []Row
		errs []error
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				errs = append(errs, &errors.ParseError{Format: "csv", Source: "hamlets", Line: pe.Line, Message: pe.Err.Error(), Err: err})
				continue
			}
			errs = append(errs, errors.WrapIO("read", "hamlets", err))
			break
		}
		line, _ := cr.FieldPos(0)
		if len(rec) < MinColumns {
			errs = append(errs, &errors.ParseError{
				Format:  "csv",
				Source:  "hamlets",
				Line:    line,
				Message: fmt.Sprintf("expected at least %d columns, got %d", MinColumns, len(rec)),
				Err:     errors.ErrInvalidInput,
			})
			continue
		}
		rows = append(rows, Row{
			Line:        line,
			RegionCode:  column(rec, colRegionCode),
			Region:      column(rec, colRegion),
			CouncilCode: column(rec, colCouncilCode),
			Council:     column(rec, colCouncil),
			WardCode:    column(rec, colWardCode),
			Ward:        column(rec, colWard),
			VillageCode: column(rec, colVillageCode),
			Village:     column(rec, colVillage),
			HamletCode:  column(rec, colHamletCode),
			Hamlet:      column(rec, colHamlet),
		})
	}
	return rows, errs
}

// Load opens path and reads it. A missing file is reported as an IOError
// matching ErrNotFound.
func Load(path string) ([]Row, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.NewIOError("open", path, errors.NewNotFoundError("file", path))
		}
		return nil, nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	rows, errs := Read(f)
	return rows, errs, nil
}
