// Package importer loads activity files exported from Strava into the
// activity log.
package importer

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"sportdash/internal/activity"
	"sportdash/internal/storage"
)

// ErrUnknownFormat is returned for an import format that is not supported.
var ErrUnknownFormat = errors.New("unknown import format")

const (
	FormatStravaCSV  = "strava-csv"
	FormatStravaJSON = "strava-json"
)

// ImportResult contains statistics about an import operation.
type ImportResult struct {
	Imported int      // Number of rows added to the activity log
	Skipped  int      // Rows already present
	Errors   []string // Rows that could not be read
}

// PreviewActivity is an activity as it would be imported.
type PreviewActivity struct {
	ID         string
	Date       time.Time
	Type       string
	Name       string
	DistanceKm float64
	Category   activity.Category
}

// Importer defines the interface for import implementations.
type Importer interface {
	// Import reads activities from the reader and adds new ones to storage.
	Import(reader io.Reader, store *storage.Storage) (*ImportResult, error)

	// Preview reads activities from the reader without importing.
	Preview(reader io.Reader) ([]PreviewActivity, error)

	// Name returns the importer name (e.g., "strava-csv").
	Name() string
}

// Options are shared by all importers. Nil fields use defaults.
type Options struct {
	Normalizer  *activity.Normalizer
	Categorizer *activity.Categorizer
	Location    *time.Location
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Normalizer == nil {
		o.Normalizer = activity.NewNormalizer(activity.NormalizerOptions{Location: o.Location}, nil)
	}
	if o.Categorizer == nil {
		o.Categorizer = activity.NewCategorizer()
	}
	return o
}

// GetImporter returns the importer for format.
func GetImporter(format string, opts Options) (Importer, error) {
	opts = opts.withDefaults()
	switch strings.ToLower(format) {
	case FormatStravaCSV, "csv":
		return &StravaCSVImporter{opts: opts}, nil
	case FormatStravaJSON, "json":
		return &StravaJSONImporter{opts: opts}, nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFormat, format, strings.Join(SupportedFormats(), ", "))
	}
}

// SupportedFormats returns the list of supported import formats.
func SupportedFormats() []string {
	return []string{FormatStravaCSV, FormatStravaJSON}
}

// DetectFormat guesses the format from a file name.
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatStravaCSV, nil
	case ".json", ".ndjson", ".jsonl":
		return FormatStravaJSON, nil
	default:
		return "", fmt.Errorf("%w: cannot detect format of %s", ErrUnknownFormat, filepath.Base(path))
	}
}

// readable keeps the rows the normalizer accepts and reports the others.
func readable(n *activity.Normalizer, rows []activity.RawRow) ([]activity.RawRow, []activity.Record, []string) {
	kept := make([]activity.RawRow, 0, len(rows))
	records := make([]activity.Record, 0, len(rows))
	var errs []string
	for i, row := range rows {
		res := n.Normalize([]activity.RawRow{row})
		if len(res.Records) == 0 {
			for _, issue := range res.IssueList() {
				errs = append(errs, fmt.Sprintf("item %d: %s", i+1, issue))
			}
			continue
		}
		kept = append(kept, row)
		records = append(records, res.Records[0])
	}
	return kept, records, errs
}

func store(rows []activity.RawRow, errs []string, st *storage.Storage) (*ImportResult, error) {
	added, err := st.AppendRows(rows, "import")
	if err != nil {
		return nil, err
	}
	return &ImportResult{
		Imported: added,
		Skipped:  len(rows) - added,
		Errors:   errs,
	}, nil
}

func preview(records []activity.Record, c *activity.Categorizer) []PreviewActivity {
	out := make([]PreviewActivity, 0, len(records))
	for _, r := range c.Apply(records) {
		out = append(out, PreviewActivity{
			ID:         r.ID,
			Date:       r.Date,
			Type:       r.RawType,
			Name:       r.RawName,
			DistanceKm: r.DistanceKm,
			Category:   r.Category,
		})
	}
	return out
}
