package importer

import (
	"fmt"
	"io"

	"sportdash/internal/activity"
	"sportdash/internal/storage"
)

// StravaCSVImporter handles the activities.csv file of a Strava bulk export,
// in any export language the field aliases know.
type StravaCSVImporter struct {
	opts Options
}

// Name returns the importer name.
func (s *StravaCSVImporter) Name() string {
	return FormatStravaCSV
}

// Import reads the export and appends unseen activities to storage.
func (s *StravaCSVImporter) Import(reader io.Reader, st *storage.Storage) (*ImportResult, error) {
	rows, err := s.parseRows(reader)
	if err != nil {
		return nil, err
	}
	kept, _, errs := readable(s.opts.Normalizer, rows)
	return store(kept, errs, st)
}

// Preview returns the activities that would be imported.
func (s *StravaCSVImporter) Preview(reader io.Reader) ([]PreviewActivity, error) {
	rows, err := s.parseRows(reader)
	if err != nil {
		return nil, err
	}
	_, records, _ := readable(s.opts.Normalizer, rows)
	return preview(records, s.opts.Categorizer), nil
}

func (s *StravaCSVImporter) parseRows(reader io.Reader) ([]activity.RawRow, error) {
	table, err := storage.ParseActivities(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if err := activity.ValidateHeader(table.Header); err != nil {
		return nil, err
	}
	rows := make([]activity.RawRow, 0, table.Len())
	for _, row := range table.Rows {
		rows = append(rows, canonicalRow(table.Header, row))
	}
	return rows, nil
}

// canonicalRow copies row and adds every known field under the stored
// column name, so an English export lines up with the Dutch layout.
func canonicalRow(header []string, row activity.RawRow) activity.RawRow {
	out := make(activity.RawRow, len(row)+len(storage.DefaultHeader))
	for k, v := range row {
		out[k] = v
	}
	for _, f := range activity.Fields() {
		src, ok := activity.ColumnFor(header, f)
		if !ok {
			continue
		}
		dst, ok := activity.ColumnFor(storage.DefaultHeader, f)
		if !ok || dst == src {
			continue
		}
		if _, taken := out[dst]; !taken {
			out[dst] = row[src]
		}
	}
	return out
}
