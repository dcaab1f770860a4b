package importer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"sportdash/internal/activity"
	"sportdash/internal/storage"
	"sportdash/internal/strava"
)

// StravaJSONImporter handles activities saved from the API, either as a JSON
// array or as one object per line.
type StravaJSONImporter struct {
	opts Options
}

// Name returns the importer name.
func (s *StravaJSONImporter) Name() string {
	return FormatStravaJSON
}

// Import converts the activities to rows and appends the unseen ones.
func (s *StravaJSONImporter) Import(reader io.Reader, st *storage.Storage) (*ImportResult, error) {
	rows, err := s.parseRows(reader)
	if err != nil {
		return nil, err
	}
	kept, _, errs := readable(s.opts.Normalizer, rows)
	return store(kept, errs, st)
}

// Preview returns the activities that would be imported.
func (s *StravaJSONImporter) Preview(reader io.Reader) ([]PreviewActivity, error) {
	rows, err := s.parseRows(reader)
	if err != nil {
		return nil, err
	}
	_, records, _ := readable(s.opts.Normalizer, rows)
	return preview(records, s.opts.Categorizer), nil
}

func (s *StravaJSONImporter) parseRows(reader io.Reader) ([]activity.RawRow, error) {
	activities, err := decodeActivities(reader)
	if err != nil {
		return nil, err
	}
	rows := make([]activity.RawRow, 0, len(activities))
	for _, a := range activities {
		rows = append(rows, strava.ToRawRow(a, s.opts.Location))
	}
	return rows, nil
}

func decodeActivities(reader io.Reader) ([]strava.Activity, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []strava.Activity{}, nil
	}

	if data[0] == '[' {
		var activities []strava.Activity
		if err := json.Unmarshal(data, &activities); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return activities, nil
	}

	var activities []strava.Activity
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var a strava.Activity
		if err := json.Unmarshal(text, &a); err != nil {
			return nil, fmt.Errorf("failed to parse JSON line %d: %w", line, err)
		}
		activities = append(activities, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return activities, nil
}
