package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sportdash/internal/activity"
	"sportdash/internal/fsutil"
)

const (
	ActivitiesFile = "activities.csv"
	StateFile      = "fetch_state.json"
)

// DataFiles lists the files owned by storage, for backup and sync.
var DataFiles = []string{ActivitiesFile, StateFile}

// DefaultHeader is the column layout of a fresh activities file. It matches
// the Dutch bulk export so exported and fetched rows can live side by side.
var DefaultHeader = []string{
	"Activiteits-ID",
	"Datum van activiteit",
	"Naam activiteit",
	"Activiteitstype",
	"Beweegtijd",
	"Verstreken tijd",
	"Afstand",
	"Totale stijging",
	"Gemiddelde snelheid",
	"Gemiddelde hartslag",
	"Uitrusting voor activiteit",
}

// SaveContext describes a save for semantic commit messages, e.g.
// "Fetch activities: 3 new".
type SaveContext struct {
	Filename  string // The file being saved (e.g., "activities.csv")
	Operation string // "fetch", "import", "restore", "update"
	ItemType  string // "activity", "state"
	ItemName  string // Human-readable detail
}

// Storage handles all file I/O operations
type Storage struct {
	dataDir           string
	onSaveWithContext func(ctx SaveContext)
	now               func() time.Time
}

const (
	dataDirPerm  os.FileMode = 0700
	dataFilePerm os.FileMode = 0600
)

// New creates a new Storage instance with the given data directory
func New(dataDir string) (*Storage, error) {
	if err := os.MkdirAll(dataDir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Storage{dataDir: dataDir, now: time.Now}
	if err := s.initFiles(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetNowFunc overrides the clock used by time-dependent storage operations.
// Passing nil resets it to time.Now.
func (s *Storage) SetNowFunc(now func() time.Time) {
	if now == nil {
		s.now = time.Now
		return
	}
	s.now = now
}

// Now returns the current time according to the storage clock.
func (s *Storage) Now() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// SetOnSaveWithContext registers a context-aware callback for git sync.
func (s *Storage) SetOnSaveWithContext(fn func(ctx SaveContext)) {
	s.onSaveWithContext = fn
}

// GetDataDir returns the path to the data directory.
func (s *Storage) GetDataDir() string {
	return s.dataDir
}

// initFiles creates the activities file and fetch state if missing.
func (s *Storage) initFiles() error {
	if !fileExists(s.path(ActivitiesFile)) {
		if err := s.SaveActivities(&ActivityTable{Header: append([]string(nil), DefaultHeader...)}); err != nil {
			return err
		}
	}
	if !fileExists(s.path(StateFile)) {
		if err := s.SaveState(&FetchState{History: []FetchRun{}}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) path(filename string) string {
	return filepath.Join(s.dataDir, filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

func (s *Storage) writeAtomic(filename string, data []byte) error {
	path := s.path(filename)

	// Keep a best-effort backup before overwriting.
	fsutil.BestEffortBackup(path, dataFilePerm)

	if err := fsutil.WriteFileAtomic(path, data, dataFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

func (s *Storage) notifySaveWithContext(ctx SaveContext) {
	if s.onSaveWithContext != nil {
		s.onSaveWithContext(ctx)
	}
}

func (s *Storage) corruptPath(filename string) string {
	return fmt.Sprintf("%s.corrupt.%s", s.path(filename), s.Now().Format("20060102-150405"))
}

// ============================================================================
// Activities
// ============================================================================

// LoadActivities reads the raw activity table. A file that cannot be parsed
// is replaced by its .bak copy when that one is readable.
func (s *Storage) LoadActivities() (*ActivityTable, error) {
	path := s.path(ActivitiesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ActivityTable{Header: append([]string(nil), DefaultHeader...)}, nil
		}
		return nil, fmt.Errorf("read %s: %w", ActivitiesFile, err)
	}

	table, perr := ParseActivities(bytes.NewReader(data))
	if perr == nil {
		return table, nil
	}

	bak, bakErr := os.ReadFile(path + ".bak")
	if bakErr == nil {
		if recovered, err := ParseActivities(bytes.NewReader(bak)); err == nil {
			_ = os.Rename(path, s.corruptPath(ActivitiesFile))
			_ = fsutil.WriteFileAtomic(path, bak, dataFilePerm)
			return recovered, fmt.Errorf("parse %s: %v (recovered from %s.bak)", ActivitiesFile, perr, ActivitiesFile)
		}
	}
	return nil, fmt.Errorf("parse %s: %w", ActivitiesFile, perr)
}

// ParseActivities reads a CSV activity table. The first row is the header;
// short rows are padded and extra cells ignored. For a repeated header the
// first non-empty cell wins.
func ParseActivities(r io.Reader) (*ActivityTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header")
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	table := &ActivityTable{Header: header, Rows: []activity.RawRow{}}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlank(rec) {
			continue
		}
		row := make(activity.RawRow, len(header))
		for i, h := range header {
			v := ""
			if i < len(rec) {
				v = rec[i]
			}
			// Bulk exports repeat some headers (distance in km, then in m).
			if prev, dup := row[h]; dup && strings.TrimSpace(prev) != "" {
				continue
			}
			row[h] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// EncodeActivities writes the table as CSV in header order.
func EncodeActivities(w io.Writer, table *ActivityTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Header); err != nil {
		return err
	}
	line := make([]string, len(table.Header))
	for _, row := range table.Rows {
		for i, h := range table.Header {
			line[i] = row[h]
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveActivities writes the table to disk.
func (s *Storage) SaveActivities(table *ActivityTable) error {
	if len(table.Header) == 0 {
		return fmt.Errorf("activities table has no header")
	}
	var buf bytes.Buffer
	if err := EncodeActivities(&buf, table); err != nil {
		return fmt.Errorf("serialize %s: %w", ActivitiesFile, err)
	}
	return s.writeAtomic(ActivitiesFile, buf.Bytes())
}

// AppendRows adds rows whose activity id is not stored yet. Rows are aligned
// to the stored header: unknown columns are dropped and missing ones left
// empty. It returns the number of rows added.
func (s *Storage) AppendRows(rows []activity.RawRow, op string) (int, error) {
	table, err := s.LoadActivities()
	if table == nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(table.Rows))
	for _, row := range table.Rows {
		if key := rowKey(table.Header, row); key != "" {
			seen[key] = struct{}{}
		}
	}

	added := 0
	for _, row := range rows {
		aligned := AlignRow(table.Header, row)
		key := rowKey(table.Header, aligned)
		if key != "" {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		table.Rows = append(table.Rows, aligned)
		added++
	}
	if added == 0 {
		return 0, nil
	}

	if err := s.SaveActivities(table); err != nil {
		return 0, err
	}
	if op == "" {
		op = "update"
	}
	s.notifySaveWithContext(SaveContext{
		Filename:  ActivitiesFile,
		Operation: op,
		ItemType:  "activity",
		ItemName:  fmt.Sprintf("%d new", added),
	})
	return added, nil
}

// AlignRow maps row onto header. Keys are matched exactly first, then by
// their folded form so "activity date" fills "Activity Date".
func AlignRow(header []string, row activity.RawRow) activity.RawRow {
	folded := make(map[string]string, len(row))
	for k, v := range row {
		folded[activity.FoldHeader(k)] = v
	}
	out := make(activity.RawRow, len(header))
	for _, h := range header {
		if v, ok := row[h]; ok {
			out[h] = v
			continue
		}
		out[h] = folded[activity.FoldHeader(h)]
	}
	return out
}

// rowKey identifies a row for deduplication: the activity id when there is
// one, otherwise date, type and name.
func rowKey(header []string, row activity.RawRow) string {
	if col, ok := activity.ColumnFor(header, activity.FieldID); ok {
		if id := strings.TrimSpace(row[col]); id != "" {
			return "id:" + id
		}
	}
	var parts []string
	for _, f := range []activity.Field{activity.FieldDate, activity.FieldType, activity.FieldName} {
		if col, ok := activity.ColumnFor(header, f); ok {
			parts = append(parts, strings.TrimSpace(row[col]))
		}
	}
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}
	return "row:" + strings.Join(parts, "|")
}

// ActivityCount returns the number of stored rows.
func (s *Storage) ActivityCount() (int, error) {
	table, err := s.LoadActivities()
	if table == nil {
		return 0, err
	}
	return table.Len(), nil
}

// ============================================================================
// Fetch state
// ============================================================================

// LoadState reads the fetch state, recovering from .bak when corrupt.
func (s *Storage) LoadState() (*FetchState, error) {
	state := FetchState{History: []FetchRun{}}
	err := s.loadJSONWithRecovery(StateFile, &state)
	if state.History == nil {
		state.History = []FetchRun{}
	}
	return &state, err
}

// SaveState writes the fetch state.
func (s *Storage) SaveState(state *FetchState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize %s: %w", StateFile, err)
	}
	return s.writeAtomic(StateFile, data)
}

// RecordFetch appends a fetch run to the state and saves it.
func (s *Storage) RecordFetch(run FetchRun, lastActivity *time.Time) error {
	state, err := s.LoadState()
	if err != nil && state == nil {
		return err
	}
	if run.At.IsZero() {
		run.At = s.Now()
	}
	state.Record(run)
	if lastActivity != nil && (state.LastActivityDate == nil || lastActivity.After(*state.LastActivityDate)) {
		t := *lastActivity
		state.LastActivityDate = &t
	}
	if err := s.SaveState(state); err != nil {
		return err
	}
	s.notifySaveWithContext(SaveContext{
		Filename:  StateFile,
		Operation: "fetch",
		ItemType:  "state",
		ItemName:  fmt.Sprintf("%d fetched, %d new", run.Fetched, run.Added),
	})
	return nil
}

func (s *Storage) loadJSONWithRecovery(filename string, v any) error {
	path := s.path(filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", filename, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return s.recoverCorruptJSON(filename, v, fmt.Errorf("%s is empty", filename))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return s.recoverCorruptJSON(filename, v, fmt.Errorf("parse %s: %w", filename, err))
	}
	return nil
}

func (s *Storage) recoverCorruptJSON(filename string, v any, cause error) error {
	path := s.path(filename)

	bakData, bakErr := os.ReadFile(path + ".bak")
	if bakErr == nil && len(bytes.TrimSpace(bakData)) > 0 {
		if err := json.Unmarshal(bakData, v); err == nil {
			_ = os.Rename(path, s.corruptPath(filename))
			_ = fsutil.WriteFileAtomic(path, bakData, dataFilePerm)
			return fmt.Errorf("%s (recovered from %s.bak)", cause.Error(), filename)
		}
	}

	// No usable backup: preserve the broken file and reset.
	corrupt := s.corruptPath(filename)
	_ = os.Rename(path, corrupt)
	data, _ := json.MarshalIndent(v, "", "  ")
	_ = fsutil.WriteFileAtomic(path, data, dataFilePerm)
	return fmt.Errorf("%s (reset to defaults; original moved to %s)", cause.Error(), corrupt)
}
