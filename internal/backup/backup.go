// Package backup keeps timestamped snapshots of the activity log and fetch
// state so a bad import or fetch can be rolled back.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"sportdash/internal/fsutil"
	"sportdash/internal/storage"
)

const (
	ManifestVersion = "2.0"
	ManifestFile    = "manifest.json"
	BackupsDir      = "backups"
)

const nameLayout = "2006-01-02_150405"

// Manager handles backup and restore operations.
type Manager struct {
	dataDir    string
	backupDir  string
	appVersion string
	now        func() time.Time
}

// Manifest contains metadata about a backup.
type Manifest struct {
	Version    string         `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	AppVersion string         `json:"app_version"`
	Reason     string         `json:"reason,omitempty"`
	Files      []string       `json:"files"`
	Stats      map[string]int `json:"stats"`
}

// BackupInfo contains summary information about a backup.
type BackupInfo struct {
	Name      string
	Path      string
	CreatedAt time.Time
	Reason    string
	Stats     map[string]int
}

// Activities returns the number of activity rows in the backup.
func (b BackupInfo) Activities() int {
	return b.Stats["activities"]
}

// NewManager creates a new backup manager.
func NewManager(dataDir, appVersion string) *Manager {
	return &Manager{
		dataDir:    dataDir,
		backupDir:  filepath.Join(dataDir, BackupsDir),
		appVersion: appVersion,
		now:        time.Now,
	}
}

// SetNowFunc overrides the clock used to name backups.
func (m *Manager) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	m.now = now
}

// Create snapshots all data files and returns the backup name.
func (m *Manager) Create() (string, error) {
	return m.CreateWithReason("")
}

// CreateWithReason is Create with a note stored in the manifest, e.g.
// "before import".
func (m *Manager) CreateWithReason(reason string) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	now := m.now()
	name := m.uniqueName(now)
	backupPath := filepath.Join(m.backupDir, name)
	if err := os.MkdirAll(backupPath, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	var copied []string
	stats := make(map[string]int)
	for _, filename := range storage.DataFiles {
		src := filepath.Join(m.dataDir, filename)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := fsutil.CopyFileAtomic(src, filepath.Join(backupPath, filename), 0600); err != nil {
			_ = os.RemoveAll(backupPath)
			return "", fmt.Errorf("failed to copy %s: %w", filename, err)
		}
		copied = append(copied, filename)

		if key, count, err := countItems(src, filename); err == nil {
			stats[key] = count
		}
	}

	manifest := Manifest{
		Version:    ManifestVersion,
		CreatedAt:  now,
		AppVersion: m.appVersion,
		Reason:     reason,
		Files:      copied,
		Stats:      stats,
	}
	if err := writeJSON(filepath.Join(backupPath, ManifestFile), manifest); err != nil {
		_ = os.RemoveAll(backupPath)
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return name, nil
}

// uniqueName formats now as a backup name, bumping the millisecond suffix
// when a backup with that name already exists.
func (m *Manager) uniqueName(now time.Time) string {
	base := now.Format(nameLayout)
	ms := now.Nanosecond() / 1e6
	for i := 0; i < 1000; i++ {
		name := fmt.Sprintf("%s_%03d", base, (ms+i)%1000)
		if _, err := os.Stat(filepath.Join(m.backupDir, name)); os.IsNotExist(err) {
			return name
		}
	}
	return fmt.Sprintf("%s_%03d", base, ms)
}

// List returns all available backups, newest first.
func (m *Manager) List() ([]BackupInfo, error) {
	if _, err := os.Stat(m.backupDir); os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := m.GetBackup(entry.Name())
		if err != nil {
			continue
		}
		backups = append(backups, *info)
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].CreatedAt.Equal(backups[j].CreatedAt) {
			return backups[i].CreatedAt.After(backups[j].CreatedAt)
		}
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

// Restore restores data from a backup after taking a safety backup.
// Restored files are validated before Restore returns.
func (m *Manager) Restore(name string) error {
	if err := validateBackupName(name); err != nil {
		return err
	}
	backupPath := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup not found: %s", name)
	}

	var manifest Manifest
	if err := readJSON(filepath.Join(backupPath, ManifestFile), &manifest); err != nil {
		manifest.Files = storage.DataFiles
	}

	for _, filename := range manifest.Files {
		if err := validateFile(filepath.Join(backupPath, filename), filename); err != nil {
			return fmt.Errorf("backup file %s is invalid: %w", filename, err)
		}
	}

	safetyName, err := m.CreateWithReason("before restore of " + name)
	if err != nil {
		return fmt.Errorf("failed to create safety backup: %w", err)
	}

	for _, filename := range manifest.Files {
		src := filepath.Join(backupPath, filename)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := fsutil.CopyFileAtomic(src, filepath.Join(m.dataDir, filename), 0600); err != nil {
			return fmt.Errorf("failed to restore %s (safety backup: %s): %w", filename, safetyName, err)
		}
	}
	return nil
}

// RestoreLatest restores from the most recent backup.
func (m *Manager) RestoreLatest() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups available")
	}
	return m.Restore(backups[0].Name)
}

// Delete removes a specific backup.
func (m *Manager) Delete(name string) error {
	if err := validateBackupName(name); err != nil {
		return err
	}
	backupPath := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup not found: %s", name)
	}
	return os.RemoveAll(backupPath)
}

// Prune removes old backups, keeping only the N most recent.
func (m *Manager) Prune(keepCount int) (int, error) {
	if keepCount < 0 {
		return 0, fmt.Errorf("keepCount must be non-negative")
	}
	backups, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(backups) <= keepCount {
		return 0, nil
	}

	deleted := 0
	for _, b := range backups[keepCount:] {
		if err := m.Delete(b.Name); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// GetBackup returns information about a specific backup.
func (m *Manager) GetBackup(name string) (*BackupInfo, error) {
	if err := validateBackupName(name); err != nil {
		return nil, err
	}
	backupPath := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("backup not found: %s", name)
	}

	var manifest Manifest
	if err := readJSON(filepath.Join(backupPath, ManifestFile), &manifest); err != nil {
		createdAt, parseErr := parseBackupName(name)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid backup: %s", name)
		}
		manifest.CreatedAt = createdAt
	}
	if manifest.Stats == nil {
		manifest.Stats = make(map[string]int)
	}

	return &BackupInfo{
		Name:      name,
		Path:      backupPath,
		CreatedAt: manifest.CreatedAt,
		Reason:    manifest.Reason,
		Stats:     manifest.Stats,
	}, nil
}

func validateBackupName(name string) error {
	if name == "" {
		return fmt.Errorf("backup name is required")
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	if _, err := parseBackupName(name); err != nil {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0600)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// validateFile checks that a data file parses. Missing files are fine.
func validateFile(path, filename string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if strings.HasSuffix(filename, ".csv") {
		_, err := storage.ParseActivities(bytes.NewReader(data))
		return err
	}
	var v interface{}
	return json.Unmarshal(data, &v)
}

// countItems returns the stats key and item count for a data file.
func countItems(path, filename string) (string, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, err
	}
	switch filename {
	case storage.ActivitiesFile:
		table, err := storage.ParseActivities(bytes.NewReader(data))
		if err != nil {
			return "", 0, err
		}
		return "activities", table.Len(), nil
	case storage.StateFile:
		var state storage.FetchState
		if err := json.Unmarshal(data, &state); err != nil {
			return "", 0, err
		}
		return "fetch_runs", len(state.History), nil
	}
	return filename, 0, nil
}

// parseBackupName parses a backup directory name into a timestamp.
// Names are 2006-01-02_150405 with an optional _mmm millisecond suffix.
func parseBackupName(name string) (time.Time, error) {
	if len(name) == len(nameLayout)+4 {
		base, err := time.Parse(nameLayout, name[:len(nameLayout)])
		if err != nil {
			return time.Time{}, err
		}
		if name[len(nameLayout)] != '_' {
			return time.Time{}, fmt.Errorf("invalid backup format")
		}
		ms, err := strconv.Atoi(name[len(nameLayout)+1:])
		if err != nil || ms < 0 || ms > 999 {
			return time.Time{}, fmt.Errorf("invalid milliseconds")
		}
		return base.Add(time.Duration(ms) * time.Millisecond), nil
	}
	return time.Parse(nameLayout, name)
}
