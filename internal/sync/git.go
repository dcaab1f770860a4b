// Package sync keeps the sportdash data directory in a git repository:
// debounced commits after fetches and imports, plus pull and push.
package sync

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	gosync "sync"
	"time"

	"github.com/sirupsen/logrus"

	"sportdash/internal/fsutil"
	"sportdash/internal/storage"
)

// Config holds git sync configuration.
type Config struct {
	Enabled       bool
	AutoCommit    bool
	AutoPush      bool
	PullOnStartup bool
	CommitMessage string // "auto" or a fixed message
}

// DefaultConfig returns the default sync configuration.
func DefaultConfig() Config {
	return Config{
		AutoCommit:    true,
		CommitMessage: "auto",
	}
}

// Status represents the current git status.
type Status struct {
	IsRepo       bool
	HasRemote    bool
	RemoteName   string
	RemoteURL    string
	Branch       string
	Ahead        int
	Behind       int
	HasChanges   bool
	LastCommitAt *time.Time
}

// GitSync manages git operations for the data directory.
type GitSync struct {
	dataDir string
	config  Config
	log     logrus.FieldLogger

	// Debouncing for auto-commit
	pendingFiles    map[string]bool
	pendingContexts []storage.SaveContext
	commitTimer     *time.Timer
	mu              gosync.Mutex

	// Serializes git operations to avoid index/lock conflicts.
	opMu gosync.Mutex

	debounceDuration time.Duration
}

// New creates a new GitSync instance.
func New(dataDir string, cfg Config, log logrus.FieldLogger) *GitSync {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &GitSync{
		dataDir:          dataDir,
		config:           cfg,
		log:              log,
		pendingFiles:     make(map[string]bool),
		debounceDuration: 2 * time.Second,
	}
}

// IsGitInstalled checks if git is available on the system.
func IsGitInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsRepo checks if the data directory is a git repository.
func (g *GitSync) IsRepo() bool {
	info, err := os.Stat(filepath.Join(g.dataDir, ".git"))
	return err == nil && info.IsDir()
}

const (
	defaultGitTimeout  = 10 * time.Second
	pullPushGitTimeout = 60 * time.Second
	commitGitTimeout   = 15 * time.Second
)

const gitignoreContent = `# sportdash data - git sync ignore file
backups/
logs/
*.bak
*.corrupt.*
*.tmp-*
`

const notARepo = "not a git repository - run 'sportdash sync --init' first"

// Init initializes a git repository in the data directory.
func (g *GitSync) Init() error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if !IsGitInstalled() {
		return fmt.Errorf("git is not installed")
	}
	if _, err := g.runGitTimeout(commitGitTimeout, "init"); err != nil {
		return fmt.Errorf("failed to initialize git repository: %w", err)
	}

	gitignorePath := filepath.Join(g.dataDir, ".gitignore")
	if err := fsutil.WriteFileAtomic(gitignorePath, []byte(gitignoreContent), 0600); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	files := []string{".gitignore"}
	for _, f := range storage.DataFiles {
		if _, err := os.Stat(filepath.Join(g.dataDir, f)); err == nil {
			files = append(files, f)
		}
	}
	if _, err := g.runGitTimeout(defaultGitTimeout, append([]string{"add"}, files...)...); err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}
	if _, err := g.runGitTimeout(commitGitTimeout, "-c", "commit.gpgsign=false", "commit", "-m", "Initialize sportdash data repository"); err != nil {
		if !isGitNothingToCommit(err) {
			return fmt.Errorf("failed to create initial commit: %w", err)
		}
	}
	return nil
}

// Status returns the current git status.
func (g *GitSync) Status() (*Status, error) {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	status := &Status{IsRepo: g.IsRepo()}
	if !status.IsRepo {
		return status, nil
	}

	if branch, err := g.runGitTimeout(defaultGitTimeout, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		status.Branch = trimOutput(branch)
	}

	// First line of `remote -v`: "origin\tgit@...\t(fetch)"
	if remotes, err := g.runGitTimeout(defaultGitTimeout, "remote", "-v"); err == nil && trimOutput(remotes) != "" {
		status.HasRemote = true
		first, _, _ := strings.Cut(trimOutput(remotes), "\n")
		if parts := strings.Fields(first); len(parts) >= 2 {
			status.RemoteName = parts[0]
			status.RemoteURL = parts[1]
		}
	}

	if out, err := g.runGitTimeout(defaultGitTimeout, "status", "--porcelain"); err == nil {
		status.HasChanges = trimOutput(out) != ""
	}

	if status.HasRemote && status.Branch != "" {
		remote := status.RemoteName + "/" + status.Branch
		revList, err := g.runGitTimeout(defaultGitTimeout, "rev-list", "--left-right", "--count", status.Branch+"..."+remote)
		if err == nil {
			var ahead, behind int
			if _, err := fmt.Sscanf(trimOutput(revList), "%d\t%d", &ahead, &behind); err == nil {
				status.Ahead, status.Behind = ahead, behind
			}
		}
	}

	if lastCommit, err := g.runGitTimeout(defaultGitTimeout, "log", "-1", "--format=%ci"); err == nil && trimOutput(lastCommit) != "" {
		if t, err := time.Parse("2006-01-02 15:04:05 -0700", trimOutput(lastCommit)); err == nil {
			status.LastCommitAt = &t
		}
	}
	return status, nil
}

// Commit stages and commits the given data files.
func (g *GitSync) Commit(files []string) error {
	return g.commit(files, nil)
}

// CommitAll stages and commits every change in the data directory.
func (g *GitSync) CommitAll() error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if !g.IsRepo() {
		return fmt.Errorf(notARepo)
	}
	if _, err := g.runGitTimeout(defaultGitTimeout, "add", "-A"); err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}
	committed, err := g.commitStaged("Update sportdash data")
	if err != nil || !committed {
		return err
	}
	return nil
}

// Pull fetches and rebases onto the remote.
func (g *GitSync) Pull() error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if err := g.requireRemote(); err != nil {
		return err
	}
	if _, err := g.runGitTimeout(pullPushGitTimeout, "pull", "--rebase"); err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}
	return nil
}

// Push pushes local commits to the remote.
func (g *GitSync) Push() error {
	g.opMu.Lock()
	defer g.opMu.Unlock()
	return g.push()
}

func (g *GitSync) push() error {
	if err := g.requireRemote(); err != nil {
		return err
	}
	if _, err := g.runGitTimeout(pullPushGitTimeout, "push"); err != nil {
		return fmt.Errorf("push failed: %w", err)
	}
	return nil
}

func (g *GitSync) requireRemote() error {
	if !g.IsRepo() {
		return fmt.Errorf("not a git repository")
	}
	remotes, err := g.runGitTimeout(defaultGitTimeout, "remote")
	if err != nil || trimOutput(remotes) == "" {
		return fmt.Errorf("no remote configured - add one with 'sportdash sync --remote <url>'")
	}
	return nil
}

// AddRemote adds a git remote, or updates its URL when it exists.
func (g *GitSync) AddRemote(name, url string) error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if !g.IsRepo() {
		return fmt.Errorf(notARepo)
	}
	if name == "" {
		return fmt.Errorf("remote name is required")
	}
	if url == "" {
		return fmt.Errorf("remote URL is required")
	}

	remotes, _ := g.runGitTimeout(defaultGitTimeout, "remote")
	for _, line := range strings.Split(trimOutput(remotes), "\n") {
		if strings.TrimSpace(line) == name {
			if _, err := g.runGitTimeout(defaultGitTimeout, "remote", "set-url", name, url); err != nil {
				return fmt.Errorf("failed to update remote: %w", err)
			}
			return nil
		}
	}
	if _, err := g.runGitTimeout(defaultGitTimeout, "remote", "add", name, url); err != nil {
		return fmt.Errorf("failed to add remote: %w", err)
	}
	return nil
}

// OnFileSavedWithContext queues a saved file for a debounced commit. It is
// registered as the storage save hook.
func (g *GitSync) OnFileSavedWithContext(ctx storage.SaveContext) {
	if !g.config.Enabled || !g.config.AutoCommit || !g.IsRepo() {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.pendingFiles[ctx.Filename] = true
	g.pendingContexts = append(g.pendingContexts, ctx)

	if g.commitTimer != nil {
		g.commitTimer.Stop()
	}
	g.commitTimer = time.AfterFunc(g.debounceDuration, g.flushCommit)
}

// Flush immediately commits any pending files without waiting for debounce.
// Call it before exit.
func (g *GitSync) Flush() {
	g.mu.Lock()
	if g.commitTimer != nil {
		g.commitTimer.Stop()
		g.commitTimer = nil
	}
	g.mu.Unlock()

	g.flushCommit()
}

func (g *GitSync) flushCommit() {
	g.mu.Lock()
	files := make([]string, 0, len(g.pendingFiles))
	for f := range g.pendingFiles {
		files = append(files, f)
	}
	contexts := g.pendingContexts
	g.pendingFiles = make(map[string]bool)
	g.pendingContexts = nil
	g.mu.Unlock()

	if len(files) == 0 {
		return
	}
	sort.Strings(files)
	if err := g.commit(files, contexts); err != nil {
		g.log.WithError(err).WithField("files", files).Warn("auto-commit failed")
	}
}

func (g *GitSync) commit(files []string, contexts []storage.SaveContext) error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if !g.IsRepo() {
		return fmt.Errorf(notARepo)
	}
	if len(files) == 0 {
		return nil
	}

	if _, err := g.runGitTimeout(defaultGitTimeout, append([]string{"add"}, files...)...); err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}
	committed, err := g.commitStaged(g.commitMessage(files, contexts))
	if err != nil || !committed {
		return err
	}

	if g.config.AutoPush {
		if err := g.push(); err != nil {
			return fmt.Errorf("committed locally, but push failed: %w", err)
		}
	}
	return nil
}

// commitStaged commits the index, reporting false when nothing was staged.
func (g *GitSync) commitStaged(message string) (bool, error) {
	staged, err := g.runGitTimeout(defaultGitTimeout, "diff", "--cached", "--name-only")
	if err != nil {
		return false, fmt.Errorf("failed to check staged changes: %w", err)
	}
	if trimOutput(staged) == "" {
		return false, nil
	}
	if _, err := g.runGitTimeout(commitGitTimeout, "-c", "commit.gpgsign=false", "commit", "-m", message); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	g.log.WithField("message", message).Debug("committed data directory")
	return true, nil
}

// commitMessage builds messages such as "Fetch activities: 3 new".
func (g *GitSync) commitMessage(files []string, contexts []storage.SaveContext) string {
	if g.config.CommitMessage != "" && g.config.CommitMessage != "auto" {
		return g.config.CommitMessage
	}
	if len(contexts) == 0 {
		return fileMessage(files)
	}

	// Activity changes describe a commit better than the state bookkeeping
	// that accompanies them.
	primary := contexts[0]
	batches := 0
	for _, ctx := range contexts {
		if ctx.ItemType != "activity" {
			continue
		}
		if batches == 0 {
			primary = ctx
		}
		batches++
	}
	if batches > 1 {
		return fmt.Sprintf("%s activities: %d batches", capitalizeFirst(primary.Operation), batches)
	}
	return formatSemanticMessage(primary)
}

func fileMessage(files []string) string {
	if len(files) == 1 {
		switch files[0] {
		case storage.ActivitiesFile:
			return "Update activities"
		case storage.StateFile:
			return "Update fetch state"
		}
		return fmt.Sprintf("Update %s", files[0])
	}
	return fmt.Sprintf("Update %d files", len(files))
}

func formatSemanticMessage(ctx storage.SaveContext) string {
	op := ctx.Operation
	if op == "" {
		op = "update"
	}
	var msg string
	switch ctx.ItemType {
	case "activity":
		msg = capitalizeFirst(op) + " activities"
	case "state":
		msg = "Record " + op
	default:
		msg = strings.TrimSpace(capitalizeFirst(op) + " " + ctx.ItemType)
	}
	if ctx.ItemName != "" {
		msg += ": " + ctx.ItemName
	}
	return msg
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (g *GitSync) runGitTimeout(timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dataDir
	cmd.Env = envWithOverrides(os.Environ(), map[string]string{
		"GIT_TERMINAL_PROMPT": "0",
		"GIT_ASKPASS":         "",
		"SSH_ASKPASS":         "",
	})
	cmd.Stdin = bytes.NewReader(nil)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git %s timed out after %s", strings.Join(args, " "), timeout)
		}
		errMsg := stderr.String()
		if errMsg == "" {
			errMsg = stdout.String()
		}
		if errMsg == "" {
			errMsg = err.Error()
		}
		return "", fmt.Errorf("%s", trimOutput(errMsg))
	}
	return stdout.String(), nil
}

func envWithOverrides(base []string, overrides map[string]string) []string {
	out := make([]string, 0, len(base)+len(overrides))
	seen := make(map[string]bool, len(overrides))
	for _, kv := range base {
		k, _, ok := strings.Cut(kv, "=")
		if v, override := overrides[k]; ok && override {
			out = append(out, k+"="+v)
			seen[k] = true
			continue
		}
		out = append(out, kv)
	}
	for k, v := range overrides {
		if !seen[k] {
			out = append(out, k+"="+v)
		}
	}
	return out
}

func isGitNothingToCommit(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "nothing to commit") ||
		strings.Contains(msg, "nothing added to commit") ||
		strings.Contains(msg, "no changes added to commit")
}

func trimOutput(s string) string {
	return strings.TrimSpace(s)
}
