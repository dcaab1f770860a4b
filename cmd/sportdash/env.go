package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"sportdash/internal/activity"
	"sportdash/internal/analytics"
	"sportdash/internal/config"
	"sportdash/internal/logging"
	"sportdash/internal/reports"
	"sportdash/internal/storage"
	"sportdash/internal/sync"
)

// env is the wiring every command shares: config, logger, storage and the
// analytics engine built from the config.
type env struct {
	cfg         *config.Config
	log         *logrus.Logger
	logCloser   io.Closer
	store       *storage.Storage
	loc         *time.Location
	normalizer  *activity.Normalizer
	categorizer *activity.Categorizer
	engine      *analytics.Engine
}

// mustLoadEnv loads everything or exits. The TUI never logs to stdout.
func mustLoadEnv(tui bool) *env {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log, closer, err := logging.Setup(logging.SetupParams{
		LogFileName:   cfg.LogFile(),
		LogToStdout:   cfg.Logging.Stdout && !tui,
		LogLevel:      cfg.Logging.Level,
		LogFormatJSON: cfg.Logging.JSON,
		MaxSizeMB:     cfg.Logging.MaxSizeMB,
		MaxBackups:    cfg.Logging.MaxBackups,
		MaxAgeDays:    cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.New(cfg.GetDataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	e := &env{cfg: cfg, log: log, logCloser: closer, store: store}
	if err := e.buildEngine(); err != nil {
		fmt.Fprintf(os.Stderr, "Error in config: %v\n", err)
		os.Exit(1)
	}
	log.WithField("data_dir", cfg.GetDataDir()).Debug("environment ready")
	return e
}

func (e *env) buildEngine() error {
	nopts, err := e.cfg.NormalizerOptions()
	if err != nil {
		return err
	}
	rules, err := e.cfg.CategoryRules()
	if err != nil {
		return err
	}
	aopts, err := e.cfg.AnalyticsOptions()
	if err != nil {
		return err
	}
	e.loc = nopts.Location
	e.normalizer = activity.NewNormalizer(nopts, e.log)
	e.categorizer = activity.NewCategorizer(rules...)
	e.engine = analytics.NewEngine(e.normalizer, e.categorizer, aopts, e.log)
	return nil
}

func (e *env) generator() *reports.Generator {
	return reports.NewGenerator(e.store, e.engine)
}

func (e *env) close() {
	if err := e.logCloser.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: closing log file: %v\n", err)
	}
}

func (e *env) syncConfig() sync.Config {
	return sync.Config{
		Enabled:       e.cfg.Sync.Enabled,
		AutoCommit:    e.cfg.Sync.AutoCommit,
		AutoPush:      e.cfg.Sync.AutoPush,
		PullOnStartup: e.cfg.Sync.PullOnStartup,
		CommitMessage: e.cfg.Sync.CommitMessage,
	}
}

// autoSync returns the git syncer when sync is enabled and the data
// directory is a repository, registering the auto-commit hook. It returns
// nil otherwise.
func (e *env) autoSync(pull bool) *sync.GitSync {
	if !e.cfg.Sync.Enabled || !sync.IsGitInstalled() {
		return nil
	}
	gs := sync.New(e.cfg.GetDataDir(), e.syncConfig(), e.log)
	if !gs.IsRepo() {
		e.log.Warn("sync enabled but data directory is not a git repository")
		return nil
	}

	if pull && e.cfg.Sync.PullOnStartup {
		if err := gs.Pull(); err != nil {
			// Local data is still valid.
			fmt.Fprintf(os.Stderr, "Warning: sync pull failed: %v\n", err)
		}
	}

	if e.cfg.Sync.AutoCommit {
		e.store.SetOnSaveWithContext(gs.OnFileSavedWithContext)
	}
	return gs
}
