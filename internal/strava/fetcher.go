package strava

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"sportdash/internal/activity"
	"sportdash/internal/storage"
)

// Lister is the part of Client the fetcher needs.
type Lister interface {
	ListActivities(ctx context.Context, page, perPage int) ([]Activity, error)
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	PerPage  int
	Pages    int
	Location *time.Location
}

// SyncResult summarizes one fetch.
type SyncResult struct {
	Fetched int
	Added   int
	Latest  *time.Time
}

// Fetcher pulls recent activities and appends the unseen ones to storage.
type Fetcher struct {
	client Lister
	store  *storage.Storage
	opts   FetcherOptions
	log    logrus.FieldLogger
}

// NewFetcher creates a fetcher.
func NewFetcher(client Lister, store *storage.Storage, opts FetcherOptions, log logrus.FieldLogger) *Fetcher {
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	if opts.Pages <= 0 {
		opts.Pages = 1
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Fetcher{client: client, store: store, opts: opts, log: log}
}

// Sync fetches up to Pages pages, stores new activities and records the run
// in the fetch state. A failing page aborts the sync before anything is
// written.
func (f *Fetcher) Sync(ctx context.Context) (SyncResult, error) {
	var fetched []Activity
	for page := 1; page <= f.opts.Pages; page++ {
		if err := ctx.Err(); err != nil {
			return SyncResult{}, err
		}
		batch, err := f.client.ListActivities(ctx, page, f.opts.PerPage)
		if err != nil {
			return SyncResult{}, fmt.Errorf("fetch page %d: %w", page, err)
		}
		fetched = append(fetched, batch...)
		if len(batch) < f.opts.PerPage {
			break
		}
	}

	res := SyncResult{Fetched: len(fetched)}
	rows := make([]activity.RawRow, 0, len(fetched))
	// The API lists newest first; store oldest first like the export.
	for i := len(fetched) - 1; i >= 0; i-- {
		a := fetched[i]
		rows = append(rows, ToRawRow(a, f.opts.Location))
		if start, ok := a.LocalStart(f.opts.Location); ok && (res.Latest == nil || start.After(*res.Latest)) {
			t := start
			res.Latest = &t
		}
	}

	added, err := f.store.AppendRows(rows, "fetch")
	if err != nil {
		return res, fmt.Errorf("store activities: %w", err)
	}
	res.Added = added

	run := storage.FetchRun{Fetched: res.Fetched, Added: res.Added, Source: "strava"}
	if err := f.store.RecordFetch(run, res.Latest); err != nil {
		return res, fmt.Errorf("record fetch: %w", err)
	}

	f.log.WithFields(logrus.Fields{
		"fetched": res.Fetched,
		"added":   res.Added,
	}).Info("strava fetch complete")
	return res, nil
}
