package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"sportdash/internal/activity"
	"sportdash/internal/config"
	"sportdash/internal/notify"
	"sportdash/internal/strava"
)

// fetchHelpText is the help message for the fetch subcommand.
const fetchHelpText = `sportdash fetch - Fetch recent activities from Strava

USAGE:
    sportdash fetch [OPTIONS]

OPTIONS:
    -p, --pages N      Number of pages to request (default from config)
    --per-page N       Activities per page, at most 200 (default from config)
    --no-notify        Skip the desktop notification
    -h, --help         Show this help message

DESCRIPTION:
    Requests the newest activities from the Strava API and appends the ones
    not yet in activities.csv. Each run is recorded in fetch_state.json.

    Credentials come from the strava section of the config file:
        strava:
          client_id: "12345"
          client_secret: "..."
          refresh_token: "..."

    When Strava rotates the refresh token the new one is saved back to the
    config file. A token set through STRAVA_REFRESH_TOKEN must be updated
    by hand.

    Fetched rows store speed in m/s like the bulk export, so keep
    normalize.speed_unit at auto or mps.

EXAMPLES:
    # Fetch the latest page
    sportdash fetch

    # Catch up after a long break
    sportdash fetch --pages 5 --per-page 100
`

// runFetch handles the "sportdash fetch" subcommand.
func runFetch(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)

	pagesFlag := fs.Int("pages", 0, "number of pages to request")
	fs.IntVar(pagesFlag, "p", 0, "number of pages to request (shorthand)")
	perPageFlag := fs.Int("per-page", 0, "activities per page")
	noNotifyFlag := fs.Bool("no-notify", false, "skip the desktop notification")

	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, fetchHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(fetchHelpText)
		os.Exit(0)
	}

	e := mustLoadEnv(false)
	defer e.close()

	sc := e.cfg.Strava
	if !sc.HasCredentials() {
		fmt.Fprintln(os.Stderr, "Error: Strava credentials are not configured.")
		fmt.Fprintln(os.Stderr, "Run 'sportdash fetch --help' for setup instructions.")
		os.Exit(1)
	}

	pages := sc.Pages
	if *pagesFlag > 0 {
		pages = *pagesFlag
	}
	perPage := sc.PerPage
	if *perPageFlag > 0 {
		perPage = *perPageFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := strava.NewClient(ctx, strava.Credentials{
		ClientID:     sc.ClientID,
		ClientSecret: sc.ClientSecret,
		RefreshToken: sc.RefreshToken,
	}, strava.ClientOptions{
		BaseURL:  sc.BaseURL,
		TokenURL: sc.TokenURL,
		Timeout:  sc.Timeout(),
	}, e.log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if msg := speedUnitWarning(e.cfg.Normalize.SpeedUnit); msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}

	gitSync := e.autoSync(false)

	fetcher := strava.NewFetcher(client, e.store, strava.FetcherOptions{
		PerPage:  perPage,
		Pages:    pages,
		Location: e.loc,
	}, e.log)

	fmt.Println("Fetching activities from Strava...")
	res, err := fetcher.Sync(ctx)
	if err != nil {
		e.log.WithError(err).Error("fetch failed")
		var apiErr *strava.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 401 {
			fmt.Fprintln(os.Stderr, "Error: Strava rejected the credentials. Check client_id, client_secret and refresh_token.")
		} else {
			fmt.Fprintf(os.Stderr, "Error fetching: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("✓ Fetched %d activities, %d new\n", res.Fetched, res.Added)
	if res.Latest != nil {
		fmt.Printf("  Latest: %s\n", res.Latest.Format("2006-01-02 15:04"))
	}

	saveRotatedToken(e, client)

	if gitSync != nil {
		gitSync.Flush()
	}

	if *noNotifyFlag || res.Added == 0 {
		return
	}
	report, err := e.generator().Generate()
	if err != nil {
		e.log.WithError(err).Warn("report for notification failed")
		return
	}
	ncfg := notify.Config{
		Enabled: e.cfg.Notifications.Enabled,
		OnFetch: e.cfg.Notifications.OnFetch,
		Sound:   e.cfg.Notifications.Sound,
	}
	if err := notify.NotifyFetch(notify.New(), ncfg, res.Added, report.WeekStreak); err != nil {
		e.log.WithError(err).Warn("notification failed")
	}
}

// saveRotatedToken persists a refresh token Strava replaced during the run.
// A token supplied through the environment cannot be updated from here.
func saveRotatedToken(e *env, client *strava.Client) {
	tok, err := client.RefreshToken()
	if err != nil || tok == "" || tok == e.cfg.Strava.RefreshToken {
		return
	}
	if e.cfg.FromEnv(config.EnvRefreshToken) {
		fmt.Fprintf(os.Stderr, "Warning: Strava issued a new refresh token; update %s, the old one may stop working.\n", config.EnvRefreshToken)
		e.log.Warn("rotated strava refresh token not saved, token comes from the environment")
		return
	}
	e.cfg.Strava.RefreshToken = tok
	if err := e.cfg.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Strava issued a new refresh token but the config could not be saved: %v\n", err)
		return
	}
	e.log.Info("saved rotated strava refresh token")
}

// speedUnitWarning flags a speed unit that misreads fetched rows, which
// carry m/s.
func speedUnitWarning(unit string) string {
	u, err := activity.ParseSpeedUnit(unit)
	if err != nil || u != activity.SpeedUnitKMH {
		return ""
	}
	return "Warning: normalize.speed_unit is kmh but fetched activities store m/s; their speeds will read 3.6x too low. Use auto or mps."
}
