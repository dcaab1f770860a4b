// Package main is the entry point for the sportdash application.
// It loads configuration, initializes storage, and starts the TUI.
package main

import (
	"flag"
	"fmt"
	"os"

	"sportdash/internal/ui"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const helpText = `sportdash - Year-over-year training analytics for your terminal

USAGE:
    sportdash [OPTIONS]
    sportdash <command> [ARGS]

COMMANDS:
    fetch              Fetch recent activities from Strava
    import FILE        Import a Strava bulk export (CSV or JSON)
    report             Print the activity report (Markdown)
    report -f json     Output the report as JSON
    backup             Create a backup of all data
    backup --list      List available backups
    restore NAME       Restore from a specific backup
    restore --latest   Restore from the most recent backup
    sync               Sync data with git (commit + push)
    sync --init        Initialize git repo in data directory
    sync --status      Show git sync status

OPTIONS:
    -h, --help         Show this help message
    -v, --version      Show version information

DESCRIPTION:
    sportdash reads your Strava activities, groups them into categories
    (cycling, indoor cycling, running, walking, other) and shows how this
    year compares to the last: totals, records, streaks and goals.

KEYBINDINGS:
    Global:
        Tab          Switch between panes
        1, 2, 3, 4   Jump to specific pane
        r            Reload activities
        ?            Show help overlay
        q            Quit

    Panes:
        j/k, ↓/↑     Scroll
        g/G          Go to top/bottom

    Overview:
        h/l, ←/→     Older/newer year

DATA STORAGE:
    All data is stored in ~/.sportdash/:
        activities.csv    - Activity log in the Strava export layout
        fetch_state.json  - History of fetch and import runs

CONFIGURATION:
    Optional config file: ~/.config/sportdash/config.yaml
    Strava credentials may also come from STRAVA_CLIENT_ID,
    STRAVA_CLIENT_SECRET and STRAVA_REFRESH_TOKEN.

EXAMPLES:
    # Start the app
    sportdash

    # Load a bulk export
    sportdash import ~/Downloads/export/activities.csv

    # Fetch the newest activities
    sportdash fetch

    # Write this year's report as JSON
    sportdash report --format json --output report.json

    # Show version
    sportdash --version
`

func main() {
	// Check for subcommands first (before flag parsing)
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "fetch":
			runFetch(os.Args[2:])
			return
		case "import":
			runImport(os.Args[2:])
			return
		case "report":
			runReport(os.Args[2:])
			return
		case "backup":
			runBackup(os.Args[2:])
			return
		case "restore":
			runRestore(os.Args[2:])
			return
		case "sync":
			runSync(os.Args[2:])
			return
		}
	}

	showVersion := flag.Bool("version", false, "show version information")
	flag.BoolVar(showVersion, "v", false, "show version information (shorthand)")

	showHelp := flag.Bool("help", false, "show help message")
	flag.BoolVar(showHelp, "h", false, "show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, helpText)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("sportdash version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
		os.Exit(0)
	}

	if *showHelp {
		fmt.Print(helpText)
		os.Exit(0)
	}

	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unknown arguments: %v\n\n", flag.Args())
		flag.Usage()
		os.Exit(1)
	}

	e := mustLoadEnv(true)
	defer e.close()

	gitSync := e.autoSync(true)

	// A nil *GitSync must not become a non-nil interface.
	var status ui.StatusSource
	if gitSync != nil {
		status = gitSync
	}

	appCfg := &ui.AppConfig{
		Keys:                  &e.cfg.Keys,
		NarrowLayoutThreshold: e.cfg.UX.NarrowLayoutThreshold,
		ShowPace:              e.cfg.UX.ShowPace,
	}

	err := ui.Run(e.generator(), status, ui.NewStyles(e.cfg), appCfg)

	// Flush any pending git commits before exit
	if gitSync != nil {
		gitSync.Flush()
	}

	if err != nil {
		e.log.WithError(err).Error("tui exited")
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		e.close()
		os.Exit(1)
	}
}
