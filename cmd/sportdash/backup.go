package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"sportdash/internal/backup"
	"sportdash/internal/config"
)

// backupHelpText is the help message for the backup subcommand.
const backupHelpText = `sportdash backup - Create and manage backups

USAGE:
    sportdash backup [OPTIONS]

OPTIONS:
    -l, --list       List available backups
    --prune N        Delete all but the newest N backups
    -m, --reason TXT Note stored with the backup
    -h, --help       Show this help message

DESCRIPTION:
    Creates a timestamped backup of all your data files (activity log and
    fetch state). Backups are stored in ~/.sportdash/backups/ and can be
    restored later. Imports and restores take one automatically.

EXAMPLES:
    # Create a new backup
    sportdash backup

    # List all available backups
    sportdash backup --list

    # Keep only the five newest
    sportdash backup --prune 5
`

// runBackup handles the "sportdash backup" subcommand.
func runBackup(args []string) {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)

	listFlag := fs.Bool("list", false, "list available backups")
	fs.BoolVar(listFlag, "l", false, "list available backups (shorthand)")

	pruneFlag := fs.Int("prune", -1, "delete all but the newest N backups")

	reasonFlag := fs.String("reason", "", "note stored with the backup")
	fs.StringVar(reasonFlag, "m", "", "note stored with the backup (shorthand)")

	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, backupHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(backupHelpText)
		os.Exit(0)
	}

	// Load config to get data directory
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	manager := backup.NewManager(cfg.GetDataDir(), version)

	switch {
	case *listFlag:
		listBackups(manager)
	case *pruneFlag >= 0:
		pruneBackups(manager, *pruneFlag)
	default:
		createBackup(manager, *reasonFlag)
	}
}

// createBackup creates a new backup and displays the result.
func createBackup(manager *backup.Manager, reason string) {
	name, err := manager.CreateWithReason(reason)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating backup: %v\n", err)
		os.Exit(1)
	}

	info, err := manager.GetBackup(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading backup info: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Backup created: %s\n", name)
	fmt.Printf("  Activities: %d, Fetch runs: %d\n", info.Activities(), info.Stats["fetch_runs"])
	fmt.Printf("  Location: %s\n", info.Path)
}

// listBackups lists all available backups.
func listBackups(manager *backup.Manager) {
	backups, err := manager.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing backups: %v\n", err)
		os.Exit(1)
	}

	if len(backups) == 0 {
		fmt.Println("No backups available.")
		fmt.Println("Run 'sportdash backup' to create one.")
		return
	}

	fmt.Println("Available backups:")
	for _, b := range backups {
		line := fmt.Sprintf("  %s  (%s)   Activities: %d", b.Name, formatAge(b.CreatedAt), b.Activities())
		if b.Reason != "" {
			line += "   " + b.Reason
		}
		fmt.Println(line)
	}
}

func pruneBackups(manager *backup.Manager, keep int) {
	deleted, err := manager.Prune(keep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error pruning backups: %v\n", err)
		os.Exit(1)
	}
	if deleted == 0 {
		fmt.Println("Nothing to prune.")
		return
	}
	fmt.Printf("✓ Deleted %d old backups, kept %d\n", deleted, keep)
}

// formatAge returns a human-readable age string.
func formatAge(t time.Time) string {
	return formatAgeAt(t, time.Now())
}

func formatAgeAt(t, now time.Time) string {
	d := now.Sub(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return agoUnit(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return agoUnit(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	case d < 60*24*time.Hour:
		return agoUnit(int(d.Hours()/24/7), "week")
	default:
		return t.Format("Jan 2, 2006")
	}
}

func agoUnit(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
