package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"sportdash/internal/backup"
	"sportdash/internal/config"
)

// restoreHelpText is the help message for the restore subcommand.
const restoreHelpText = `sportdash restore - Restore data from a backup

USAGE:
    sportdash restore [OPTIONS] [BACKUP_NAME]

OPTIONS:
    --latest       Restore from the most recent backup
    --force, -f    Skip confirmation prompt
    -h, --help     Show this help message

ARGUMENTS:
    BACKUP_NAME    Name of the backup to restore (e.g., 2026-01-06_120000_000)
                   Use 'sportdash backup --list' to see available backups.

DESCRIPTION:
    Restores the activity log and fetch state from a specific backup.
    A safety backup is automatically created before restoring.

EXAMPLES:
    # Restore from a specific backup
    sportdash restore 2026-01-06_120000_000

    # Restore from the most recent backup
    sportdash restore --latest

    # Restore without confirmation prompt
    sportdash restore --force 2026-01-06_120000_000
`

// runRestore handles the "sportdash restore" subcommand.
func runRestore(args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)

	latestFlag := fs.Bool("latest", false, "restore from most recent backup")
	forceFlag := fs.Bool("force", false, "skip confirmation prompt")
	fs.BoolVar(forceFlag, "f", false, "skip confirmation prompt (shorthand)")

	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, restoreHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(restoreHelpText)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	manager := backup.NewManager(cfg.GetDataDir(), version)

	var backupName string
	switch {
	case *latestFlag:
		backups, err := manager.List()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing backups: %v\n", err)
			os.Exit(1)
		}
		if len(backups) == 0 {
			fmt.Fprintln(os.Stderr, "No backups available.")
			os.Exit(1)
		}
		backupName = backups[0].Name
	case fs.NArg() > 0:
		backupName = fs.Arg(0)
	default:
		fmt.Fprintln(os.Stderr, "Error: no backup specified")
		fmt.Fprintln(os.Stderr, "Use 'sportdash restore BACKUP_NAME' or 'sportdash restore --latest'")
		fmt.Fprintln(os.Stderr, "Run 'sportdash backup --list' to see available backups.")
		os.Exit(1)
	}

	info, err := manager.GetBackup(backupName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Restoring from backup: %s\n", info.Name)
	fmt.Printf("  Created: %s\n", info.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if info.Reason != "" {
		fmt.Printf("  Reason:  %s\n", info.Reason)
	}
	fmt.Printf("  Activities: %d, Fetch runs: %d\n", info.Activities(), info.Stats["fetch_runs"])
	fmt.Println()

	if !*forceFlag && !confirm("⚠ This will overwrite your current data.\nContinue? [y/N] ") {
		fmt.Println("Restore cancelled.")
		os.Exit(0)
	}

	fmt.Println("✓ Creating safety backup first...")
	if err := manager.Restore(backupName); err != nil {
		fmt.Fprintf(os.Stderr, "Error restoring backup: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Restored successfully from %s\n", backupName)
}

// confirm prints prompt and reports whether the answer was yes.
func confirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	return isYes(response, false)
}

// isYes parses a y/n answer; an empty answer yields def.
func isYes(response string, def bool) bool {
	switch strings.TrimSpace(strings.ToLower(response)) {
	case "":
		return def
	case "y", "yes":
		return true
	default:
		return false
	}
}
