package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"sportdash/internal/config"
	"sportdash/internal/sync"
)

// syncHelpText is the help message for the sync subcommand.
const syncHelpText = `sportdash sync - Git synchronization for your data

USAGE:
    sportdash sync [OPTIONS]

OPTIONS:
    --setup        Interactive setup wizard (recommended for first-time setup)
    --init         Initialize git repository in data directory
    --remote URL   Add URL as the 'origin' remote
    --status       Show sync status
    --pull         Pull latest changes from remote
    --push         Push local changes to remote
    -h, --help     Show this help message

DESCRIPTION:
    Keeps your activity log in a git repository so it is versioned and can
    be shared between machines. With auto_commit enabled every fetch and
    import is committed with a message such as "Fetch activities: 3 new".

SETUP:
    1. Initialize the repository:
       sportdash sync --init

    2. Add a remote:
       sportdash sync --remote git@github.com:you/sport-data.git

    3. Enable sync in config (~/.config/sportdash/config.yaml):
       sync:
         enabled: true
         auto_commit: true
         auto_push: false
         pull_on_startup: false

EXAMPLES:
    # Check sync status
    sportdash sync --status

    # Manual sync (commit + push)
    sportdash sync

    # Pull latest changes
    sportdash sync --pull

CONFIGURATION:
    sync:
      enabled: false           # Enable/disable git sync
      auto_commit: true        # Automatically commit after changes
      auto_push: false         # Automatically push after commits
      pull_on_startup: false   # Pull when starting the app
      commit_message: "auto"   # "auto" or a fixed message
`

// runSync handles the "sportdash sync" subcommand.
func runSync(args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	setupFlag := fs.Bool("setup", false, "interactive setup wizard")
	initFlag := fs.Bool("init", false, "initialize git repository")
	remoteFlag := fs.String("remote", "", "add a remote named origin")
	statusFlag := fs.Bool("status", false, "show sync status")
	pullFlag := fs.Bool("pull", false, "pull latest changes")
	pushFlag := fs.Bool("push", false, "push local changes")
	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, syncHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(syncHelpText)
		os.Exit(0)
	}

	if !sync.IsGitInstalled() {
		fmt.Fprintf(os.Stderr, "Error: git is not installed. Please install git to use sync.\n")
		os.Exit(1)
	}

	e := mustLoadEnv(false)
	defer e.close()

	gs := sync.New(e.cfg.GetDataDir(), e.syncConfig(), e.log)

	switch {
	case *setupFlag:
		runSyncSetup(gs, e.cfg)
	case *initFlag:
		runSyncInit(gs, e.cfg.GetDataDir())
	case *remoteFlag != "":
		runSyncRemote(gs, *remoteFlag)
	case *statusFlag:
		runSyncStatus(gs, e.cfg)
	case *pullFlag:
		requireRepo(gs)
		fmt.Println("Pulling latest changes...")
		if err := gs.Pull(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Pull complete.")
	case *pushFlag:
		requireRepo(gs)
		fmt.Println("Pushing local changes...")
		if err := gs.Push(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Push complete.")
	default:
		runSyncDefault(gs)
	}
}

func requireRepo(gs *sync.GitSync) {
	if !gs.IsRepo() {
		fmt.Fprintf(os.Stderr, "Error: not a git repository. Run 'sportdash sync --init' first.\n")
		os.Exit(1)
	}
}

// runSyncInit initializes the git repository.
func runSyncInit(gs *sync.GitSync, dataDir string) {
	if gs.IsRepo() {
		fmt.Printf("Git repository already initialized in %s\n", dataDir)
		os.Exit(0)
	}

	fmt.Printf("Initializing git repository in %s...\n", dataDir)
	if err := gs.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Repository initialized successfully!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Add a remote repository:")
	fmt.Println("     sportdash sync --remote <your-repo-url>")
	fmt.Println()
	fmt.Printf("  2. Enable sync in your config (%s):\n", config.Path())
	fmt.Println("     sync:")
	fmt.Println("       enabled: true")
}

func runSyncRemote(gs *sync.GitSync, url string) {
	requireRepo(gs)
	if err := gs.AddRemote("origin", url); err != nil {
		fmt.Fprintf(os.Stderr, "Error adding remote: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Remote 'origin' set to %s\n", url)
}

// runSyncStatus shows the sync status.
func runSyncStatus(gs *sync.GitSync, cfg *config.Config) {
	status, err := gs.Status()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting status: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Git Sync Status")
	fmt.Println("───────────────")

	if cfg.Sync.Enabled {
		fmt.Println("Sync:       enabled")
	} else {
		fmt.Println("Sync:       disabled")
	}

	fmt.Printf("Data dir:   %s\n", cfg.GetDataDir())

	if !status.IsRepo {
		fmt.Println("Repository: not initialized")
		fmt.Println()
		fmt.Println("Run 'sportdash sync --init' to initialize.")
		return
	}

	fmt.Printf("Repository: initialized\n")
	fmt.Printf("Branch:     %s\n", status.Branch)

	if status.HasRemote {
		fmt.Printf("Remote:     %s (%s)\n", status.RemoteName, status.RemoteURL)
		if status.Ahead > 0 || status.Behind > 0 {
			fmt.Printf("Status:     %d ahead, %d behind\n", status.Ahead, status.Behind)
		} else {
			fmt.Println("Status:     up to date")
		}
	} else {
		fmt.Println("Remote:     not configured")
	}

	if status.HasChanges {
		fmt.Println("Changes:    uncommitted changes present")
	} else {
		fmt.Println("Changes:    clean")
	}

	if status.LastCommitAt != nil {
		fmt.Printf("Last commit: %s\n", formatAge(*status.LastCommitAt))
	}
}

// runSyncDefault performs a manual sync (commit all + push).
func runSyncDefault(gs *sync.GitSync) {
	requireRepo(gs)

	fmt.Println("Committing changes...")
	if err := gs.CommitAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Error committing: %v\n", err)
		os.Exit(1)
	}

	status, err := gs.Status()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting status: %v\n", err)
		os.Exit(1)
	}

	if !status.HasRemote {
		fmt.Println("Changes committed locally.")
		fmt.Println("(No remote configured - add one with 'sportdash sync --remote <url>')")
		return
	}

	fmt.Println("Pushing to remote...")
	if err := gs.Push(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: push failed: %v\n", err)
		fmt.Println("Changes committed locally.")
		return
	}
	fmt.Println("Sync complete.")
}

// runSyncSetup runs the interactive setup wizard.
func runSyncSetup(gs *sync.GitSync, cfg *config.Config) {
	reader := bufio.NewReader(os.Stdin)
	ask := func(prompt string, def bool) bool {
		fmt.Printf("%s [%s] ", prompt, yesNoDefault(def))
		response, _ := reader.ReadString('\n')
		return isYes(response, def)
	}

	fmt.Println()
	fmt.Println("Git Sync Setup")
	fmt.Println("══════════════")
	fmt.Println()
	fmt.Printf("Data directory: %s\n", cfg.GetDataDir())
	fmt.Println()

	if gs.IsRepo() {
		fmt.Println("✓ Repository already initialized")
	} else {
		if !ask("Initialize git repository?", true) {
			fmt.Println("Setup canceled.")
			os.Exit(0)
		}
		fmt.Println("Initializing repository...")
		if err := gs.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✓ Repository initialized")
	}
	fmt.Println()

	status, err := gs.Status()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting status: %v\n", err)
		os.Exit(1)
	}

	switch {
	case status.HasRemote:
		fmt.Printf("✓ Remote configured: %s (%s)\n", status.RemoteName, status.RemoteURL)
	case ask("Add a remote repository?", false):
		fmt.Print("Remote URL (e.g., git@github.com:you/sport-data.git): ")
		remoteURL, _ := reader.ReadString('\n')
		remoteURL = strings.TrimSpace(remoteURL)
		if remoteURL == "" {
			fmt.Println("Skipped (no URL provided)")
		} else if err := gs.AddRemote("origin", remoteURL); err != nil {
			fmt.Fprintf(os.Stderr, "Error adding remote: %v\n", err)
		} else {
			fmt.Println("✓ Remote 'origin' added")
		}
	default:
		fmt.Println("Skipped")
	}
	fmt.Println()

	fmt.Println("Configuration Options")
	fmt.Println("─────────────────────")
	fmt.Println()

	cfg.Sync.Enabled = true
	cfg.Sync.AutoCommit = ask("Enable auto-commit (commits after each fetch or import)?", cfg.Sync.AutoCommit)
	cfg.Sync.AutoPush = ask("Enable auto-push (pushes after each commit)?", cfg.Sync.AutoPush)
	cfg.Sync.PullOnStartup = ask("Pull on startup (sync before opening app)?", cfg.Sync.PullOnStartup)
	fmt.Println()

	if err := cfg.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save config: %v\n", err)
		fmt.Println()
		fmt.Printf("Add this to your config file (%s):\n", config.Path())
		fmt.Println()
		fmt.Println("sync:")
		fmt.Println("  enabled: true")
		fmt.Printf("  auto_commit: %v\n", cfg.Sync.AutoCommit)
		fmt.Printf("  auto_push: %v\n", cfg.Sync.AutoPush)
		fmt.Printf("  pull_on_startup: %v\n", cfg.Sync.PullOnStartup)
	} else {
		fmt.Println("✓ Configuration saved")
	}

	fmt.Println()
	fmt.Println("Setup complete! Git sync is now enabled.")
	if cfg.Sync.AutoPush {
		fmt.Println("Changes will be pushed automatically after each commit.")
	} else {
		fmt.Println("Use 'sportdash sync' to push changes to your remote.")
	}
}

// yesNoDefault returns "Y/n" or "y/N" based on the default value.
func yesNoDefault(defaultYes bool) string {
	if defaultYes {
		return "Y/n"
	}
	return "y/N"
}
