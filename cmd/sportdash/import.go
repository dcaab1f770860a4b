package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"sportdash/internal/backup"
	"sportdash/internal/importer"
	"sportdash/internal/reports"
)

// importHelpText is the help message for the import subcommand.
const importHelpText = `sportdash import - Import a Strava bulk export

USAGE:
    sportdash import [OPTIONS] <file>

FORMATS:
    strava-csv   activities.csv from the Strava bulk export (any language)
    strava-json  JSON array or newline-delimited JSON of API activities

OPTIONS:
    --format FMT   Force the format instead of detecting it from the extension
    --preview      Show what would be imported without making changes
    --no-backup    Skip the backup taken before importing
    -h, --help     Show this help message

DESCRIPTION:
    Adds the activities in the file to your activity log. Activities that
    are already present are skipped, so importing the same export twice is
    harmless. Rows without a usable date are reported and left out.

    Request the export on strava.com under Settings, My Account,
    Download or Delete Your Account.

EXAMPLES:
    # Import the bulk export
    sportdash import ~/Downloads/export_12345/activities.csv

    # Preview before importing
    sportdash import --preview activities.csv

    # Import saved API responses
    sportdash import --format strava-json activities.ndjson
`

// previewLimit is how many activities a preview lists.
const previewLimit = 20

// runImport handles the "sportdash import" subcommand.
func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	formatFlag := fs.String("format", "", "import format")
	previewFlag := fs.Bool("preview", false, "preview import without making changes")
	fs.BoolVar(previewFlag, "dry-run", false, "preview import without making changes (alias)")
	noBackupFlag := fs.Bool("no-backup", false, "skip the backup before importing")
	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, importHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(importHelpText)
		os.Exit(0)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file\n\n")
		fmt.Fprintf(os.Stderr, "Usage: sportdash import [--format FMT] <file>\n")
		fmt.Fprintf(os.Stderr, "Formats: %s\n", strings.Join(importer.SupportedFormats(), ", "))
		os.Exit(1)
	}
	filePath := fs.Arg(0)

	format := strings.ToLower(*formatFlag)
	if format == "" {
		detected, err := importer.DetectFormat(filePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, "Use --format to choose one.")
			os.Exit(1)
		}
		format = detected
	}

	e := mustLoadEnv(false)
	defer e.close()

	imp, err := importer.GetImporter(format, importer.Options{
		Normalizer:  e.normalizer,
		Categorizer: e.categorizer,
		Location:    e.loc,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	file, err := os.Open(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	if *previewFlag {
		previewImport(imp, file)
		return
	}

	if !*noBackupFlag {
		manager := backup.NewManager(e.cfg.GetDataDir(), version)
		name, err := manager.CreateWithReason("before import")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating backup: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✓ Backup created: %s\n", name)
	}

	gitSync := e.autoSync(false)

	result, err := imp.Import(file, e.store)
	if err != nil {
		e.log.WithError(err).WithField("file", filePath).Error("import failed")
		fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
		os.Exit(1)
	}
	e.log.WithField("file", filePath).WithField("imported", result.Imported).Info("import complete")

	if gitSync != nil {
		gitSync.Flush()
	}

	fmt.Printf("Import complete!\n")
	fmt.Printf("  Imported: %d activities\n", result.Imported)
	if result.Skipped > 0 {
		fmt.Printf("  Skipped:  %d already present\n", result.Skipped)
	}
	if len(result.Errors) > 0 {
		fmt.Printf("  Errors:   %d\n", len(result.Errors))
		for _, msg := range result.Errors {
			fmt.Printf("    - %s\n", msg)
		}
	}
}

// previewImport lists the activities without importing them.
func previewImport(imp importer.Importer, file *os.File) {
	activities, err := imp.Preview(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing file: %v\n", err)
		os.Exit(1)
	}

	if len(activities) == 0 {
		fmt.Println("No activities found to import.")
		os.Exit(0)
	}

	fmt.Printf("Preview: %d activities in %s format\n", len(activities), imp.Name())
	fmt.Println("────────────────────────────")

	for i, a := range activities {
		if i == previewLimit {
			fmt.Printf("  ... and %d more\n", len(activities)-previewLimit)
			break
		}
		name := a.Name
		if name == "" {
			name = a.Type
		}
		fmt.Printf("  %s  %-15s %10s  %s\n",
			a.Date.Format("2006-01-02"), a.Category.Label(), reports.FormatKm(a.DistanceKm), name)
	}

	fmt.Println()
	fmt.Println("Run without --preview to import.")
}
