package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"sportdash/internal/fsutil"
	"sportdash/internal/reports"
)

// reportHelpText is the help message for the report subcommand.
const reportHelpText = `sportdash report - Generate the activity report

USAGE:
    sportdash report [OPTIONS]

OPTIONS:
    -f, --format FMT   Output format: markdown (default) or json
    -o, --output FILE  Write to file instead of stdout
    -y, --years N      Only show the newest N years (markdown)
    -h, --help         Show this help message

DESCRIPTION:
    Runs the analytics over every stored activity and prints yearly totals,
    the year-to-date comparison, records, streaks, gear and goal progress.
    Defaults for format and output come from the report section of the
    config file.

EXAMPLES:
    # Markdown to stdout
    sportdash report

    # Last two years only
    sportdash report --years 2

    # JSON to a file
    sportdash report --format json --output ~/reports/sport.json
`

// runReport handles the "sportdash report" subcommand.
func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)

	formatFlag := fs.String("format", "", "output format: markdown or json")
	fs.StringVar(formatFlag, "f", "", "output format (shorthand)")

	outputFlag := fs.String("output", "", "write to file instead of stdout")
	fs.StringVar(outputFlag, "o", "", "write to file (shorthand)")

	yearsFlag := fs.Int("years", 0, "only show the newest N years")
	fs.IntVar(yearsFlag, "y", 0, "only show the newest N years (shorthand)")

	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, reportHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(reportHelpText)
		os.Exit(0)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unexpected arguments: %v\n", fs.Args())
		os.Exit(1)
	}
	if *yearsFlag < 0 {
		fmt.Fprintln(os.Stderr, "Error: --years must not be negative")
		os.Exit(1)
	}

	e := mustLoadEnv(false)
	defer e.close()

	format := *formatFlag
	if format == "" {
		format = e.cfg.Report.Format
	}
	format, err := normalizeFormat(format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	output := *outputFlag
	if output == "" {
		output = e.cfg.Report.Output
	}

	report, err := e.generator().Generate()
	if err != nil {
		e.log.WithError(err).Error("report failed")
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}
	e.log.WithFields(logrus.Fields{
		"records": report.Ingest.Records,
		"dropped": report.Ingest.Dropped,
		"format":  format,
	}).Info("report generated")

	var data []byte
	if format == "json" {
		data, err = reports.FormatJSON(report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting JSON: %v\n", err)
			os.Exit(1)
		}
	} else {
		data = []byte(reports.FormatMarkdown(report, reports.MarkdownOptions{
			ShowPace: e.cfg.UX.ShowPace,
			Years:    *yearsFlag,
		}))
	}

	if output == "" {
		fmt.Print(string(data))
		return
	}
	if err := fsutil.WriteFileAtomicMkdir(output, data, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Report written to %s\n", output)
}

func normalizeFormat(format string) (string, error) {
	switch format {
	case "", "markdown", "md":
		return "markdown", nil
	case "json":
		return "json", nil
	default:
		return "", fmt.Errorf("invalid format %q. Use 'markdown' or 'json'", format)
	}
}
