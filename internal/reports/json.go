package reports

import (
	"encoding/json"

	"sportdash/internal/analytics"
)

// FormatJSON formats a report as indented JSON.
func FormatJSON(report *analytics.Report) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
