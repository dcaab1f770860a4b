package storage

import (
	"bytes"
	"strings"
	"testing"

	"sportdash/internal/activity"
)

// FuzzParseActivities feeds arbitrary bytes to the CSV parser to ensure no
// panics and that every parsed row carries exactly the header's columns.
func FuzzParseActivities(f *testing.F) {
	f.Add("Activiteits-ID,Datum van activiteit\n1,\"4 jan 2026, 09:28:00\"\n")
	f.Add("\ufeffActivity Date,Distance\n2025-01-01,\"1,5\"\n")
	f.Add("a,b,c\n1\n1,2,3,4\n")
	f.Add("\"unterminated,quote\n")
	f.Add("")
	f.Add("\x00\x01\x02")

	f.Fuzz(func(t *testing.T, input string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("ParseActivities panicked with %q: %v", input, r)
			}
		}()

		table, err := ParseActivities(strings.NewReader(input))
		if err != nil {
			return
		}
		for i, row := range table.Rows {
			for _, h := range table.Header {
				if _, ok := row[h]; !ok {
					t.Errorf("row %d missing column %q", i, h)
				}
			}
		}

		if isBlank(table.Header) {
			return
		}

		// Encoding what was parsed must succeed and parse again.
		var buf bytes.Buffer
		if err := EncodeActivities(&buf, table); err != nil {
			t.Fatalf("EncodeActivities() error = %v", err)
		}
		again, err := ParseActivities(&buf)
		if err != nil {
			t.Fatalf("re-parse error = %v", err)
		}
		if again.Len() > table.Len() {
			t.Errorf("re-parse grew from %d to %d rows", table.Len(), again.Len())
		}
	})
}

// FuzzAlignRow checks that aligned rows always match the header exactly.
func FuzzAlignRow(f *testing.F) {
	f.Add("Afstand", "10,5")
	f.Add("afstand", "")
	f.Add("Calorieën", "12")
	f.Add("", "x")

	f.Fuzz(func(t *testing.T, key, value string) {
		out := AlignRow(DefaultHeader, activity.RawRow{key: value})
		if len(out) != len(DefaultHeader) {
			t.Errorf("len(out) = %d, want %d", len(out), len(DefaultHeader))
		}
		for _, h := range DefaultHeader {
			if _, ok := out[h]; !ok {
				t.Errorf("column %q missing", h)
			}
		}
	})
}
