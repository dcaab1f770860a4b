package activity

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrNoDateColumn is returned when a header has no recognizable date column.
// Without dates no record can be kept, so the whole input is unusable.
var ErrNoDateColumn = errors.New("no activity date column found")

// Field is a logical record field that can appear under several headers.
type Field int

const (
	FieldID Field = iota
	FieldDate
	FieldType
	FieldName
	FieldDistance
	FieldMovingTime
	FieldElapsedTime
	FieldElevation
	FieldHeartRate
	FieldSpeed
	FieldGear
)

// fieldAliases lists the accepted headers per field, already folded.
// Dutch export headers come first since that is what the fetcher writes.
var fieldAliases = map[Field][]string{
	FieldID:          {"activiteits-id", "activity id", "id"},
	FieldDate:        {"datum van activiteit", "activity date", "start_date_local", "start_date", "date", "datum"},
	FieldType:        {"activiteitstype", "activity type", "sport_type", "type"},
	FieldName:        {"naam activiteit", "activity name", "name", "naam"},
	FieldDistance:    {"afstand", "distance"},
	FieldMovingTime:  {"beweegtijd", "moving time", "moving_time"},
	FieldElapsedTime: {"verstreken tijd", "elapsed time", "elapsed_time"},
	FieldElevation:   {"totale stijging", "elevation gain", "total_elevation_gain"},
	FieldHeartRate:   {"gemiddelde hartslag", "average heart rate", "average_heartrate"},
	FieldSpeed:       {"gemiddelde snelheid", "average speed", "average_speed"},
	FieldGear:        {"uitrusting voor activiteit", "activity gear", "gear"},
}

// Fields returns every field in column order of the Dutch export.
func Fields() []Field {
	return []Field{
		FieldID, FieldDate, FieldName, FieldType, FieldMovingTime, FieldElapsedTime,
		FieldDistance, FieldElevation, FieldSpeed, FieldHeartRate, FieldGear,
	}
}

// Aliases returns the folded header names accepted for f.
func Aliases(f Field) []string {
	out := make([]string, len(fieldAliases[f]))
	copy(out, fieldAliases[f])
	return out
}

// FoldText lower-cases s with Unicode case folding and strips diacritics,
// so "Calorieën" and "calorieen" compare equal.
func FoldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

// FoldHeader normalizes a column header for alias lookup.
func FoldHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.Join(strings.Fields(h), " ")
	return FoldText(h)
}

// ValidateHeader checks that the header can yield dated records.
func ValidateHeader(header []string) error {
	if _, ok := resolveColumn(header, FieldDate); !ok {
		return ErrNoDateColumn
	}
	return nil
}

// ColumnFor returns the original header used for f, if present.
func ColumnFor(header []string, f Field) (string, bool) {
	return resolveColumn(header, f)
}

func resolveColumn(header []string, f Field) (string, bool) {
	folded := make(map[string]string, len(header))
	for _, h := range header {
		key := FoldHeader(h)
		if _, seen := folded[key]; !seen {
			folded[key] = h
		}
	}
	for _, alias := range fieldAliases[f] {
		if orig, ok := folded[alias]; ok {
			return orig, true
		}
	}
	return "", false
}

// lookup reads field f from a row whose keys have been folded.
func lookup(folded map[string]string, f Field) (string, bool) {
	for _, alias := range fieldAliases[f] {
		if v, ok := folded[alias]; ok {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			return v, true
		}
	}
	return "", false
}

func foldRow(row RawRow) map[string]string {
	folded := make(map[string]string, len(row))
	for k, v := range row {
		key := FoldHeader(k)
		if existing, seen := folded[key]; seen && strings.TrimSpace(existing) != "" {
			continue
		}
		folded[key] = v
	}
	return folded
}
