// Package activity turns raw exported activity rows into normalized records
// and assigns each record its canonical sport category.
package activity

import (
	"fmt"
	"strings"
)

// Category is the canonical sport classification of a record.
type Category string

const (
	CategoryCycling       Category = "cycling"
	CategoryIndoorCycling Category = "indoor_cycling"
	CategoryRunning       Category = "running"
	CategoryWalking       Category = "walking"
	CategorySwimming      Category = "swimming"
	CategoryStrength      Category = "strength"
	CategoryRacquet       Category = "racquet"
	CategoryOther         Category = "other"
)

var allCategories = []Category{
	CategoryCycling,
	CategoryIndoorCycling,
	CategoryRunning,
	CategoryWalking,
	CategorySwimming,
	CategoryStrength,
	CategoryRacquet,
	CategoryOther,
}

// AllCategories returns every category in display order.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// Index returns the display position of the category, or len(AllCategories())
// for unknown values.
func (c Category) Index() int {
	for i, cat := range allCategories {
		if cat == c {
			return i
		}
	}
	return len(allCategories)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c.Index() < len(allCategories)
}

// Label returns a human-readable name.
func (c Category) Label() string {
	switch c {
	case CategoryCycling:
		return "Cycling"
	case CategoryIndoorCycling:
		return "Indoor cycling"
	case CategoryRunning:
		return "Running"
	case CategoryWalking:
		return "Walking"
	case CategorySwimming:
		return "Swimming"
	case CategoryStrength:
		return "Strength"
	case CategoryRacquet:
		return "Racquet"
	default:
		return "Other"
	}
}

// ParseCategory accepts the canonical value or the label, case-insensitively.
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	for _, c := range allCategories {
		if string(c) == key {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}
