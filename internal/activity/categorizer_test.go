package activity

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCategorizer_DefaultRules tests the built-in rule table.
func TestCategorizer_DefaultRules(t *testing.T) {
	c := NewCategorizer()
	tests := []struct {
		rawType string
		rawName string
		want    Category
	}{
		{"Fietsrit", "Ochtendrit", CategoryCycling},
		{"Ride", "Lunch Ride", CategoryCycling},
		{"GravelRide", "", CategoryCycling},
		{"Virtuele fietsrit", "Zwift - Watopia", CategoryIndoorCycling},
		{"VirtualRide", "", CategoryIndoorCycling},
		{"Fietsrit", "Rouvy Alpe d'Huez", CategoryIndoorCycling},
		{"Hardloopsessie", "Avondloop", CategoryRunning},
		{"Run", "Treadmill intervals", CategoryRunning},
		{"VirtualRun", "", CategoryRunning},
		{"Wandeling", "Rondje park", CategoryWalking},
		{"Hike", "", CategoryWalking},
		{"Zwemmen", "", CategorySwimming},
		{"Training", "Padel met Joost", CategoryRacquet},
		{"Training", "Krachttraining", CategoryStrength},
		{"WeightTraining", "", CategoryStrength},
		{"Yoga", "Ochtend yoga", CategoryOther},
		{"", "", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.rawType+"/"+tt.rawName, func(t *testing.T) {
			got := c.Categorize(Record{RawType: tt.rawType, RawName: tt.rawName})
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestCategorizer_VirtualBeatsTraining tests that rule order resolves
// overlapping keywords.
func TestCategorizer_VirtualBeatsTraining(t *testing.T) {
	c := NewCategorizer()
	got := c.Categorize(Record{RawType: "Training", RawName: "Virtual training session"})
	assert.Equal(t, CategoryIndoorCycling, got)
}

// TestCategorizer_CaseAndAccents tests folded matching.
func TestCategorizer_CaseAndAccents(t *testing.T) {
	c := NewCategorizer()
	assert.Equal(t, CategorySwimming, c.Categorize(Record{RawType: "ZWEMMEN"}))
	assert.Equal(t, CategoryCycling, c.Categorize(Record{RawType: "Vélo", RawName: "BIKE"}))
}

// TestCategorizer_ExtraRulesFirst tests that configured rules take precedence.
func TestCategorizer_ExtraRulesFirst(t *testing.T) {
	c := NewCategorizer(KeywordRule("bootcamp", CategoryStrength, "Bootcamp Ride"))
	assert.Equal(t, CategoryStrength, c.Categorize(Record{RawType: "Ride", RawName: "bootcamp ride"}))
	assert.Equal(t, CategoryCycling, c.Categorize(Record{RawType: "Ride", RawName: "Morning"}))
	assert.Len(t, c.Rules(), len(DefaultRules())+1)
	assert.Equal(t, "bootcamp", c.Rules()[0].Name)
}

// TestCategorizer_Apply tests that Apply returns copies and leaves input alone.
func TestCategorizer_Apply(t *testing.T) {
	c := NewCategorizer()
	in := []Record{{ID: "1", RawType: "Run"}, {ID: "2", RawType: "Zwemmen"}}

	out := c.Apply(in)
	require.Len(t, out, 2)
	assert.Equal(t, CategoryRunning, out[0].Category)
	assert.Equal(t, CategorySwimming, out[1].Category)
	assert.Empty(t, in[0].Category)
	assert.Empty(t, in[1].Category)
}

// TestCategorizer_TotalAndStable tests that arbitrary input always yields one
// known category and the same one on every call.
func TestCategorizer_TotalAndStable(t *testing.T) {
	faker := gofakeit.New(42)
	c := NewCategorizer()
	for i := 0; i < 500; i++ {
		r := Record{RawType: faker.Word(), RawName: faker.Sentence(4)}
		first := c.Categorize(r)
		assert.True(t, first.Valid(), "category %q", first)
		assert.Equal(t, first, c.Categorize(r))
	}
}

// TestParseCategory tests category parsing from config values.
func TestParseCategory(t *testing.T) {
	got, err := ParseCategory("Indoor cycling")
	require.NoError(t, err)
	assert.Equal(t, CategoryIndoorCycling, got)

	got, err = ParseCategory("RUNNING")
	require.NoError(t, err)
	assert.Equal(t, CategoryRunning, got)

	_, err = ParseCategory("curling")
	assert.Error(t, err)
}
