package storage

import (
	"fmt"
	"testing"

	"sportdash/internal/activity"
)

func createBenchStorage(b *testing.B) *Storage {
	b.Helper()
	store, err := New(b.TempDir())
	if err != nil {
		b.Fatalf("failed to create bench storage: %v", err)
	}
	return store
}

func benchRows(n, offset int) []activity.RawRow {
	rows := make([]activity.RawRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, activity.RawRow{
			"Activiteits-ID":       fmt.Sprintf("%d", offset+i),
			"Datum van activiteit": fmt.Sprintf("%d jan 2025, 09:00:00", i%28+1),
			"Activiteitstype":      "Fietsrit",
			"Afstand":              "42,19",
			"Beweegtijd":           "5400",
		})
	}
	return rows
}

// BenchmarkLoadActivities measures CSV loading with varying sizes
func BenchmarkLoadActivities(b *testing.B) {
	for _, size := range []int{100, 1000, 5000} {
		b.Run(fmt.Sprintf("size_%d", size), func(b *testing.B) {
			store := createBenchStorage(b)
			if _, err := store.AppendRows(benchRows(size, 0), "import"); err != nil {
				b.Fatalf("AppendRows failed: %v", err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := store.LoadActivities(); err != nil {
					b.Fatalf("LoadActivities failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkAppendRows measures a typical fetch of 30 rows onto a large log
func BenchmarkAppendRows(b *testing.B) {
	store := createBenchStorage(b)
	if _, err := store.AppendRows(benchRows(2000, 0), "import"); err != nil {
		b.Fatalf("AppendRows failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := store.AppendRows(benchRows(30, 10000+i*30), "fetch"); err != nil {
			b.Fatalf("AppendRows failed: %v", err)
		}
	}
}
