package analytics

import (
	"fmt"
	"time"

	"sportdash/internal/activity"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

var idSeq int

func rec(date time.Time, c activity.Category, distKm float64, secs int) activity.Record {
	idSeq++
	r := activity.Record{
		ID:            fmt.Sprintf("r%04d", idSeq),
		Date:          date,
		RawType:       string(c),
		DistanceKm:    distKm,
		MovingTimeSec: secs,
		Category:      c,
	}
	if secs > 0 && distKm > 0 {
		v := distKm / (float64(secs) / 3600)
		r.AvgSpeedKmh = &v
		r.SpeedDerived = true
	}
	return r
}

func withSpeed(r activity.Record, kmh float64) activity.Record {
	r.AvgSpeedKmh = &kmh
	r.SpeedDerived = false
	return r
}

func withHR(r activity.Record, bpm float64) activity.Record {
	r.AvgHeartRate = &bpm
	return r
}

func withGear(r activity.Record, gear string) activity.Record {
	r.Gear = gear
	return r
}

func catPtr(c activity.Category) *activity.Category {
	return &c
}
