package activity

import "time"

// RawRow is a single source row keyed by its column header.
type RawRow map[string]string

// Record is a normalized activity. Records are values: helpers that change
// a field return a copy.
type Record struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	RawType       string    `json:"raw_type"`
	RawName       string    `json:"raw_name"`
	DistanceKm    float64   `json:"distance_km"`
	MovingTimeSec int       `json:"moving_time_sec"`
	ElevationM    float64   `json:"elevation_m"`
	AvgHeartRate  *float64  `json:"avg_heart_rate,omitempty"`
	AvgSpeedKmh   *float64  `json:"avg_speed_kmh,omitempty"`
	SpeedDerived  bool      `json:"speed_derived,omitempty"`
	Gear          string    `json:"gear,omitempty"`
	Category      Category  `json:"category"`
}

// HasHeartRate reports whether the record carries a heart-rate value.
func (r Record) HasHeartRate() bool {
	return r.AvgHeartRate != nil
}

// Speed returns the average speed in km/h and whether it is known.
func (r Record) Speed() (float64, bool) {
	if r.AvgSpeedKmh == nil {
		return 0, false
	}
	return *r.AvgSpeedKmh, true
}

// Year returns the calendar year of the record date.
func (r Record) Year() int {
	return r.Date.Year()
}

// WithCategory returns a copy of r classified as c.
func (r Record) WithCategory(c Category) Record {
	r.Category = c
	return r
}

// MovingTime returns the moving time as a duration.
func (r Record) MovingTime() time.Duration {
	return time.Duration(r.MovingTimeSec) * time.Second
}

func floatPtr(v float64) *float64 {
	return &v
}
