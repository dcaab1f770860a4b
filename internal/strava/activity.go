package strava

import (
	"strconv"
	"strings"
	"time"

	"sportdash/internal/activity"
	"sportdash/internal/storage"
)

// Activity is the summary activity returned by /athlete/activities.
type Activity struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Type               string  `json:"type"`
	SportType          string  `json:"sport_type"`
	StartDate          string  `json:"start_date"`
	StartDateLocal     string  `json:"start_date_local"`
	Timezone           string  `json:"timezone"`
	Distance           float64 `json:"distance"`    // meters
	MovingTime         int     `json:"moving_time"` // seconds
	ElapsedTime        int     `json:"elapsed_time"`
	TotalElevationGain float64 `json:"total_elevation_gain"`
	AverageSpeed       float64 `json:"average_speed"` // m/s
	HasHeartrate       bool    `json:"has_heartrate"`
	AverageHeartrate   float64 `json:"average_heartrate"`
	GearID             string  `json:"gear_id"`
	Gear               *Gear   `json:"gear,omitempty"`
}

// Gear is the equipment attached to detailed activities.
type Gear struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// typeNames maps API sport types to the names the Dutch export uses.
var typeNames = map[string]string{
	"Ride":           "Fietsrit",
	"GravelRide":     "Fietsrit",
	"VirtualRide":    "Virtuele fietsrit",
	"Run":            "Hardloopsessie",
	"TrailRun":       "Hardloopsessie",
	"VirtualRun":     "Virtuele hardloopsessie",
	"Walk":           "Wandeling",
	"Hike":           "Wandeling",
	"WeightTraining": "Training",
	"Workout":        "Training",
	"Swim":           "Zwemmen",
}

// TypeName returns the export name for an API type, or the type itself.
func TypeName(apiType string) string {
	if name, ok := typeNames[apiType]; ok {
		return name
	}
	return apiType
}

// LocalStart returns the wall-clock start time. The API encodes local time
// with a Z suffix, so the clock fields are taken as-is and placed in loc.
func (a Activity) LocalStart(loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	raw := a.StartDateLocal
	if raw == "" {
		raw = a.StartDate
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.In(loc), true
		}
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), true
}

func (a Activity) sportType() string {
	if a.SportType != "" {
		return a.SportType
	}
	return a.Type
}

// ToRawRow converts an API activity to a row in the stored Dutch layout:
// comma decimals, "4 jan 2026, 09:28:00" dates and the speed in m/s as the
// export has it.
func ToRawRow(a Activity, loc *time.Location) activity.RawRow {
	row := make(activity.RawRow, len(storage.DefaultHeader))
	for _, h := range storage.DefaultHeader {
		row[h] = ""
	}
	set := func(f activity.Field, v string) {
		if col, ok := activity.ColumnFor(storage.DefaultHeader, f); ok {
			row[col] = v
		}
	}

	if a.ID != 0 {
		set(activity.FieldID, strconv.FormatInt(a.ID, 10))
	}
	if start, ok := a.LocalStart(loc); ok {
		set(activity.FieldDate, activity.FormatDutchDate(start))
	}
	set(activity.FieldName, strings.TrimSpace(a.Name))
	set(activity.FieldType, TypeName(a.sportType()))
	if a.MovingTime > 0 {
		set(activity.FieldMovingTime, strconv.Itoa(a.MovingTime))
	}
	if a.ElapsedTime > 0 {
		set(activity.FieldElapsedTime, strconv.Itoa(a.ElapsedTime))
	}
	set(activity.FieldDistance, activity.FormatDecimal(a.Distance/1000, 2))
	set(activity.FieldElevation, activity.FormatDecimal(a.TotalElevationGain, 1))
	if a.AverageSpeed > 0 {
		set(activity.FieldSpeed, activity.FormatDecimal(a.AverageSpeed, 3))
	}
	if a.HasHeartrate && a.AverageHeartrate > 0 {
		set(activity.FieldHeartRate, activity.FormatDecimal(a.AverageHeartrate, 1))
	}
	if a.Gear != nil && a.Gear.Name != "" {
		set(activity.FieldGear, a.Gear.Name)
	}
	return row
}
