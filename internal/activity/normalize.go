package activity

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// SpeedUnit selects how source speed values are interpreted.
type SpeedUnit string

const (
	SpeedUnitAuto SpeedUnit = "auto"
	SpeedUnitMPS  SpeedUnit = "mps"
	SpeedUnitKMH  SpeedUnit = "kmh"
)

// DefaultMPSThreshold is the magnitude below which an unverifiable speed is
// read as m/s in auto mode.
const DefaultMPSThreshold = 12.0

// recordNamespace seeds deterministic IDs for rows without an activity id.
var recordNamespace = uuid.MustParse("6f1c5d3a-8e2b-4c71-9a0d-2b7e4f9c1a55")

// ParseSpeedUnit validates a configured speed unit. Empty means auto.
func ParseSpeedUnit(s string) (SpeedUnit, error) {
	switch SpeedUnit(s) {
	case "", SpeedUnitAuto:
		return SpeedUnitAuto, nil
	case SpeedUnitMPS, SpeedUnitKMH:
		return SpeedUnit(s), nil
	default:
		return "", fmt.Errorf("unknown speed unit %q (want auto, mps or kmh)", s)
	}
}

// NormalizerOptions configures a Normalizer.
type NormalizerOptions struct {
	Location     *time.Location
	SpeedUnit    SpeedUnit
	MPSThreshold float64
}

// NormalizeResult is the outcome of normalizing a batch of rows.
type NormalizeResult struct {
	Records          []Record
	Rows             int
	Dropped          int
	SpeedConversions int
	// Issues combines every per-row problem. It is informational only.
	Issues error
}

// IssueList flattens Issues into messages.
func (r NormalizeResult) IssueList() []string {
	errs := multierr.Errors(r.Issues)
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

// Normalizer converts raw rows into records.
type Normalizer struct {
	opts NormalizerOptions
	log  logrus.FieldLogger
}

// NewNormalizer creates a normalizer. A nil logger falls back to the
// logrus standard logger.
func NewNormalizer(opts NormalizerOptions, log logrus.FieldLogger) *Normalizer {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.SpeedUnit == "" {
		opts.SpeedUnit = SpeedUnitAuto
	}
	if opts.MPSThreshold <= 0 {
		opts.MPSThreshold = DefaultMPSThreshold
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Normalizer{opts: opts, log: log}
}

// NormalizeRows validates the header before normalizing. It is the entry
// point for file based sources where the header is known up front.
func (n *Normalizer) NormalizeRows(header []string, rows []RawRow) (NormalizeResult, error) {
	if err := ValidateHeader(header); err != nil {
		return NormalizeResult{}, err
	}
	return n.Normalize(rows), nil
}

// Normalize converts rows into records. Individual bad rows never fail the
// batch: they are dropped or coerced and reported through Issues.
func (n *Normalizer) Normalize(rows []RawRow) NormalizeResult {
	res := NormalizeResult{
		Records: make([]Record, 0, len(rows)),
		Rows:    len(rows),
	}
	for i, row := range rows {
		rec, converted, issues, err := n.normalizeRow(i+1, row)
		res.Issues = multierr.Append(res.Issues, issues)
		if err != nil {
			res.Dropped++
			res.Issues = multierr.Append(res.Issues, err)
			continue
		}
		if converted {
			res.SpeedConversions++
		}
		res.Records = append(res.Records, rec)
	}
	if res.Dropped > 0 || res.SpeedConversions > 0 {
		n.log.WithFields(logrus.Fields{
			"rows":              res.Rows,
			"records":           len(res.Records),
			"dropped":           res.Dropped,
			"speed_conversions": res.SpeedConversions,
		}).Info("normalized activity rows")
	}
	return res
}

func (n *Normalizer) normalizeRow(line int, row RawRow) (rec Record, converted bool, issues error, err error) {
	fields := foldRow(row)

	rawDate, ok := lookup(fields, FieldDate)
	if !ok {
		return Record{}, false, nil, fmt.Errorf("row %d: missing date", line)
	}
	date, perr := ParseDate(rawDate, n.opts.Location)
	if perr != nil {
		return Record{}, false, nil, fmt.Errorf("row %d: %w", line, perr)
	}

	rec.Date = date
	rec.RawType, _ = lookup(fields, FieldType)
	rec.RawName, _ = lookup(fields, FieldName)
	rec.Gear, _ = lookup(fields, FieldGear)

	if v, ok := lookup(fields, FieldDistance); ok {
		d, derr := nonNegative(v)
		if derr != nil {
			issues = multierr.Append(issues, fmt.Errorf("row %d: distance: %w", line, derr))
		}
		rec.DistanceKm = d
	}

	timeField := FieldMovingTime
	if _, ok := lookup(fields, FieldMovingTime); !ok {
		timeField = FieldElapsedTime
	}
	if v, ok := lookup(fields, timeField); ok {
		secs, terr := ParseSeconds(v)
		switch {
		case terr != nil:
			issues = multierr.Append(issues, fmt.Errorf("row %d: moving time: %w", line, terr))
		case secs < 0:
			issues = multierr.Append(issues, fmt.Errorf("row %d: moving time: negative value %d", line, secs))
		default:
			rec.MovingTimeSec = secs
		}
	}

	if v, ok := lookup(fields, FieldElevation); ok {
		e, eerr := nonNegative(v)
		if eerr != nil {
			issues = multierr.Append(issues, fmt.Errorf("row %d: elevation: %w", line, eerr))
		}
		rec.ElevationM = e
	}

	if v, ok := lookup(fields, FieldHeartRate); ok {
		if hr, herr := ParseDecimal(v); herr == nil && hr > 0 {
			rec.AvgHeartRate = floatPtr(hr)
		}
	}

	if v, ok := lookup(fields, FieldSpeed); ok {
		if raw, serr := ParseDecimal(v); serr == nil && raw > 0 {
			kmh, conv := n.resolveSpeed(raw, rec.DistanceKm, rec.MovingTimeSec)
			if conv {
				converted = true
				n.log.WithFields(logrus.Fields{
					"row":  line,
					"raw":  raw,
					"kmh":  kmh,
					"mode": n.opts.SpeedUnit,
				}).Debug("speed converted from m/s to km/h")
			}
			rec.AvgSpeedKmh = floatPtr(kmh)
		}
	}
	if rec.AvgSpeedKmh == nil && rec.MovingTimeSec > 0 && rec.DistanceKm > 0 {
		rec.AvgSpeedKmh = floatPtr(rec.DistanceKm / (float64(rec.MovingTimeSec) / 3600))
		rec.SpeedDerived = true
	}

	if id, ok := lookup(fields, FieldID); ok {
		rec.ID = id
	} else {
		rec.ID = syntheticID(rec)
	}

	return rec, converted, issues, nil
}

// resolveSpeed returns the speed in km/h and whether a m/s conversion happened.
func (n *Normalizer) resolveSpeed(raw, distanceKm float64, seconds int) (float64, bool) {
	switch n.opts.SpeedUnit {
	case SpeedUnitMPS:
		return raw * 3.6, true
	case SpeedUnitKMH:
		return raw, false
	}

	if distanceKm > 0 && seconds > 0 {
		derived := distanceKm / (float64(seconds) / 3600)
		if math.Abs(raw*3.6-derived) < math.Abs(raw-derived) {
			return raw * 3.6, true
		}
		return raw, false
	}
	if raw < n.opts.MPSThreshold {
		return raw * 3.6, true
	}
	return raw, false
}

func nonNegative(s string) (float64, error) {
	v, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %s", s)
	}
	return v, nil
}

func syntheticID(r Record) string {
	key := r.Date.Format(time.RFC3339) + "|" + r.RawType + "|" + r.RawName + "|" +
		strconv.FormatFloat(r.DistanceKm, 'f', 3, 64)
	return uuid.NewSHA1(recordNamespace, []byte(key)).String()
}
