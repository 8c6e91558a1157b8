package catalog

import "time"

// TimeGrain is a totally ordered time bucket size.
type TimeGrain string

const (
	GrainMin15  TimeGrain = "min15"
	GrainHour   TimeGrain = "hour"
	GrainDay    TimeGrain = "day"
	GrainWeek   TimeGrain = "week"
	GrainMonth  TimeGrain = "month"
	GrainQuarter TimeGrain = "quarter"
	GrainYear   TimeGrain = "year"
)

// minutes is used to total-order grains by length.
var minutes = map[TimeGrain]int{
	GrainMin15:   15,
	GrainHour:    60,
	GrainDay:     60 * 24,
	GrainWeek:    60 * 24 * 7,
	GrainMonth:   60 * 24 * 30,
	GrainQuarter: 60 * 24 * 91,
	GrainYear:    60 * 24 * 365,
}

// Less orders grains by minute length, shortest first.
func (g TimeGrain) Less(other TimeGrain) bool {
	return minutes[g] < minutes[other]
}

// AtLeastDay reports whether the grain is day-granularity or coarser.
func (g TimeGrain) AtLeastDay() bool {
	return minutes[g] >= minutes[GrainDay]
}

// Truncate floors t to the nearest grain boundary. min15 rounds to the
// closest 15-minute mark rather than truncating.
func (g TimeGrain) Truncate(t time.Time) time.Time {
	t = t.UTC()
	switch g {
	case GrainMin15:
		m := t.Minute()
		rounded := ((m + 7) / 15) * 15
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
		return t.Add(time.Duration(rounded) * time.Minute)
	case GrainHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
	case GrainDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case GrainWeek:
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		wd := int(d.Weekday())
		return d.AddDate(0, 0, -wd)
	case GrainMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case GrainQuarter:
		q := ((int(t.Month()) - 1) / 3) * 3
		return time.Date(t.Year(), time.Month(q+1), 1, 0, 0, 0, 0, time.UTC)
	case GrainYear:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return t
	}
}

// Next advances t by one grain.
func (g TimeGrain) Next(t time.Time) time.Time {
	switch g {
	case GrainMin15:
		return t.Add(15 * time.Minute)
	case GrainHour:
		return t.Add(time.Hour)
	case GrainDay:
		return t.AddDate(0, 0, 1)
	case GrainWeek:
		return t.AddDate(0, 0, 7)
	case GrainMonth:
		return t.AddDate(0, 1, 0)
	case GrainQuarter:
		return t.AddDate(0, 3, 0)
	case GrainYear:
		return t.AddDate(1, 0, 0)
	default:
		return t
	}
}

// TruncateDatetime is an alias used by the x-axis strategies when mapping a
// rollup's x-axis through a grain.
func (g TimeGrain) TruncateDatetime(t time.Time) time.Time {
	return g.Truncate(t)
}
