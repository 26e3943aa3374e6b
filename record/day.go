package record

import "time"

// Day is the YYYYMMDD key derived from a timestamp in UTC (spec.md §3).
// It is the unit of block granularity.
type Day int32

// DayOf returns the UTC day key for an epoch-nanosecond timestamp.
func DayOf(tsNanos uint64) Day {
	t := time.Unix(0, int64(tsNanos)).UTC()
	return Day(t.Year())*10000 + Day(t.Month())*100 + Day(t.Day())
}

// Start returns the epoch-nanosecond timestamp of midnight UTC on d.
func (d Day) Start() uint64 {
	year := int(d / 10000)
	month := int((d / 100) % 100)
	day := int(d % 100)
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return uint64(t.UnixNano())
}

// End returns the epoch-nanosecond timestamp of midnight UTC on the day
// after d, i.e. the exclusive upper bound of d's half-open range.
func (d Day) End() uint64 {
	return d.Start() + uint64(24*time.Hour)
}

// Next returns the following calendar day.
func (d Day) Next() Day {
	return DayOf(d.End())
}
