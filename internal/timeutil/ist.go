package timeutil

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30). Billing days are
// counted in this zone.
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// Now returns the current time in IST
func Now() time.Time {
	return time.Now().In(IST)
}

// StartOfDay returns 00:00:00 in IST for the given time
func StartOfDay(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, IST)
}

// EndOfDay returns the last instant of the IST day containing t
func EndOfDay(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 23, 59, 59, 999999999, IST)
}

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006"
	LabelLayout    = "2 Jan"
)

// ParseDate accepts RFC 3339 timestamps, "2006-01-02 15:04:05" and plain
// dates. Values without an offset are read as IST.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	for _, layout := range []string{DateTimeLayout, "2006-01-02T15:04:05", "2006-01-02T15:04", DateLayout} {
		if t, err := time.ParseInLocation(layout, value, IST); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}

// DaysSince counts started 24h periods between start and now, never less
// than 1.
func DaysSince(start, now time.Time) int {
	if now.Before(start) {
		now = start
	}
	days := int(math.Ceil(now.Sub(start).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// RangeLabel renders a cycle span like "2 Jan - 5 Feb".
func RangeLabel(start, end time.Time) string {
	return start.In(IST).Format(LabelLayout) + " - " + end.In(IST).Format(LabelLayout)
}
