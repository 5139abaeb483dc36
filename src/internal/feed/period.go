package feed

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParsePeriod coerces an update period given in seconds to a positive float.
// Numbers of any kind, numeric strings and time.Duration are accepted.
// It returns false for anything else, including NaN and values <= 0.
func ParsePeriod(v any) (float64, bool) {
	var period float64

	switch p := v.(type) {
	case nil, bool:
		return 0, false
	case time.Duration:
		period = p.Seconds()
	case float64:
		period = p
	case float32:
		period = float64(p)
	case int:
		period = float64(p)
	case int8:
		period = float64(p)
	case int16:
		period = float64(p)
	case int32:
		period = float64(p)
	case int64:
		period = float64(p)
	case uint:
		period = float64(p)
	case uint8:
		period = float64(p)
	case uint16:
		period = float64(p)
	case uint32:
		period = float64(p)
	case uint64:
		period = float64(p)
	case string:
		return parsePeriodString(p)
	case []byte:
		return parsePeriodString(string(p))
	case fmt.Stringer:
		return parsePeriodString(p.String())
	default:
		return 0, false
	}

	return positive(period)
}

func parsePeriodString(s string) (float64, bool) {
	period, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return positive(period)
}

func positive(period float64) (float64, bool) {
	if math.IsNaN(period) || period <= 0 {
		return 0, false
	}
	return period, true
}

func unixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)
}

func fromUnixSeconds(s float64) time.Time {
	sec, frac := math.Modf(s)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

func formatUnixSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
