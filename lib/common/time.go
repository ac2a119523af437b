package common

import (
	"fmt"
	"time"
)

const (
	TIMEFORMAT_ISO8601 string = "2006-01-02T15:04:05.000000000Z07:00"
)

func FormatISO8601(t time.Time) string {
	return t.Format(TIMEFORMAT_ISO8601)
}

func NowISO8601() string {
	return FormatISO8601(time.Now())
}

func ParseISO8601(s string) (time.Time, error) {
	return time.Parse(TIMEFORMAT_ISO8601, s)
}

// FormatRemaining renders the time left until `deadline` seen from `now`,
// eg. "2d 03h 04m 05s". An elapsed deadline renders as "ended".
func FormatRemaining(now, deadline time.Time) string {
	d := deadline.Sub(now)
	if d <= 0 {
		return "ended"
	}

	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	return fmt.Sprintf("%dd %02dh %02dm %02ds", days, h, m, s)
}
