// Package timefmt formats run durations for display.
package timefmt

import (
	"fmt"
	"time"

	"github.com/verte-zerg/timeit/internal/model"
)

// DefaultPlaceholder is shown for absent values when Options.Placeholder is empty.
const DefaultPlaceholder = "-:--:--.---"

// Options controls duration formatting.
type Options struct {
	// Sign prefixes non-negative values with "+". Negative values always get "-".
	Sign bool
	// Compact drops the hour field while it is zero.
	Compact bool
	// Placeholder replaces absent values.
	Placeholder string
}

// Duration formats d as H:MM:SS.mmm. Sub-millisecond precision is truncated.
func Duration(d time.Duration, opts Options) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	} else if opts.Sign {
		sign = "+"
	}
	ms := d.Milliseconds()
	hours := ms / 3600000
	ms -= hours * 3600000
	minutes := ms / 60000
	ms -= minutes * 60000
	seconds := ms / 1000
	ms -= seconds * 1000

	if opts.Compact && hours == 0 {
		return fmt.Sprintf("%s%02d:%02d.%03d", sign, minutes, seconds, ms)
	}
	return fmt.Sprintf("%s%d:%02d:%02d.%03d", sign, hours, minutes, seconds, ms)
}

// Null formats n, or returns the placeholder when it is absent.
func Null(n model.NullDuration, opts Options) string {
	if !n.Valid {
		if opts.Placeholder != "" {
			return opts.Placeholder
		}
		return DefaultPlaceholder
	}
	return Duration(n.Duration, opts)
}
