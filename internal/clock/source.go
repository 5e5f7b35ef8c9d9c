package clock

import "time"

// Source reports the current time. Successive readings must not go
// backwards.
type Source interface {
	Now() time.Time
}

// SystemSource reads the system clock. time.Now carries a monotonic
// reading, so differences are immune to wall-clock jumps.
type SystemSource struct{}

// Now implements Source.
func (SystemSource) Now() time.Time { return time.Now() }

// ManualSource is a virtual time source advanced by hand.
type ManualSource struct {
	current time.Time
}

// NewManualSource returns a ManualSource starting at start.
func NewManualSource(start time.Time) *ManualSource {
	return &ManualSource{current: start}
}

// Now implements Source.
func (s *ManualSource) Now() time.Time { return s.current }

// Advance moves the source forward. Negative values are ignored.
func (s *ManualSource) Advance(d time.Duration) {
	if d < 0 {
		return
	}
	s.current = s.current.Add(d)
}
