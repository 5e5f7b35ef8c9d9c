package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// NullDuration is a duration that may be absent. It is stored as integer
// milliseconds, or NULL when not valid.
type NullDuration struct {
	Duration time.Duration
	Valid    bool
}

// ValidDuration wraps d as a present value.
func ValidDuration(d time.Duration) NullDuration {
	return NullDuration{Duration: d, Valid: true}
}

// Millis builds a NullDuration from milliseconds. Nil is absent.
func Millis(ms *int64) NullDuration {
	if ms == nil {
		return NullDuration{}
	}
	return ValidDuration(time.Duration(*ms) * time.Millisecond)
}

// MillisPtr returns the value in milliseconds, or nil when absent.
func (n NullDuration) MillisPtr() *int64 {
	if !n.Valid {
		return nil
	}
	ms := n.Duration.Milliseconds()
	return &ms
}

// Scan implements sql.Scanner.
func (n *NullDuration) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*n = NullDuration{}
	case int64:
		*n = ValidDuration(time.Duration(v) * time.Millisecond)
	case float64:
		*n = ValidDuration(time.Duration(v * float64(time.Millisecond)))
	default:
		return fmt.Errorf("cannot scan %T into NullDuration", value)
	}
	return nil
}

// Value implements driver.Valuer.
func (n NullDuration) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Duration.Milliseconds(), nil
}
