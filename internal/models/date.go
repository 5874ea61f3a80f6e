package models

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Date is a timestamp that also decodes the zone-less forms some servers
// send ("2025-06-30T00:00:00", "2025-06-30"). Zone-less values are UTC.
// It encodes as RFC 3339.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// NewDate returns t as a *Date.
func NewDate(t time.Time) *Date {
	return &Date{Time: t}
}

// ParseDate parses any of the accepted layouts.
func ParseDate(raw string) (Date, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q", raw)
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("date must be a JSON string: %s", data)
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOrNil unwraps d for drivers that expect *time.Time.
func (d *Date) TimeOrNil() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// DateOrNil wraps a nullable column value.
func DateOrNil(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return NewDate(*t)
}
