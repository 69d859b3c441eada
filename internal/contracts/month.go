package contracts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Month is a calendar month. The zero value means "missing date".
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf truncates t to its calendar month
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// dateLayouts 지원하는 컬럼 라벨 포맷 (순서대로 시도)
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006/01/02",
	"2006/01",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"Jan 2006",
	"January 2006",
	time.RFC3339,
}

// ParseMonth parses a date column label into its calendar month.
// ok is false when no known layout matches.
func ParseMonth(label string) (m Month, ok bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Month{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return MonthOf(t), true
		}
	}
	return Month{}, false
}

// IsZero reports whether the month is missing
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Time returns midnight UTC on the first day of the month
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the month n months later (n may be negative)
func (m Month) AddMonths(n int) Month {
	return MonthOf(m.Time().AddDate(0, n, 0))
}

// Next returns the following calendar month
func (m Month) Next() Month {
	return m.AddMonths(1)
}

// Before reports whether m is earlier than o
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// String formats the month as YYYY-MM, or "" when missing
func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MarshalJSON encodes the month as "YYYY-MM" or null
func (m Month) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts "YYYY-MM" (or any label ParseMonth accepts) and null
func (m *Month) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Month{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, ok := ParseMonth(s)
	if !ok {
		return fmt.Errorf("invalid month %q", s)
	}
	*m = parsed
	return nil
}
