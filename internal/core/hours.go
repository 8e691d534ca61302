package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Hours holds the hours worked exactly as supplied or stored. The text is
// kept raw so malformed values survive a round trip; arithmetic goes
// through Decimal, which treats anything unparseable as zero.
type Hours string

// MaxHours is the most a single entry may log.
const MaxHours = 24

const (
	maxHoursText  = 32
	maxHoursScale = 16
	maxHoursExp   = 2
)

// ErrInvalidHours marks numeric hours that cannot be recorded.
var ErrInvalidHours = errors.New("invalid hours")

var maxHoursDecimal = decimal.NewFromInt(MaxHours)

// HoursOf formats a decimal into Hours.
func HoursOf(d decimal.Decimal) Hours {
	return Hours(d.String())
}

func (h Hours) IsEmpty() bool {
	return strings.TrimSpace(string(h)) == ""
}

// Parse returns the numeric value and whether the text was a number.
// Only a dot separates decimals. Text that is too long or carries an
// exponent beyond a few places is not treated as a number, so formatting
// a stored value stays cheap.
func (h Hours) Parse() (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(h))
	if s == "" || len(s) > maxHoursText {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp > maxHoursExp || exp < -maxHoursScale {
		return decimal.Zero, false
	}
	return d, true
}

// Check rejects hours that look numeric but cannot be recorded. Empty and
// plainly non-numeric text passes.
func (h Hours) Check() error {
	s := strings.TrimSpace(string(h))
	if s == "" {
		return nil
	}
	if d, ok := h.Parse(); ok {
		switch {
		case d.IsNegative():
			return ErrNegativeHours
		case d.GreaterThan(maxHoursDecimal):
			return fmt.Errorf("%w: more than %d in one entry", ErrInvalidHours, MaxHours)
		}
		return nil
	}
	if strings.Contains(s, ",") {
		if _, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ".")); err == nil {
			return fmt.Errorf("%w: use a dot as the decimal separator", ErrInvalidHours)
		}
	}
	if _, err := decimal.NewFromString(s); err == nil {
		return fmt.Errorf("%w: out of range", ErrInvalidHours)
	}
	return nil
}

// Decimal is the lenient numeric value: missing or non-numeric hours are zero.
func (h Hours) Decimal() decimal.Decimal {
	d, _ := h.Parse()
	return d
}

func (h Hours) String() string {
	return string(h)
}

// MarshalJSON writes numeric hours as a JSON number, empty hours as null
// and anything else as the original string.
func (h Hours) MarshalJSON() ([]byte, error) {
	if h.IsEmpty() {
		return []byte("null"), nil
	}
	if d, ok := h.Parse(); ok {
		return []byte(d.String()), nil
	}
	return json.Marshal(string(h))
}

// UnmarshalJSON accepts a number, a string or null.
func (h *Hours) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*h = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("hours: %w", err)
		}
		*h = Hours(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("hours: %w", err)
		}
		*h = Hours(n.String())
		return nil
	}
}
