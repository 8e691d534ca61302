package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"

	// UndatedKey groups entries whose date cannot be parsed.
	UndatedKey   = "0000-00"
	UndatedLabel = "Undated"
)

var ErrMissingRange = errors.New("start date and end date are required")

// DateRange is a caller-supplied invoice period. Both bounds are exclusive.
type DateRange struct {
	Start string `json:"startDate"`
	End   string `json:"endDate"`
}

// Trimmed returns r with surrounding whitespace removed from both bounds.
func (r DateRange) Trimmed() DateRange {
	return DateRange{Start: strings.TrimSpace(r.Start), End: strings.TrimSpace(r.End)}
}

func (r DateRange) Validate() error {
	if strings.TrimSpace(r.Start) == "" || strings.TrimSpace(r.End) == "" {
		return ErrMissingRange
	}
	if _, err := ParseDate(r.Start); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if _, err := ParseDate(r.End); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	return nil
}

// Contains reports whether date lies strictly between Start and End.
// An entry dated exactly on either boundary is outside the range.
func (r DateRange) Contains(date string) bool {
	date = strings.TrimSpace(date)
	return date > r.Start && date < r.End
}

// Label renders the period with the boundary strings verbatim.
func (r DateRange) Label() string {
	return r.Start + " to " + r.End
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: want YYYY-MM-DD", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate renders a time as a YYYY-MM-DD calendar day.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// MonthKey returns the zero-padded year-month of a date, e.g. "2024-03".
func MonthKey(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return UndatedKey
	}
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// MonthLabel returns the human month of a date, e.g. "March 2024".
func MonthLabel(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return UndatedLabel
	}
	return t.Month().String() + " " + strconv.Itoa(t.Year())
}

// parseClock parses HH:MM into minutes after midnight.
func parseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("%w %q: want HH:MM", ErrInvalidTime, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w %q: want HH:MM", ErrInvalidTime, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || len(mm) != 2 {
		return 0, fmt.Errorf("%w %q: want HH:MM", ErrInvalidTime, s)
	}
	return h*60 + m, nil
}

// CalculateHours returns the span between two clock times with two
// decimals. A time out earlier than the time in wraps past midnight.
func CalculateHours(timeIn, timeOut string) (string, error) {
	in, err := parseClock(timeIn)
	if err != nil {
		return "", err
	}
	out, err := parseClock(timeOut)
	if err != nil {
		return "", err
	}
	minutes := out - in
	if minutes < 0 {
		minutes += 24 * 60
	}
	return strconv.FormatFloat(float64(minutes)/60, 'f', 2, 64), nil
}
