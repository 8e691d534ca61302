package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// Entry is one logged work session.
	Entry struct {
		ID           string    `json:"id"`
		EntryID      string    `json:"entryId,omitempty"`
		UserID       string    `json:"userId,omitempty"`
		Date         string    `json:"date"`
		TimeIn       string    `json:"timeIn"`
		TimeOut      string    `json:"timeOut"`
		Hours        Hours     `json:"hours"`
		Description  string    `json:"description"`
		WinOfDay     string    `json:"winOfDay,omitempty"`
		TomorrowPlan string    `json:"tomorrowPlan,omitempty"`
		CreatedAt    time.Time `json:"createdAt,omitzero"`
		UpdatedAt    time.Time `json:"updatedAt,omitzero"`
	}
)

// MaxDescriptionLen caps the description of an entry.
const MaxDescriptionLen = 2000

var (
	ErrMissingField  = errors.New("missing required field")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidTime   = errors.New("invalid time")
	ErrNegativeHours = errors.New("hours cannot be negative")
	ErrTooLong       = errors.New("description too long")
)

// IsValidation reports whether err comes from entry or range validation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidTime) ||
		errors.Is(err, ErrNegativeHours) ||
		errors.Is(err, ErrInvalidHours) ||
		errors.Is(err, ErrTooLong) ||
		errors.Is(err, ErrMissingRange)
}

// Normalize trims every text field and derives Hours from the time span
// when no hours were supplied.
func (e *Entry) Normalize() {
	e.Date = strings.TrimSpace(e.Date)
	e.TimeIn = strings.TrimSpace(e.TimeIn)
	e.TimeOut = strings.TrimSpace(e.TimeOut)
	e.Hours = Hours(strings.TrimSpace(string(e.Hours)))
	e.Description = strings.TrimSpace(e.Description)
	e.WinOfDay = strings.TrimSpace(e.WinOfDay)
	e.TomorrowPlan = strings.TrimSpace(e.TomorrowPlan)

	if e.Hours.IsEmpty() {
		if h, err := CalculateHours(e.TimeIn, e.TimeOut); err == nil {
			e.Hours = Hours(h)
		}
	}
}

func (e Entry) Validate() error {
	switch {
	case strings.TrimSpace(e.Date) == "":
		return fmt.Errorf("%w: date", ErrMissingField)
	case strings.TrimSpace(e.TimeIn) == "":
		return fmt.Errorf("%w: timeIn", ErrMissingField)
	case strings.TrimSpace(e.TimeOut) == "":
		return fmt.Errorf("%w: timeOut", ErrMissingField)
	case strings.TrimSpace(e.Description) == "":
		return fmt.Errorf("%w: description", ErrMissingField)
	}
	if _, err := ParseDate(e.Date); err != nil {
		return err
	}
	if _, err := parseClock(e.TimeIn); err != nil {
		return err
	}
	if _, err := parseClock(e.TimeOut); err != nil {
		return err
	}
	if len(e.Description) > MaxDescriptionLen {
		return fmt.Errorf("%w (max %d characters)", ErrTooLong, MaxDescriptionLen)
	}
	return e.Hours.Check()
}
