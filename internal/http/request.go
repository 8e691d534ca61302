package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"timesheet/internal/core"
)

const maxBodyBytes = 1 << 20

var errBadBody = errors.New("malformed request body")

// entryFields are the form keys an entry is read from. JSON bodies use the
// same names.
var entryFields = struct {
	Date, TimeIn, TimeOut, Hours, Description, WinOfDay, TomorrowPlan string
}{"date", "timeIn", "timeOut", "hours", "description", "winOfDay", "tomorrowPlan"}

// decodeEntry reads an entry from a JSON or form-encoded body. Field
// validation is left to the service.
func decodeEntry(w http.ResponseWriter, r *http.Request) (core.Entry, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if isJSON(r) {
		var e core.Entry
		if err := decodeJSON(r.Body, &e); err != nil {
			return core.Entry{}, err
		}
		return e, nil
	}
	if err := r.ParseForm(); err != nil {
		return core.Entry{}, fmt.Errorf("%w: %v", errBadBody, err)
	}
	return entryFromForm(r.PostForm), nil
}

func entryFromForm(form url.Values) core.Entry {
	return core.Entry{
		Date:         form.Get(entryFields.Date),
		TimeIn:       form.Get(entryFields.TimeIn),
		TimeOut:      form.Get(entryFields.TimeOut),
		Hours:        core.Hours(form.Get(entryFields.Hours)),
		Description:  form.Get(entryFields.Description),
		WinOfDay:     form.Get(entryFields.WinOfDay),
		TomorrowPlan: form.Get(entryFields.TomorrowPlan),
	}
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// decodeJSON decodes exactly one JSON value from body into v.
func decodeJSON(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errBadBody)
	}
	return nil
}

// parseRange reads the startDate and endDate query parameters.
func parseRange(query url.Values) core.DateRange {
	return core.DateRange{
		Start: strings.TrimSpace(query.Get("startDate")),
		End:   strings.TrimSpace(query.Get("endDate")),
	}
}
