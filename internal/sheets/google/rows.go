package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"timesheet/internal/core"
)

// Column order of the time entries tab, A through L.
var header = []any{
	"Record ID", "Entry ID", "user_id", "Date", "Time In", "Time Out",
	"Hours", "Description", "Win of Day", "Tomorrow Plan", "Created At", "Updated At",
}

const (
	colID = iota
	colEntryID
	colUser
	colDate
	colTimeIn
	colTimeOut
	colHours
	colDescription
	colWin
	colPlan
	colCreated
	colUpdated
	columnCount
)

func toRow(e core.Entry) []any {
	var hours any = e.Hours.String()
	if d, ok := e.Hours.Parse(); ok {
		hours = d.InexactFloat64()
	}
	return []any{
		e.ID, e.EntryID, e.UserID, e.Date, e.TimeIn, e.TimeOut,
		hours, e.Description, e.WinOfDay, e.TomorrowPlan,
		stamp(e.CreatedAt), stamp(e.UpdatedAt),
	}
}

// fromRow decodes one sheet row. Header and blank rows report false.
func fromRow(row []any) (core.Entry, bool) {
	cols := make([]string, columnCount)
	for i := 0; i < len(row) && i < columnCount; i++ {
		cols[i] = cell(row[i])
	}
	if cols[colID] == "" || cols[colID] == header[colID] {
		return core.Entry{}, false
	}
	return core.Entry{
		ID:           cols[colID],
		EntryID:      cols[colEntryID],
		UserID:       cols[colUser],
		Date:         cols[colDate],
		TimeIn:       cols[colTimeIn],
		TimeOut:      cols[colTimeOut],
		Hours:        core.Hours(cols[colHours]),
		Description:  cols[colDescription],
		WinOfDay:     cols[colWin],
		TomorrowPlan: cols[colPlan],
		CreatedAt:    parseStamp(cols[colCreated]),
		UpdatedAt:    parseStamp(cols[colUpdated]),
	}, true
}

// cell renders an unformatted value. Numbers come back as float64.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseStamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// a1 builds an A1 range on a named tab, quoting the tab name.
func a1(sheet, cells string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}

func rowRange(sheet string, row int) string {
	return a1(sheet, fmt.Sprintf("A%d:L%d", row, row))
}
