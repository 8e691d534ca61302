package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"

	"timesheet/internal/core"
	ports "timesheet/internal/sheets"
)

// fakeSheets serves the subset of the Sheets v4 REST API the client uses,
// backed by an in-memory grid.
type fakeSheets struct {
	mu      sync.Mutex
	rows    [][]any
	fail    bool
	deletes int
}

var rowRangeRe = regexp.MustCompile(`A(\d+):L\d+$`)

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		http.Error(w, `{"error":{"code":503,"message":"backend down"}}`, http.StatusServiceUnavailable)
		return
	}
	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req struct {
			Requests []struct {
				DeleteDimension struct {
					Range struct {
						SheetID    int64 `json:"sheetId"`
						StartIndex int   `json:"startIndex"`
						EndIndex   int   `json:"endIndex"`
					} `json:"range"`
				} `json:"deleteDimension"`
			} `json:"requests"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, q := range req.Requests {
			rg := q.DeleteDimension.Range
			if rg.SheetID == 7 && rg.StartIndex < len(f.rows) {
				f.rows = append(f.rows[:rg.StartIndex], f.rows[rg.EndIndex:]...)
				f.deletes++
			}
		}
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var vr struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.rows = append(f.rows, vr.Values...)
		_, _ = w.Write([]byte(`{"updates":{}}`))

	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		var vr struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&vr)
		m := rowRangeRe.FindStringSubmatch(path)
		n, _ := strconv.Atoi(m[1])
		for len(f.rows) < n {
			f.rows = append(f.rows, []any{})
		}
		f.rows[n-1] = vr.Values[0]
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		values := f.rows
		if strings.HasSuffix(path, "A1:L1") {
			values = values[:min(len(values), 1)]
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"values": values})

	case r.Method == http.MethodGet:
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1","sheets":[{"properties":{"sheetId":7,"title":"Time Entries"}}]}`))

	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	c, err := New(context.Background(), Config{SpreadsheetID: "sheet-1"},
		goption.WithEndpoint(srv.URL+"/"), goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c, fake
}

func entry(date, hours string) core.Entry {
	return core.Entry{Date: date, TimeIn: "09:00", TimeOut: "12:00", Hours: core.Hours(hours), Description: "work on " + date}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "x"})
	if !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}

func TestNew_InvalidOAuthClient(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "x", Credentials: Credentials{
		OAuthClientJSON: "invalid-json",
		OAuthTokenJSON:  `{"access_token":"test"}`,
	}})
	if err == nil || !strings.Contains(err.Error(), "oauth config") {
		t.Fatalf("expected oauth config error, got %v", err)
	}
}

func TestClientCreateListAndRange(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)
	if err := c.EnsureHeader(ctx); err != nil {
		t.Fatalf("ensure header: %v", err)
	}
	if len(fake.rows) != 1 || fake.rows[0][0] != "Record ID" {
		t.Fatalf("header not written: %v", fake.rows)
	}
	if err := c.EnsureHeader(ctx); err != nil || len(fake.rows) != 1 {
		t.Fatalf("header rewritten: %v err=%v", fake.rows, err)
	}

	for _, e := range []core.Entry{entry("2024-03-01", "1"), entry("2024-03-05", "1.005"), entry("2024-04-02", "2"), entry("2024-04-30", "3")} {
		if _, err := c.Create(ctx, "owner", e); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := c.Create(ctx, "other", entry("2024-03-10", "4")); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := c.ListEntries(ctx, "owner")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 4 || list[0].Date != "2024-04-30" || list[3].Date != "2024-03-01" {
		t.Fatalf("expected owner entries newest first, got %+v", list)
	}

	inRange, err := c.ListEntriesInRange(ctx, "owner", core.DateRange{Start: "2024-03-01", End: "2024-04-30"})
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(inRange) != 2 || inRange[0].Date != "2024-03-05" || inRange[1].Date != "2024-04-02" {
		t.Fatalf("expected interior entries oldest first, got %+v", inRange)
	}
	if inRange[0].Hours != "1.005" {
		t.Fatalf("hours lost precision: %q", inRange[0].Hours)
	}
	if inRange[0].ID == "" || !strings.HasPrefix(inRange[0].EntryID, "Entry ") || inRange[0].CreatedAt.IsZero() {
		t.Fatalf("identity not persisted: %+v", inRange[0])
	}
}

func TestClientUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)
	_ = c.EnsureHeader(ctx)
	a, _ := c.Create(ctx, "owner", entry("2024-03-05", "1"))
	b, _ := c.Create(ctx, "owner", entry("2024-03-06", "2"))

	a.Description = "rewritten"
	if _, err := c.UpdateEntry(ctx, "owner", a); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, _ := c.ListEntries(ctx, "owner")
	if list[1].Description != "rewritten" {
		t.Fatalf("update not applied: %+v", list)
	}
	if _, err := c.UpdateEntry(ctx, "owner", core.Entry{ID: "missing"}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := c.DeleteEntry(ctx, "other", a.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("delete by another user should be not found, got %v", err)
	}
	if err := c.DeleteEntry(ctx, "owner", a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ = c.ListEntries(ctx, "owner")
	if len(list) != 1 || list[0].ID != b.ID || fake.deletes != 1 {
		t.Fatalf("unexpected rows after delete: %+v", list)
	}
}

func TestClientMirrorUpserts(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)
	e := entry("2024-03-05", "1")
	e.ID, e.UserID, e.EntryID = "rec-1", "owner", "Entry 1"

	if err := c.Mirror(ctx, e); err != nil {
		t.Fatalf("mirror: %v", err)
	}
	e.Hours = "2.5"
	if err := c.Mirror(ctx, e); err != nil {
		t.Fatalf("mirror again: %v", err)
	}
	if len(fake.rows) != 1 {
		t.Fatalf("mirror should upsert, got %d rows", len(fake.rows))
	}
	list, _ := c.ListEntries(ctx, "owner")
	if len(list) != 1 || list[0].Hours != "2.5" {
		t.Fatalf("unexpected mirrored rows: %+v", list)
	}

	if err := c.Remove(ctx, "rec-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := c.Remove(ctx, "rec-1"); err != nil {
		t.Fatalf("removing an absent row should be fine: %v", err)
	}
}

func TestClientErrorsAreUnavailable(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)
	fake.fail = true

	if _, err := c.ListEntries(ctx, "owner"); !errors.Is(err, ports.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := c.Create(ctx, "owner", entry("2024-03-05", "1")); !errors.Is(err, ports.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := c.Ping(ctx); !errors.Is(err, ports.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	fake.fail = false
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestRowCodec(t *testing.T) {
	if _, ok := fromRow(header); ok {
		t.Fatal("header row must be skipped")
	}
	if _, ok := fromRow([]any{}); ok {
		t.Fatal("blank row must be skipped")
	}
	e, ok := fromRow([]any{"r1", "Entry 1", "owner", "2024-03-05", "09:00", "10:30", 1.5, "desc"})
	if !ok || e.Hours != "1.5" || e.Description != "desc" || e.WinOfDay != "" {
		t.Fatalf("unexpected short row decode: %+v", e)
	}
	row := toRow(core.Entry{ID: "r2", Hours: "n/a"})
	if row[colHours] != "n/a" {
		t.Fatalf("non-numeric hours should be written as text, got %v", row[colHours])
	}
	if got := a1("Bob's Hours", "A:L"); got != "'Bob''s Hours'!A:L" {
		t.Fatalf("a1 = %q", got)
	}
}
