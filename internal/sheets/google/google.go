package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"timesheet/internal/core"
	ports "timesheet/internal/sheets"
)

// DefaultSheetName is the tab used when none is configured.
const DefaultSheetName = "Time Entries"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	now           func() time.Time

	mu      sync.Mutex
	sheetID *int64 // numeric tab id, resolved on first delete
}

// Ensure interface conformance
var (
	_ ports.EntryWriter   = (*Client)(nil)
	_ ports.EntryLister   = (*Client)(nil)
	_ ports.RangeLister   = (*Client)(nil)
	_ ports.EntryUpdater  = (*Client)(nil)
	_ ports.EntryDeleter  = (*Client)(nil)
	_ ports.HealthChecker = (*Client)(nil)
)

// Config addresses one tab of one spreadsheet.
type Config struct {
	SpreadsheetID string
	SheetName     string
	Credentials   Credentials
}

// New creates a Sheets client. Extra client options replace the credential
// lookup entirely, e.g. an endpoint plus an HTTP client for a local fake.
func New(ctx context.Context, cfg Config, extra ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	var opts []goption.ClientOption
	if len(extra) == 0 {
		creds, err := cfg.Credentials.options(ctx)
		if err != nil {
			return nil, err
		}
		opts = creds
	}
	opts = append(opts, extra...)

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = DefaultSheetName
	}
	slog.InfoContext(ctx, "Google Sheets service created", "sheet", sheet)
	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheet: sheet, now: time.Now}, nil
}

// EnsureHeader writes the column header into an empty tab.
func (c *Client) EnsureHeader(ctx context.Context) error {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, a1(c.sheet, "A1:L1")).Context(ctx).Do()
	if err != nil {
		return ports.Unavailable("read header", err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}
	vr := &gsheet.ValueRange{Values: [][]any{header}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rowRange(c.sheet, 1), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return ports.Unavailable("write header", err)
	}
	return nil
}

func (c *Client) Create(ctx context.Context, userID string, e core.Entry) (core.Entry, error) {
	ports.Stamp(&e, userID, uuid.NewString(), c.now())
	if err := c.append(ctx, e); err != nil {
		return core.Entry{}, err
	}
	return e, nil
}

func (c *Client) ListEntries(ctx context.Context, userID string) ([]core.Entry, error) {
	rows, err := c.readAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.Entry, 0, len(rows))
	for _, r := range rows {
		if r.entry.UserID == userID {
			out = append(out, r.entry)
		}
	}
	ports.SortNewest(out)
	return out, nil
}

func (c *Client) ListEntriesInRange(ctx context.Context, userID string, r core.DateRange) ([]core.Entry, error) {
	rows, err := c.readAll(ctx)
	if err != nil {
		return nil, err
	}
	all := make([]core.Entry, len(rows))
	for i, row := range rows {
		all[i] = row.entry
	}
	out := ports.InRange(all, userID, r)
	ports.SortOldest(out)
	return out, nil
}

func (c *Client) UpdateEntry(ctx context.Context, userID string, e core.Entry) (core.Entry, error) {
	r, err := c.find(ctx, e.ID)
	if err != nil {
		return core.Entry{}, err
	}
	if r.entry.UserID != userID {
		return core.Entry{}, ports.ErrNotFound
	}
	e.EntryID = r.entry.EntryID
	e.UserID = userID
	e.CreatedAt = r.entry.CreatedAt
	e.UpdatedAt = c.now()
	if err := c.write(ctx, r.number, e); err != nil {
		return core.Entry{}, err
	}
	return e, nil
}

func (c *Client) DeleteEntry(ctx context.Context, userID, id string) error {
	r, err := c.find(ctx, id)
	if err != nil {
		return err
	}
	if r.entry.UserID != userID {
		return ports.ErrNotFound
	}
	return c.deleteRow(ctx, r.number)
}

// Mirror upserts e keyed by its record ID, keeping every field as given.
func (c *Client) Mirror(ctx context.Context, e core.Entry) error {
	r, err := c.find(ctx, e.ID)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return c.append(ctx, e)
	case err != nil:
		return err
	}
	return c.write(ctx, r.number, e)
}

// Remove deletes the row with the given record ID. A missing row is not an error.
func (c *Client) Remove(ctx context.Context, id string) error {
	r, err := c.find(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return c.deleteRow(ctx, r.number)
}

// Ping checks that the spreadsheet is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	return ports.Unavailable("ping spreadsheet", err)
}

type sheetRow struct {
	number int // 1-based sheet row
	entry  core.Entry
}

func (c *Client) readAll(ctx context.Context) ([]sheetRow, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, a1(c.sheet, "A:L")).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, ports.Unavailable("read "+c.sheet, err)
	}
	out := make([]sheetRow, 0, len(resp.Values))
	for i, row := range resp.Values {
		e, ok := fromRow(row)
		if !ok {
			continue
		}
		out = append(out, sheetRow{number: i + 1, entry: e})
	}
	return out, nil
}

func (c *Client) find(ctx context.Context, id string) (sheetRow, error) {
	rows, err := c.readAll(ctx)
	if err != nil {
		return sheetRow{}, err
	}
	for _, r := range rows {
		if r.entry.ID == id {
			return r, nil
		}
	}
	return sheetRow{}, ports.ErrNotFound
}

func (c *Client) append(ctx context.Context, e core.Entry) error {
	vr := &gsheet.ValueRange{Values: [][]any{toRow(e)}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, a1(c.sheet, "A:L"), vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return ports.Unavailable("append to "+c.sheet, err)
	}
	return nil
}

func (c *Client) write(ctx context.Context, row int, e core.Entry) error {
	vr := &gsheet.ValueRange{Values: [][]any{toRow(e)}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rowRange(c.sheet, row), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return ports.Unavailable(fmt.Sprintf("update row %d", row), err)
	}
	return nil
}

func (c *Client) deleteRow(ctx context.Context, row int) error {
	sid, err := c.tabID(ctx)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{Range: &gsheet.DimensionRange{
			SheetId:         sid,
			Dimension:       "ROWS",
			StartIndex:      int64(row - 1),
			EndIndex:        int64(row),
			ForceSendFields: []string{"SheetId", "StartIndex"},
		}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return ports.Unavailable(fmt.Sprintf("delete row %d", row), err)
	}
	return nil
}

func (c *Client) tabID(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sheetID != nil {
		return *c.sheetID, nil
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, ports.Unavailable("read spreadsheet", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == c.sheet {
			id := s.Properties.SheetId
			c.sheetID = &id
			return id, nil
		}
	}
	return 0, ports.Unavailable("resolve tab", fmt.Errorf("no tab named %q", c.sheet))
}
