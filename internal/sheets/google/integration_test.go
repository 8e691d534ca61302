//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"timesheet/internal/core"
)

// Integration tests require real Google Sheets credentials
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_GoogleSheetsFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	creds := Credentials{
		ServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		ServiceAccountFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
		OAuthClientJSON:    os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"),
		OAuthClientFile:    os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"),
		OAuthTokenJSON:     os.Getenv("GOOGLE_OAUTH_TOKEN_JSON"),
		OAuthTokenFile:     os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"),
	}
	if !creds.HasServiceAccount() && !creds.HasOAuth() {
		t.Skip("Google credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	client, err := New(ctx, Config{SpreadsheetID: spreadsheetID, SheetName: os.Getenv("GOOGLE_SHEET_NAME"), Credentials: creds})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	if err := client.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if err := client.EnsureHeader(ctx); err != nil {
		t.Fatalf("EnsureHeader failed: %v", err)
	}

	user := "integration-" + time.Now().Format("20060102150405")
	created, err := client.Create(ctx, user, core.Entry{
		Date:        "2024-03-05",
		TimeIn:      "09:00",
		TimeOut:     "10:30",
		Hours:       "1.5",
		Description: "Integration test entry",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	t.Cleanup(func() { _ = client.DeleteEntry(context.Background(), user, created.ID) })

	got, err := client.ListEntriesInRange(ctx, user, core.DateRange{Start: "2024-03-01", End: "2024-03-31"})
	if err != nil {
		t.Fatalf("ListEntriesInRange failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != created.ID || got[0].Hours != "1.5" {
		t.Fatalf("unexpected entries: %+v", got)
	}

	created.Description = "Integration test entry (updated)"
	if _, err := client.UpdateEntry(ctx, user, created); err != nil {
		t.Fatalf("UpdateEntry failed: %v", err)
	}
	if err := client.DeleteEntry(ctx, user, created.ID); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	left, _ := client.ListEntries(ctx, user)
	if len(left) != 0 {
		t.Fatalf("expected no entries after delete, got %d", len(left))
	}
}
