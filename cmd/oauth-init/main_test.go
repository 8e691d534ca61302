package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"timesheet/internal/config"
)

func TestClientSecretPrefersInlineJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "client.json")
	if err := os.WriteFile(file, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	b, err := clientSecret(config.Google{OAuthClientJSON: `{"from":"env"}`, OAuthClientFile: file})
	if err != nil || string(b) != `{"from":"env"}` {
		t.Fatalf("inline = %s err=%v", b, err)
	}
	b, err = clientSecret(config.Google{OAuthClientFile: file})
	if err != nil || string(b) != `{"from":"file"}` {
		t.Fatalf("file = %s err=%v", b, err)
	}
	if _, err := clientSecret(config.Google{}); err == nil {
		t.Fatal("expected error without a client")
	}
}

func TestSaveToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", Expiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := saveToken(path, tok); err != nil {
		t.Fatalf("saveToken: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}
	var back oauth2.Token
	b, _ := os.ReadFile(path)
	if err := json.Unmarshal(b, &back); err != nil || back.RefreshToken != "r" {
		t.Fatalf("round trip = %+v err=%v", back, err)
	}
}
