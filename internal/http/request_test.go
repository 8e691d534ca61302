package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestDecodeEntry(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		body        string
		wantDesc    string
		wantHours   string
		wantErr     bool
	}{
		{"json", "application/json", `{"description":"a","hours":2.5}`, "a", "2.5", false},
		{"json with charset", "application/json; charset=utf-8", `{"description":"b","hours":"1.25"}`, "b", "1.25", false},
		{"form", "application/x-www-form-urlencoded", url.Values{"description": {"c"}, "hours": {"3"}}.Encode(), "c", "3", false},
		{"malformed json", "application/json", `{"description":`, "", "", true},
		{"trailing json", "application/json", `{"description":"a"}{"description":"b"}`, "", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/time-entries", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.contentType)
			e, err := decodeEntry(httptest.NewRecorder(), req)
			if tc.wantErr {
				if !errors.Is(err, errBadBody) {
					t.Fatalf("err = %v, want errBadBody", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if e.Description != tc.wantDesc || string(e.Hours) != tc.wantHours {
				t.Fatalf("entry = %+v", e)
			}
		})
	}
}

func TestParseRange(t *testing.T) {
	r := parseRange(url.Values{"startDate": {" 2024-03-01 "}, "endDate": {"2024-03-31"}})
	if r.Start != "2024-03-01" || r.End != "2024-03-31" {
		t.Fatalf("range = %+v", r)
	}
	if r := parseRange(url.Values{}); r.Start != "" || r.End != "" {
		t.Fatalf("empty query should give empty range, got %+v", r)
	}
}
