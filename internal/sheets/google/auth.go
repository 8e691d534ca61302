package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Credentials selects how the client authenticates. A service account wins
// over an OAuth client and stored token when both are configured.
type Credentials struct {
	ServiceAccountJSON string
	ServiceAccountFile string
	OAuthClientJSON    string
	OAuthClientFile    string
	OAuthTokenJSON     string
	OAuthTokenFile     string
}

var ErrNoCredentials = errors.New("missing Google credentials (set GOOGLE_SERVICE_ACCOUNT_JSON/FILE or GOOGLE_OAUTH_CLIENT_* with GOOGLE_OAUTH_TOKEN_*)")

// HasServiceAccount reports whether service account credentials are set.
func (c Credentials) HasServiceAccount() bool {
	return strings.TrimSpace(c.ServiceAccountJSON) != "" || strings.TrimSpace(c.ServiceAccountFile) != ""
}

// HasOAuth reports whether both an OAuth client and a token are set.
func (c Credentials) HasOAuth() bool {
	hasClient := strings.TrimSpace(c.OAuthClientJSON) != "" || strings.TrimSpace(c.OAuthClientFile) != ""
	hasToken := strings.TrimSpace(c.OAuthTokenJSON) != "" || strings.TrimSpace(c.OAuthTokenFile) != ""
	return hasClient && hasToken
}

func (c Credentials) options(ctx context.Context) ([]goption.ClientOption, error) {
	switch {
	case c.HasServiceAccount():
		b, err := inlineOrFile(c.ServiceAccountJSON, c.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account: %w", err)
		}
		slog.DebugContext(ctx, "Using service account credentials", "size", len(b))
		return []goption.ClientOption{
			goption.WithCredentialsJSON(b),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}, nil
	case c.HasOAuth():
		ts, err := c.tokenSource(ctx)
		if err != nil {
			return nil, err
		}
		slog.DebugContext(ctx, "Using stored OAuth token")
		return []goption.ClientOption{goption.WithTokenSource(ts)}, nil
	default:
		return nil, ErrNoCredentials
	}
}

func (c Credentials) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	clientJSON, err := inlineOrFile(c.OAuthClientJSON, c.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client: %w", err)
	}
	cfg, err := oauthgoogle.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	tokenJSON, err := inlineOrFile(c.OAuthTokenJSON, c.OAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}
	hc := &http.Client{Transport: pooledTransport(), Timeout: 60 * time.Second}
	return cfg.TokenSource(context.WithValue(ctx, oauth2.HTTPClient, hc), &tok), nil
}

func inlineOrFile(inline, path string) ([]byte, error) {
	if s := strings.TrimSpace(inline); s != "" {
		return []byte(s), nil
	}
	return os.ReadFile(strings.TrimSpace(path))
}

// pooledTransport keeps connections to the Google APIs warm between calls.
func pooledTransport() *http.Transport {
	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
	return &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
	}
}
