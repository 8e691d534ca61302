package backend

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"timesheet/internal/config"
	gsheet "timesheet/internal/sheets/google"
)

const (
	defaultCacheSize = 16
	defaultCacheTTL  = 5 * time.Minute
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	g := appConfig.Google
	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		Sheets: gsheet.Config{
			SpreadsheetID: g.SpreadsheetID,
			SheetName:     g.SheetName,
			Credentials: gsheet.Credentials{
				ServiceAccountJSON: g.ServiceAccountJSON,
				ServiceAccountFile: g.ServiceAccountFile,
				OAuthClientJSON:    g.OAuthClientJSON,
				OAuthClientFile:    g.OAuthClientFile,
				OAuthTokenJSON:     g.OAuthTokenJSON,
				OAuthTokenFile:     g.OAuthTokenFile,
			},
		},

		DataDirectory: appConfig.DataDir,
		DefaultUserID: appConfig.DefaultUserID,

		CacheSize: defaultCacheSize,
		CacheTTL:  defaultCacheTTL,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if strings.TrimSpace(c.SQLiteDBPath) == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case SheetsBackend:
		if strings.TrimSpace(c.Sheets.SpreadsheetID) == "" {
			return errors.New("Google Spreadsheet ID is required for sheets backend")
		}
		creds := c.Sheets.Credentials
		if !creds.HasServiceAccount() && !creds.HasOAuth() {
			return gsheet.ErrNoCredentials
		}
	case MemoryBackend:
		// DataDirectory defaults to "data" when empty.
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, SheetsBackend, MemoryBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
