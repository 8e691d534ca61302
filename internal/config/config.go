package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// DefaultHourlyRate applies when HOURLY_RATE is unset or unparseable.
var DefaultHourlyRate = decimal.NewFromInt(25)

// Config is the application configuration. Values come from defaults, then
// the optional TOML file named by CONFIG_FILE, then the environment.
type Config struct {
	// HTTP Server
	Port               string `toml:"port"`
	RateLimitPerMinute int    `toml:"rate_limit_per_minute"`

	// Backend selection
	DataBackend string `toml:"data_backend"`
	DataDir     string `toml:"data_dir"`

	// Database
	SQLiteDBPath string `toml:"sqlite_db_path"`

	// AMQP
	AMQPURL      string `toml:"amqp_url"`
	AMQPExchange string `toml:"amqp_exchange"`
	AMQPQueue    string `toml:"amqp_queue"`

	Google Google `toml:"google"`

	// Invoicing
	DefaultUserID  string          `toml:"default_user_id"`
	HourlyRate     decimal.Decimal `toml:"-"`
	InvoiceDueDays int             `toml:"invoice_due_days"`
	Business       Business        `toml:"business"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

type Google struct {
	SpreadsheetID      string `toml:"spreadsheet_id"`
	SheetName          string `toml:"sheet_name"`
	ServiceAccountJSON string `toml:"service_account_json"`
	ServiceAccountFile string `toml:"service_account_file"`
	OAuthClientJSON    string `toml:"oauth_client_json"`
	OAuthClientFile    string `toml:"oauth_client_file"`
	OAuthTokenJSON     string `toml:"oauth_token_json"`
	OAuthTokenFile     string `toml:"oauth_token_file"`
}

// Business is the issuer and bill-to metadata printed on invoices.
type Business struct {
	Name        string `toml:"name"`
	Email       string `toml:"email"`
	Tagline     string `toml:"tagline"`
	WorkName    string `toml:"work_name"`
	WorkAddress string `toml:"work_address"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:               "8081",
		RateLimitPerMinute: 60,
		DataBackend:        "memory",
		DataDir:            "data",
		SQLiteDBPath:       "./data/timesheet.db",
		AMQPExchange:       "timesheet",
		AMQPQueue:          "mirror_entries",
		Google:             Google{SheetName: "Time Entries"},
		DefaultUserID:      "owner",
		HourlyRate:         DefaultHourlyRate,
		InvoiceDueDays:     30,
		Business: Business{
			Name:        "Your Business Name",
			Email:       "billing@example.com",
			Tagline:     "Professional Services",
			WorkName:    "Client Name",
			WorkAddress: "123 Main St, Springfield, 00000",
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load builds the configuration. A CONFIG_FILE that is set but unreadable
// is an error; the environment always wins over the file.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.loadEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var unknown []string
	for _, key := range md.Undecoded() {
		if key.String() == "hourly_rate" {
			continue
		}
		unknown = append(unknown, key.String())
	}
	if len(unknown) > 0 {
		return fmt.Errorf("config file %s: unknown keys %v", path, unknown)
	}

	// hourly_rate may be written as a number or a string.
	var rate struct {
		HourlyRate any `toml:"hourly_rate"`
	}
	if _, err := toml.DecodeFile(path, &rate); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if rate.HourlyRate != nil {
		c.HourlyRate = parseRate(fmt.Sprint(rate.HourlyRate), c.HourlyRate)
	}
	return nil
}

func (c *Config) loadEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
	c.DataBackend = getEnv("DATA_BACKEND", c.DataBackend)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.SQLiteDBPath = getEnv("SQLITE_DB_PATH", c.SQLiteDBPath)

	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPQueue = getEnv("AMQP_QUEUE", c.AMQPQueue)

	g := &c.Google
	g.SpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", g.SpreadsheetID)
	g.SheetName = getEnv("GOOGLE_SHEET_NAME", g.SheetName)
	g.ServiceAccountJSON = getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", g.ServiceAccountJSON)
	g.ServiceAccountFile = getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", g.ServiceAccountFile)
	g.OAuthClientJSON = getEnv("GOOGLE_OAUTH_CLIENT_JSON", g.OAuthClientJSON)
	g.OAuthClientFile = getEnv("GOOGLE_OAUTH_CLIENT_FILE", g.OAuthClientFile)
	g.OAuthTokenJSON = getEnv("GOOGLE_OAUTH_TOKEN_JSON", g.OAuthTokenJSON)
	g.OAuthTokenFile = getEnv("GOOGLE_OAUTH_TOKEN_FILE", g.OAuthTokenFile)

	c.DefaultUserID = getEnv("DEFAULT_USER_ID", c.DefaultUserID)
	if v := os.Getenv("HOURLY_RATE"); v != "" {
		c.HourlyRate = parseRate(v, DefaultHourlyRate)
	}
	c.InvoiceDueDays = getEnvInt("INVOICE_DUE_DAYS", c.InvoiceDueDays)

	b := &c.Business
	b.Name = getEnv("BUSINESS_NAME", b.Name)
	b.Email = getEnv("BUSINESS_EMAIL", b.Email)
	b.Tagline = getEnv("BUSINESS_TAGLINE", b.Tagline)
	b.WorkName = getEnv("WORK_NAME", b.WorkName)
	b.WorkAddress = getEnv("WORK_ADDRESS", b.WorkAddress)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
}

// parseRate falls back when s is not a number.
func parseRate(s string, fallback decimal.Decimal) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return d
}

// Backends lists the valid DATA_BACKEND values.
var Backends = []string{"memory", "sheets", "sqlite"}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackend := false
	for _, b := range Backends {
		if c.DataBackend == b {
			validBackend = true
			break
		}
	}
	if !validBackend {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, Backends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.DataBackend == "sheets" {
		errs = append(errs, c.Google.problems()...)
	}

	if c.DefaultUserID == "" {
		errs = append(errs, "default user id cannot be empty")
	}
	if !c.HourlyRate.IsPositive() {
		errs = append(errs, fmt.Sprintf("invalid hourly rate %s: must be positive", c.HourlyRate))
	}
	if c.InvoiceDueDays < 1 {
		errs = append(errs, fmt.Sprintf("invalid invoice due days %d: must be at least 1", c.InvoiceDueDays))
	}
	if c.RateLimitPerMinute < 1 {
		errs = append(errs, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errs) > 0 {
		return errors.New("configuration validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

// HasSheets reports whether a spreadsheet is configured. The worker and the
// sheets backend both need it.
func (g Google) HasSheets() bool {
	return g.SpreadsheetID != "" && len(g.problems()) == 0
}

func (g Google) problems() []string {
	var errs []string
	if g.SpreadsheetID == "" {
		errs = append(errs, "Google Spreadsheet ID is required when using sheets backend")
	}
	if g.SheetName == "" {
		errs = append(errs, "Google Sheet name is required when using sheets backend")
	}

	hasServiceAccount := g.ServiceAccountJSON != "" || g.ServiceAccountFile != ""
	hasClient := g.OAuthClientJSON != "" || g.OAuthClientFile != ""
	hasToken := g.OAuthTokenJSON != "" || g.OAuthTokenFile != ""
	if !hasServiceAccount && !(hasClient && hasToken) {
		errs = append(errs, "either GOOGLE_SERVICE_ACCOUNT_JSON/FILE or both GOOGLE_OAUTH_CLIENT_* and GOOGLE_OAUTH_TOKEN_* must be provided for sheets backend")
	}

	files := []struct{ name, path string }{
		{"service account", g.ServiceAccountFile},
		{"OAuth client", g.OAuthClientFile},
		{"OAuth token", g.OAuthTokenFile},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("Google %s file does not exist: %s", f.name, f.path))
		}
	}
	return errs
}

// Presence reports, per setting, whether it has a value. The debug endpoint
// shows it; values themselves are never exposed.
func (c *Config) Presence() map[string]bool {
	g := c.Google
	return map[string]bool{
		"DATA_BACKEND":                c.DataBackend != "",
		"SQLITE_DB_PATH":              c.SQLiteDBPath != "",
		"AMQP_URL":                    c.AMQPURL != "",
		"GOOGLE_SPREADSHEET_ID":       g.SpreadsheetID != "",
		"GOOGLE_SHEET_NAME":           g.SheetName != "",
		"GOOGLE_SERVICE_ACCOUNT_JSON": g.ServiceAccountJSON != "",
		"GOOGLE_SERVICE_ACCOUNT_FILE": g.ServiceAccountFile != "",
		"GOOGLE_OAUTH_CLIENT_JSON":    g.OAuthClientJSON != "",
		"GOOGLE_OAUTH_CLIENT_FILE":    g.OAuthClientFile != "",
		"GOOGLE_OAUTH_TOKEN_JSON":     g.OAuthTokenJSON != "",
		"GOOGLE_OAUTH_TOKEN_FILE":     g.OAuthTokenFile != "",
		"HOURLY_RATE":                 os.Getenv("HOURLY_RATE") != "",
		"BUSINESS_NAME":               os.Getenv("BUSINESS_NAME") != "",
		"WORK_NAME":                   os.Getenv("WORK_NAME") != "",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
