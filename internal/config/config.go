package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"hisab/internal/history"
)

// EnvPrefix prefixes every environment variable, e.g. HISAB_PORT.
const EnvPrefix = "HISAB"

type Config struct {
	// HTTP Server
	Port string

	// Storage
	DataBackend   string
	SQLiteDBPath  string
	DataDirectory string
	Namespace     string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Exports
	ExportDir     string
	ExportFormats string

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Domain
	KeywordsFile string
	WeekStart    string

	// Logging
	LogLevel  string
	LogFormat string

	// Report cache
	ReportCacheTTL  time.Duration
	ReportCacheSize int
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8081")
	v.SetDefault("data_backend", "memory")
	v.SetDefault("sqlite_db_path", "./data/hisab.db")
	v.SetDefault("data_directory", "data")
	v.SetDefault("namespace", "HisabAppPrefs")
	v.SetDefault("amqp_url", "")
	v.SetDefault("amqp_exchange", "hisab")
	v.SetDefault("amqp_queue", "report_exports")
	v.SetDefault("export_dir", "./exports")
	v.SetDefault("export_formats", "pdf,xlsx")
	v.SetDefault("google_spreadsheet_id", "")
	v.SetDefault("google_sheet_name", "Report")
	v.SetDefault("google_service_account_file", "")
	v.SetDefault("google_service_account_json", "")
	v.SetDefault("keywords_file", "")
	v.SetDefault("week_start", "sunday")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("report_cache_ttl", 5*time.Minute)
	v.SetDefault("report_cache_size", 32)
}

// New returns a viper instance with defaults and HISAB_ environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file into v and builds the Config. An empty
// configFile falls back to HISAB_CONFIG, then to ./hisab.{yaml,toml,json}
// when present.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile == "" {
		configFile = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("hisab")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return FromViper(v), nil
}

func FromViper(v *viper.Viper) *Config {
	return &Config{
		Port:                     v.GetString("port"),
		DataBackend:              v.GetString("data_backend"),
		SQLiteDBPath:             v.GetString("sqlite_db_path"),
		DataDirectory:            v.GetString("data_directory"),
		Namespace:                v.GetString("namespace"),
		AMQPURL:                  v.GetString("amqp_url"),
		AMQPExchange:             v.GetString("amqp_exchange"),
		AMQPQueue:                v.GetString("amqp_queue"),
		ExportDir:                v.GetString("export_dir"),
		ExportFormats:            v.GetString("export_formats"),
		GoogleSpreadsheetID:      v.GetString("google_spreadsheet_id"),
		GoogleSheetName:          v.GetString("google_sheet_name"),
		GoogleServiceAccountFile: v.GetString("google_service_account_file"),
		GoogleServiceAccountJSON: v.GetString("google_service_account_json"),
		KeywordsFile:             v.GetString("keywords_file"),
		WeekStart:                v.GetString("week_start"),
		LogLevel:                 v.GetString("log_level"),
		LogFormat:                v.GetString("log_format"),
		ReportCacheTTL:           v.GetDuration("report_cache_ttl"),
		ReportCacheSize:          v.GetInt("report_cache_size"),
	}
}

// WeekStartDay returns the configured first day of the week.
func (c *Config) WeekStartDay() time.Weekday {
	d, err := history.ParseWeekday(c.WeekStart)
	if err != nil {
		return time.Sunday
	}
	return d
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite"}
	switch c.DataBackend {
	case "memory":
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	formats := c.Formats()
	for _, f := range formats {
		switch f {
		case "pdf", "xlsx":
			if c.ExportDir == "" {
				errs = append(errs, fmt.Sprintf("export directory is required for %s exports", f))
			}
		case "sheets":
			if c.GoogleSpreadsheetID == "" {
				errs = append(errs, "Google Spreadsheet ID is required for sheets exports")
			}
			if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
				errs = append(errs, "either google_service_account_file or google_service_account_json must be provided for sheets exports")
			}
			if c.GoogleServiceAccountFile != "" {
				if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
					errs = append(errs, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
				}
			}
		default:
			errs = append(errs, fmt.Sprintf("invalid export format '%s': must be pdf, xlsx or sheets", f))
		}
	}

	if _, err := history.ParseWeekday(c.WeekStart); err != nil {
		errs = append(errs, fmt.Sprintf("invalid week start '%s': must be a weekday name", c.WeekStart))
	}

	if c.KeywordsFile != "" {
		if _, err := os.Stat(c.KeywordsFile); err != nil {
			errs = append(errs, fmt.Sprintf("keywords file is not readable: %s", c.KeywordsFile))
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if c.ReportCacheTTL < 0 {
		errs = append(errs, fmt.Sprintf("invalid report cache TTL %v: must not be negative", c.ReportCacheTTL))
	}
	if c.ReportCacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid report cache size %d: must be at least 1", c.ReportCacheSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Formats returns the configured export formats, lower-cased.
func (c *Config) Formats() []string {
	var out []string
	for _, f := range strings.Split(c.ExportFormats, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
