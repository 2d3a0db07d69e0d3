// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort              = "8080"
	defaultFeedKind          = FeedKindSheets
	defaultFeedTimeoutStr    = "30s"
	defaultHeaderRows        = 1
	defaultMaxArchivePerRun  = 10
	defaultCronSecretHeader  = "X-Cron-Secret"
	defaultNotifyTimeoutStr  = "10s"
	defaultDatabaseDialect   = "mysql"
	defaultLogLevel          = "info"
	defaultTimezone          = "Local"
	defaultSyncRunListLength = 50
)

// Feed kinds understood by scraper.NewSource.
const (
	FeedKindSheets = "sheets"
	FeedKindCSV    = "csv"
	FeedKindHTML   = "html"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Dialect  string `yaml:"dialect"` // "mysql" or "sqlite"
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Path     string `yaml:"path"` // sqlite file, local development only
}

// FeedConfig describes where the staff route spreadsheet is read from.
type FeedConfig struct {
	Kind            string            `yaml:"kind"`
	SpreadsheetID   string            `yaml:"spreadsheet_id"`
	APIKey          string            `yaml:"api_key"`
	CredentialsFile string            `yaml:"credentials_file"`
	CSVURLs         map[string]string `yaml:"csv_urls"` // tab name -> published CSV export URL
	HTMLURL         string            `yaml:"html_url"`
	HeaderRows      *int              `yaml:"header_rows"`
	TimeoutStr      string            `yaml:"timeout"`
	Timeout         time.Duration     `yaml:"-"` // Parsed duration
}

// SyncConfig tunes the reconciliation engine.
type SyncConfig struct {
	Walls             []string       `yaml:"walls"`
	MaxArchivePerRun  *int           `yaml:"max_archive_per_run"`
	DateToleranceDays int            `yaml:"date_tolerance_days"`
	Timezone          string         `yaml:"timezone"`
	IntervalStr       string         `yaml:"interval"`
	Interval          time.Duration  `yaml:"-"` // Parsed duration; zero disables the in-process scheduler
	Location          *time.Location `yaml:"-"`
}

type NotifyConfig struct {
	WebhookURL    string        `yaml:"webhook_url"`
	PubSubProject string        `yaml:"pubsub_project"`
	PubSubTopic   string        `yaml:"pubsub_topic"`
	TimeoutStr    string        `yaml:"timeout"`
	Timeout       time.Duration `yaml:"-"` // Parsed duration
}

type AdminConfig struct {
	Token           string `yaml:"token"`
	SyncRunsListMax int    `yaml:"sync_runs_list_max"`
}

type CronConfig struct {
	Secret       string `yaml:"secret"`
	SecretHeader string `yaml:"secret_header"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Feed     FeedConfig     `yaml:"feed"`
	Sync     SyncConfig     `yaml:"sync"`
	Notify   NotifyConfig   `yaml:"notify"`
	Admin    AdminConfig    `yaml:"admin"`
	Cron     CronConfig     `yaml:"cron"`
	Log      LogConfig      `yaml:"log"`
}

var AppConfig Config

// LoadConfig reads the YAML file at configPath, layers .env and environment
// overrides on top, fills defaults and validates the result into AppConfig.
func LoadConfig(configPath string) error {
	cfg, err := Load(configPath)
	if err != nil {
		return err
	}
	AppConfig = *cfg
	return nil
}

// Load is LoadConfig without touching the global.
func Load(configPath string) (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Secrets stay out of the YAML file in deployed environments.
func applyEnvOverrides(cfg *Config) {
	overrides := []struct {
		env    string
		target *string
	}{
		{"PORT", &cfg.Server.Port},
		{"DB_HOST", &cfg.Database.Host},
		{"DB_USER", &cfg.Database.User},
		{"DB_PASSWORD", &cfg.Database.Password},
		{"DB_NAME", &cfg.Database.DBName},
		{"SHEETS_SPREADSHEET_ID", &cfg.Feed.SpreadsheetID},
		{"SHEETS_API_KEY", &cfg.Feed.APIKey},
		{"GOOGLE_APPLICATION_CREDENTIALS", &cfg.Feed.CredentialsFile},
		{"NOTIFY_WEBHOOK_URL", &cfg.Notify.WebhookURL},
		{"ADMIN_TOKEN", &cfg.Admin.Token},
		{"CRON_SECRET", &cfg.Cron.Secret},
		{"LOG_LEVEL", &cfg.Log.Level},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			*o.target = v
		}
	}
}

func (c *Config) applyDefaults() error {
	var err error

	if c.Server.Port == "" {
		c.Server.Port = defaultPort
	}
	if c.Database.Dialect == "" {
		c.Database.Dialect = defaultDatabaseDialect
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}

	// Feed
	if c.Feed.Kind == "" {
		c.Feed.Kind = defaultFeedKind
	}
	c.Feed.Kind = strings.ToLower(c.Feed.Kind)
	if c.Feed.HeaderRows == nil {
		n := defaultHeaderRows
		c.Feed.HeaderRows = &n
	}
	if c.Feed.TimeoutStr == "" {
		c.Feed.TimeoutStr = defaultFeedTimeoutStr
	}
	c.Feed.Timeout, err = time.ParseDuration(c.Feed.TimeoutStr)
	if err != nil {
		return fmt.Errorf("failed to parse feed timeout: %w", err)
	}

	// Sync
	if c.Sync.MaxArchivePerRun == nil {
		n := defaultMaxArchivePerRun
		c.Sync.MaxArchivePerRun = &n
	}
	if c.Sync.Timezone == "" {
		c.Sync.Timezone = defaultTimezone
	}
	c.Sync.Location, err = time.LoadLocation(c.Sync.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load sync timezone %q: %w", c.Sync.Timezone, err)
	}
	if c.Sync.IntervalStr != "" {
		c.Sync.Interval, err = time.ParseDuration(c.Sync.IntervalStr)
		if err != nil {
			return fmt.Errorf("failed to parse sync interval: %w", err)
		}
	}

	// Notify
	if c.Notify.TimeoutStr == "" {
		c.Notify.TimeoutStr = defaultNotifyTimeoutStr
	}
	c.Notify.Timeout, err = time.ParseDuration(c.Notify.TimeoutStr)
	if err != nil {
		return fmt.Errorf("failed to parse notify timeout: %w", err)
	}

	if c.Cron.SecretHeader == "" {
		c.Cron.SecretHeader = defaultCronSecretHeader
	}
	if c.Admin.SyncRunsListMax <= 0 {
		c.Admin.SyncRunsListMax = defaultSyncRunListLength
	}
	return nil
}

// Validate reports configuration that would make the sync engine misbehave.
func (c *Config) Validate() error {
	var problems []string

	if len(c.Sync.Walls) == 0 {
		problems = append(problems, "sync.walls must list at least one wall")
	}
	seen := make(map[string]bool, len(c.Sync.Walls))
	for i, w := range c.Sync.Walls {
		w = strings.TrimSpace(w)
		if w == "" {
			problems = append(problems, fmt.Sprintf("sync.walls[%d] is empty", i))
			continue
		}
		if seen[w] {
			problems = append(problems, fmt.Sprintf("sync.walls contains %q twice", w))
		}
		seen[w] = true
	}
	if c.Sync.MaxArchive() < 0 {
		problems = append(problems, "sync.max_archive_per_run must not be negative")
	}
	if c.Sync.DateToleranceDays < 0 {
		problems = append(problems, "sync.date_tolerance_days must not be negative")
	}
	if c.Sync.Interval < 0 {
		problems = append(problems, "sync.interval must not be negative")
	}
	if c.Feed.HeaderRowCount() < 0 {
		problems = append(problems, "feed.header_rows must not be negative")
	}

	switch c.Feed.Kind {
	case FeedKindSheets:
		if c.Feed.SpreadsheetID == "" {
			problems = append(problems, "feed.spreadsheet_id is required for the sheets feed")
		}
	case FeedKindCSV:
		if len(c.Feed.CSVURLs) == 0 {
			problems = append(problems, "feed.csv_urls is required for the csv feed")
		}
	case FeedKindHTML:
		if c.Feed.HTMLURL == "" {
			problems = append(problems, "feed.html_url is required for the html feed")
		}
	default:
		problems = append(problems, fmt.Sprintf("feed.kind %q is not one of sheets, csv, html", c.Feed.Kind))
	}

	switch c.Database.Dialect {
	case "mysql", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("database.dialect %q is not one of mysql, sqlite", c.Database.Dialect))
	}

	if c.Notify.PubSubTopic != "" && c.Notify.PubSubProject == "" {
		problems = append(problems, "notify.pubsub_project is required when notify.pubsub_topic is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// MaxArchive returns the safety threshold for archival per pass.
func (s SyncConfig) MaxArchive() int {
	if s.MaxArchivePerRun == nil {
		return defaultMaxArchivePerRun
	}
	return *s.MaxArchivePerRun
}

// HeaderRowCount returns the number of leading rows skipped on every tab.
func (f FeedConfig) HeaderRowCount() int {
	if f.HeaderRows == nil {
		return defaultHeaderRows
	}
	return *f.HeaderRows
}
