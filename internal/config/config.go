package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultBaseURL    = "https://www.mtgtop8.com/format?f=ST"
	DefaultCatalogURL = "https://api.scryfall.com"
	DefaultUserAgent  = "mtgtop8-sync/1.0 (github.com/pfrederiksen/mtgtop8-sync)"
	envPrefix         = "MTGSYNC"
)

// Config holds every tunable of a sync run.
type Config struct {
	BaseURL        string        `mapstructure:"base_url"`
	Format         string        `mapstructure:"format"`
	CatalogURL     string        `mapstructure:"catalog_url"`
	DBPath         string        `mapstructure:"db_path"`
	RulesPath      string        `mapstructure:"rules_path"`
	ExportDir      string        `mapstructure:"export_dir"`
	SettleDelay    time.Duration `mapstructure:"settle_delay"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	MaxPages       int           `mapstructure:"max_pages"`
	UserAgent      string        `mapstructure:"user_agent"`
	CardSets       []string      `mapstructure:"card_sets"`
	LogLevel       string        `mapstructure:"log_level"`
	Notify         string        `mapstructure:"notify"`
	S3             S3Config      `mapstructure:"s3"`
	Twitter        TwitterConfig `mapstructure:"twitter"`
}

// S3Config configures the optional upload of exported files.
type S3Config struct {
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
	Endpoint string `mapstructure:"endpoint"`
}

// Enabled reports whether an upload target is configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// TwitterConfig holds OAuth1 credentials for new-event announcements.
type TwitterConfig struct {
	APIKey       string `mapstructure:"api_key"`
	APISecret    string `mapstructure:"api_secret"`
	AccessToken  string `mapstructure:"access_token"`
	AccessSecret string `mapstructure:"access_secret"`
}

// Complete reports whether all four credentials are set.
func (c TwitterConfig) Complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		Format:         "ST",
		CatalogURL:     DefaultCatalogURL,
		DBPath:         "dbs/links.db",
		RulesPath:      "rules.yaml",
		ExportDir:      "flat_files",
		SettleDelay:    2 * time.Second,
		RequestTimeout: 30 * time.Second,
		MaxRetries:     3,
		UserAgent:      DefaultUserAgent,
		LogLevel:       "info",
	}
}

// Load reads configuration. path may be empty, in which case only defaults,
// .env and environment variables are used.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	// viper leaves comma-separated env values as a single element
	if len(cfg.CardSets) == 1 && strings.Contains(cfg.CardSets[0], ",") {
		cfg.CardSets = splitList(cfg.CardSets[0])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("format", d.Format)
	v.SetDefault("catalog_url", d.CatalogURL)
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("rules_path", d.RulesPath)
	v.SetDefault("export_dir", d.ExportDir)
	v.SetDefault("settle_delay", d.SettleDelay)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("max_retries", d.MaxRetries)
	v.SetDefault("max_pages", d.MaxPages)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("card_sets", []string{})
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("notify", d.Notify)
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("twitter.api_key", "")
	v.SetDefault("twitter.api_secret", "")
	v.SetDefault("twitter.access_token", "")
	v.SetDefault("twitter.access_secret", "")
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if c.SettleDelay < 0 {
		errs = append(errs, errors.New("settle_delay must not be negative"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("max_retries must not be negative"))
	}
	if c.MaxPages < 0 {
		errs = append(errs, errors.New("max_pages must not be negative"))
	}
	switch c.Notify {
	case "", "dryrun", "twitter":
	default:
		errs = append(errs, fmt.Errorf("notify %q must be dryrun or twitter", c.Notify))
	}
	if c.Notify == "twitter" && !c.Twitter.Complete() {
		errs = append(errs, errors.New("notify=twitter requires twitter credentials"))
	}
	return errors.Join(errs...)
}

// EventRoot returns the URL that relative deck links ("?e=..&d=..") resolve against.
func (c *Config) EventRoot() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "https://www.mtgtop8.com/event"
	}
	return u.Scheme + "://" + u.Host + "/event"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
