package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, "ST", cfg.Format)
	assert.Equal(t, 2*time.Second, cfg.SettleDelay)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.False(t, cfg.S3.Enabled())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "sync.yaml")
	body := `
db_path: /tmp/mtg.db
settle_delay: 500ms
max_pages: 4
card_sets: [eld, thb]
s3:
  bucket: exports
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("MTGSYNC_MAX_PAGES", "7")
	t.Setenv("MTGSYNC_S3_PREFIX", "nightly/")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/mtg.db", cfg.DBPath)
	assert.Equal(t, 500*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, 7, cfg.MaxPages)
	assert.Equal(t, []string{"eld", "thb"}, cfg.CardSets)
	assert.Equal(t, "exports", cfg.S3.Bucket)
	assert.Equal(t, "nightly/", cfg.S3.Prefix)
	assert.True(t, cfg.S3.Enabled())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "relative base url", mutate: func(c *Config) { c.BaseURL = "format?f=ST" }, wantErr: true},
		{name: "empty db path", mutate: func(c *Config) { c.DBPath = "" }, wantErr: true},
		{name: "negative delay", mutate: func(c *Config) { c.SettleDelay = -time.Second }, wantErr: true},
		{name: "unknown notifier", mutate: func(c *Config) { c.Notify = "email" }, wantErr: true},
		{name: "twitter without credentials", mutate: func(c *Config) { c.Notify = "twitter" }, wantErr: true},
		{
			name: "twitter with credentials",
			mutate: func(c *Config) {
				c.Notify = "twitter"
				c.Twitter = TwitterConfig{APIKey: "k", APISecret: "s", AccessToken: "t", AccessSecret: "a"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventRoot(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "https://www.mtgtop8.com/event", cfg.EventRoot())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"eld", "thb", "znr"}, splitList(" eld, thb,,znr "))
}
