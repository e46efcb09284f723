package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/cgrotz/cgrotz.github.io/internal/content"
	"github.com/cgrotz/cgrotz.github.io/internal/radar"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type Source struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"` // "markdown", "rss" or "atom"
	Path    string `yaml:"path,omitempty"`
	URL     string `yaml:"url,omitempty"`
	Enabled bool   `yaml:"enabled"`
}

type Site struct {
	Title     string `yaml:"title"`
	BaseURL   string `yaml:"base_url"`
	ScriptURL string `yaml:"script_url"`
	Intro     string `yaml:"intro"`
}

type Server struct {
	Addr      string `yaml:"addr"`
	CacheSize int    `yaml:"cache_size"`
}

type Config struct {
	ContentType     string       `yaml:"content_type"`
	RefreshInterval string       `yaml:"refresh_interval"`
	Retention       string       `yaml:"retention"`
	Site            Site         `yaml:"site"`
	Server          Server       `yaml:"server"`
	Radar           radar.Layout `yaml:"radar"`
	Sources         []Source     `yaml:"sources"`
}

// GetContentType returns the content type the radar is built from, defaulting to "tech".
func (c *Config) GetContentType() string {
	if c.ContentType == "" {
		return content.DefaultType
	}
	return c.ContentType
}

func (c *Config) RefreshDuration() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return time.Hour
	}
	return d
}

func (c *Config) RetentionDuration() time.Duration {
	if c.Retention == "" {
		return 90 * 24 * time.Hour
	}
	// Support "Nd" day syntax
	if len(c.Retention) > 1 && c.Retention[len(c.Retention)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(c.Retention, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	d, err := time.ParseDuration(c.Retention)
	if err != nil {
		return 90 * 24 * time.Hour
	}
	return d
}

// GetCacheSize returns the number of rendered pages the server memoizes, defaulting to 64.
func (c *Config) GetCacheSize() int {
	if c.Server.CacheSize <= 0 {
		return 64
	}
	return c.Server.CacheSize
}

func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// CompleteSourceNames lists the enabled sources that return their whole corpus on
// every fetch. Their cached rows are kept exact by sync and never age out.
func (c *Config) CompleteSourceNames() []string {
	var names []string
	for _, s := range c.EnabledSources() {
		if s.Type == "markdown" {
			names = append(names, s.Name)
		}
	}
	return names
}

func (c *Config) SourceNames() []string {
	var names []string
	for _, s := range c.EnabledSources() {
		names = append(names, s.Name)
	}
	return names
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "techradar", "config.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, "techradar", "techradar.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run; failure is non-fatal.
			_ = writeDefaults(path)
			applyEnv(defaults)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	mergeDefaultSources(cfg, defaults)
	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeDefaultSources refreshes sources the user shares with the defaults and
// appends default sources the user file does not mention.
func mergeDefaultSources(cfg, defaults *Config) {
	index := make(map[string]int, len(cfg.Sources))
	for i, s := range cfg.Sources {
		index[s.Name] = i
	}
	for _, d := range defaults.Sources {
		i, ok := index[d.Name]
		if !ok {
			cfg.Sources = append(cfg.Sources, d)
			continue
		}
		cfg.Sources[i].Type = d.Type
		if cfg.Sources[i].Type == "markdown" {
			if cfg.Sources[i].Path == "" {
				cfg.Sources[i].Path = d.Path
			}
			continue
		}
		cfg.Sources[i].URL = d.URL
	}
}

func applyEnv(cfg *Config) {
	if addr := strings.TrimSpace(os.Getenv("TECHRADAR_ADDR")); addr != "" {
		if !strings.Contains(addr, ":") {
			addr = ":" + addr
		}
		cfg.Server.Addr = addr
	}
	if base := strings.TrimSpace(os.Getenv("TECHRADAR_BASE_URL")); base != "" {
		cfg.Site.BaseURL = base
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

var layoutValidator = validator.New()

func validate(cfg *Config) error {
	validTypes := map[string]bool{"markdown": true, "rss": true, "atom": true}
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if !validTypes[s.Type] {
			return fmt.Errorf("source %q: unknown type %q (valid: markdown, rss, atom)", s.Name, s.Type)
		}
		if s.Type == "markdown" {
			if s.Path == "" {
				return fmt.Errorf("source %q: path is required", s.Name)
			}
			continue
		}
		if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("source %q: invalid url: %w", s.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source %q: url scheme must be http or https, got %q", s.Name, u.Scheme)
		}
	}

	if err := layoutValidator.Struct(cfg.Radar); err != nil {
		return fmt.Errorf("radar layout: %w", err)
	}
	return nil
}
