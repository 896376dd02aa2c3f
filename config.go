package guidepress

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces environment overrides, e.g. GUIDEPRESS_SITE_URL.
const EnvPrefix = "GUIDEPRESS_"

// SiteConfig holds all configuration for a guidepress site.
type SiteConfig struct {
	Name        string `koanf:"site_name"`        // Site name (default "Guides")
	URL         string `koanf:"site_url"`         // Canonical URL (default "http://localhost:3000")
	Description string `koanf:"site_description"` // Site description for RSS and meta tags
	Author      string `koanf:"site_author"`      // Default guide author for JSON-LD
	Logo        string `koanf:"site_logo"`        // Publisher logo URL for JSON-LD

	Addr         string `koanf:"addr"`          // Listen address (default ":3000")
	DatabasePath string `koanf:"database_path"` // SQLite path (default "data/guides.db")
	StaticDir    string `koanf:"static_dir"`    // User static assets (default "public")

	AdminPassword string `koanf:"admin_password"` // Required: admin login password
	SessionSecret string `koanf:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `koanf:"cookie_secure"`  // Set true for HTTPS

	GuideCacheTTL time.Duration `koanf:"guide_cache_ttl"` // Guide cache TTL (default 5min)

	// Scroll-spy tuning handed to the browser, in CSS pixels.
	ActivationOffset float64 `koanf:"activation_offset"` // default 150
	HeaderClearance  float64 `koanf:"header_clearance"`  // default 80
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Guides"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/guides.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.GuideCacheTTL == 0 {
		c.GuideCacheTTL = 5 * time.Minute
	}
	if c.ActivationOffset == 0 {
		c.ActivationOffset = 150
	}
	if c.HeaderClearance == 0 {
		c.HeaderClearance = 80
	}
}

// Validate reports missing secrets.
func (c *SiteConfig) Validate() error {
	if c.AdminPassword == "" {
		return fmt.Errorf("guidepress: admin_password is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("guidepress: session_secret is required")
	}
	if c.ActivationOffset < 0 || c.HeaderClearance < 0 {
		return fmt.Errorf("guidepress: scroll offsets must be non-negative")
	}
	return nil
}

// LoadConfig reads an optional YAML file at path, then overlays
// GUIDEPRESS_* environment variables (GUIDEPRESS_SITE_URL -> site_url).
// Defaults fill anything left empty.
func LoadConfig(path string) (SiteConfig, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return SiteConfig{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return SiteConfig{}, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return SiteConfig{}, fmt.Errorf("loading env overrides: %w", err)
	}

	var cfg SiteConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}
