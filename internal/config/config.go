package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/renflow/renflow-desktop/internal/platform"
	"github.com/renflow/renflow-desktop/internal/store"
)

// Application identity
const (
	AppID   = "cn.stapxs.renflow"
	AppName = "Ren Flow"
)

// EnvPrefix is the prefix of environment overrides, e.g. RENFLOW_BRIDGE_ADDR
const EnvPrefix = "RENFLOW"

// BridgeConfig configures the command surface served to the UI layer
type BridgeConfig struct {
	Addr        string   `mapstructure:"addr" yaml:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	UIURL       string   `mapstructure:"ui_url" yaml:"ui_url"`
}

// ProxyConfig configures the local forwarding proxy
type ProxyConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// StoreConfig selects the key/value store backend
type StoreConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// NotifyConfig configures the notification daemon client
type NotifyConfig struct {
	AppName       string        `mapstructure:"app_name" yaml:"app_name"`
	ImageCacheDir string        `mapstructure:"image_cache_dir" yaml:"image_cache_dir"`
	ImageMaxAge   time.Duration `mapstructure:"image_max_age" yaml:"image_max_age"`
}

// HTTPConfig configures outbound helper requests
type HTTPConfig struct {
	RedirectTimeout time.Duration `mapstructure:"redirect_timeout" yaml:"redirect_timeout"`
	MaxRedirects    int           `mapstructure:"max_redirects" yaml:"max_redirects"`
}

// AppConfig is the startup configuration
type AppConfig struct {
	Bridge BridgeConfig `mapstructure:"bridge" yaml:"bridge"`
	Proxy  ProxyConfig  `mapstructure:"proxy" yaml:"proxy"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	Notify NotifyConfig `mapstructure:"notify" yaml:"notify"`
	HTTP   HTTPConfig   `mapstructure:"http" yaml:"http"`
}

// Runtime holds values produced once during startup and shared read-only
type Runtime struct {
	Version    string
	ProxyPort  uint16
	BridgeAddr string
}

// DefaultConfigPath returns ~/.config/renflow/config.yaml
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(dir, "renflow", "config.yaml")
}

// defaultCacheDir returns the per-user cache directory of the app
func defaultCacheDir() string {
	dir, err := platform.CacheDir(AppID)
	if err != nil {
		return filepath.Join(os.TempDir(), AppID)
	}
	return dir
}

func setDefaults(v *viper.Viper) {
	cacheDir := defaultCacheDir()
	v.SetDefault("bridge.addr", "127.0.0.1:38651")
	v.SetDefault("bridge.cors_origins", []string{"http://localhost:5173", "http://127.0.0.1:5173", "tauri://localhost"})
	v.SetDefault("bridge.ui_url", "http://localhost:5173")
	v.SetDefault("proxy.addr", "127.0.0.1:0")
	v.SetDefault("store.backend", store.BackendPreferences)
	v.SetDefault("store.path", filepath.Join(cacheDir, "settings.db"))
	v.SetDefault("notify.app_name", AppName)
	v.SetDefault("notify.image_cache_dir", filepath.Join(cacheDir, "notification-images"))
	v.SetDefault("notify.image_max_age", 24*time.Hour)
	v.SetDefault("http.redirect_timeout", 10*time.Second)
	v.SetDefault("http.max_redirects", 100)
}

// Load reads configuration from the YAML file at path, then applies RENFLOW_*
// environment overrides. A missing file yields the defaults.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Env overrides of list values arrive as one comma separated string.
	if len(cfg.Bridge.CORSOrigins) == 1 && strings.Contains(cfg.Bridge.CORSOrigins[0], ",") {
		cfg.Bridge.CORSOrigins = strings.Split(cfg.Bridge.CORSOrigins[0], ",")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the services cannot start with
func (c *AppConfig) Validate() error {
	switch c.Store.Backend {
	case store.BackendPreferences:
	case store.BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the %s backend", store.BackendSQLite)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Bridge.Addr == "" {
		return fmt.Errorf("bridge.addr must be set")
	}
	if c.HTTP.MaxRedirects < 0 {
		return fmt.Errorf("http.max_redirects must not be negative")
	}
	return nil
}
