// SPDX-License-Identifier: MIT
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProjectOrg  = "apimgr"
	ProjectName = "metaseek"

	// EnvPrefix is prepended to every environment-variable override name.
	EnvPrefix = "SEARXNG_"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the single structured document the core reads, keyed
// general/search/server/outgoing/engines/plugins/ui plus an optional
// redis section.
type Config struct {
	General  GeneralConfig  `yaml:"general"`
	Search   SearchConfig   `yaml:"search"`
	Server   ServerConfig   `yaml:"server"`
	Outgoing OutgoingConfig `yaml:"outgoing"`
	Engines  []EngineConfig `yaml:"engines"`
	Plugins  PluginsConfig  `yaml:"plugins"`
	UI       UIConfig       `yaml:"ui"`
	Redis    *RedisConfig   `yaml:"redis,omitempty"`
}

// GeneralConfig holds process-wide ambient settings not named directly
// by the core's configuration contract but required to run it as a
// real service: logging, metrics, GeoIP, persistence and scheduling.
type GeneralConfig struct {
	Debug     bool            `yaml:"debug"`
	SecretKey string          `yaml:"secret_key"`
	Instance  string          `yaml:"instance_name"`
	GeoIP     GeoIPConfig     `yaml:"geoip"`
	Logs      LogsConfig      `yaml:"logs"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// SearchConfig controls core search behavior per spec.md §6.
type SearchConfig struct {
	SafeSearch        int      `yaml:"safe_search"`
	DefaultLang       string   `yaml:"default_lang"`
	DefaultCategories []string `yaml:"default_categories"`
	MaxPage           int      `yaml:"max_page"`
	BanTimeOnFail     int      `yaml:"ban_time_on_fail"`
	MaxBanTimeOnFail  int      `yaml:"max_ban_time_on_fail"`
}

// ServerConfig holds HTTP front-end settings.
type ServerConfig struct {
	Port        string `yaml:"port"`
	BindAddress string `yaml:"bind_address"`
	BaseURL     string `yaml:"base_url"`
	Mode        string `yaml:"mode"`
	PIDFile     bool   `yaml:"pidfile"`
}

// OutgoingConfig controls the HTTP client used to reach engines.
type OutgoingConfig struct {
	RequestTimeout    float64           `yaml:"request_timeout"`
	MaxRequestTimeout float64           `yaml:"max_request_timeout"`
	VerifySSL         bool              `yaml:"verify_ssl"`
	PoolConnections   int               `yaml:"pool_connections"`
	PoolMaxsize       int               `yaml:"pool_maxsize"`
	Headers           map[string]string `yaml:"headers"`
	SpoofTLS          bool              `yaml:"spoof_tls"`
	Proxies           ProxiesConfig     `yaml:"proxies"`
}

// ProxiesConfig holds outbound proxy settings.
type ProxiesConfig struct {
	Tor TorConfig `yaml:"tor"`
}

// TorConfig controls routing outgoing engine requests through Tor.
type TorConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Proxy            string `yaml:"proxy"`
	ControlPort      int    `yaml:"control_port"`
	ControlPassword  string `yaml:"control_password"`
	RotateCircuit    bool   `yaml:"rotate_circuit"`
	ClearnetFallback bool   `yaml:"clearnet_fallback"`
}

// EngineConfig is one entry of the `engines[]` document, carrying
// arbitrary extra per-engine keys via Extra.
type EngineConfig struct {
	Name        string         `yaml:"name"`
	Engine      string         `yaml:"engine"`
	Categories  []string       `yaml:"categories"`
	Shortcut    string         `yaml:"shortcut"`
	Disabled    bool           `yaml:"disabled"`
	Timeout     float64        `yaml:"timeout"`
	Weight      float64        `yaml:"weight"`
	DisplayName string         `yaml:"display_name"`
	APIKey      string         `yaml:"api_key"`
	Extra       map[string]any `yaml:",inline"`
}

// PluginsConfig lists plugins enabled/disabled at startup, overriding
// each plugin's own DefaultOn.
type PluginsConfig struct {
	Enabled  []string `yaml:"enabled"`
	Disabled []string `yaml:"disabled"`
}

// UIConfig holds front-end presentation settings.
type UIConfig struct {
	Theme              string   `yaml:"theme"`
	DefaultLocale       string   `yaml:"default_locale"`
	InfiniteScroll      bool     `yaml:"infinite_scroll"`
	AutocompleteBackend string   `yaml:"autocomplete"`
	StaticUseHash       bool     `yaml:"static_use_hash"`
	Languages           []string `yaml:"languages"`
}

// RedisConfig points the cache layer at a real Redis/Valkey server.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogsConfig holds logging settings.
type LogsConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Filename string `yaml:"filename"`
	Keep     string `yaml:"keep"`
	Rotate   string `yaml:"rotate"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Endpoint      string `yaml:"endpoint"`
	IncludeSystem bool   `yaml:"include_system"`
}

// GeoIPConfig controls the MaxMind-backed country lookup used to
// escalate safesearch for denied countries.
type GeoIPConfig struct {
	Enabled       bool     `yaml:"enabled"`
	MMDBPath      string   `yaml:"mmdb_path"`
	Update        string   `yaml:"update"`
	DenyCountries []string `yaml:"deny_countries"`
}

// DatabaseConfig selects the ban-store driver and its connection
// parameters.
type DatabaseConfig struct {
	Driver string       `yaml:"driver"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	Host   string       `yaml:"host"`
	Port   int          `yaml:"port"`
	Name   string       `yaml:"name"`
	User   string       `yaml:"user"`
	Password string     `yaml:"password"`
	SSLMode string       `yaml:"ssl_mode"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path        string `yaml:"path"`
	JournalMode string `yaml:"journal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Type   string `yaml:"type"`
	Prefix string `yaml:"prefix"`
	TTL    int    `yaml:"ttl"`
}

// SchedulerConfig controls the cron-driven background jobs.
type SchedulerConfig struct {
	Enabled       bool   `yaml:"enabled"`
	BanSweep      string `yaml:"ban_sweep"`
	GeoIPRefresh  string `yaml:"geoip_refresh"`
}

// Paths holds resolved directory paths.
type Paths struct {
	Config string
	Data   string
	Log    string
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			Debug:     false,
			SecretKey: generateToken(32),
			Instance:  "metaseek",
			GeoIP: GeoIPConfig{
				Enabled:       false,
				Update:        "weekly",
				DenyCountries: []string{},
			},
			Logs: LogsConfig{
				Level:    "info",
				Format:   "text",
				Filename: "metaseek.log",
				Keep:     "none",
				Rotate:   "weekly,50MB",
			},
			Metrics: MetricsConfig{
				Enabled:       false,
				Endpoint:      "/metrics",
				IncludeSystem: true,
			},
			Database: DatabaseConfig{
				Driver: "sqlite",
				SQLite: SQLiteConfig{
					Path:        "metaseek.db",
					JournalMode: "WAL",
					BusyTimeout: 5000,
				},
			},
			Cache: CacheConfig{
				Type:   "memory",
				Prefix: "metaseek:",
				TTL:    3600,
			},
			Scheduler: SchedulerConfig{
				Enabled:      true,
				BanSweep:     "@every 1m",
				GeoIPRefresh: "@weekly",
			},
		},
		Search: SearchConfig{
			SafeSearch:        0,
			DefaultLang:       "en",
			DefaultCategories: []string{"general"},
			MaxPage:           10,
			BanTimeOnFail:     60,
			MaxBanTimeOnFail:  120 * 60,
		},
		Server: ServerConfig{
			Port:        strconv.Itoa(findUnusedPort()),
			BindAddress: "127.0.0.1",
			BaseURL:     "",
			Mode:        "production",
			PIDFile:     true,
		},
		Outgoing: OutgoingConfig{
			RequestTimeout:    3.0,
			MaxRequestTimeout: 10.0,
			VerifySSL:         true,
			PoolConnections:   100,
			PoolMaxsize:       20,
			Headers:           map[string]string{},
			SpoofTLS:          false,
			Proxies: ProxiesConfig{
				Tor: TorConfig{
					Enabled:          false,
					Proxy:            "socks5://127.0.0.1:9050",
					ControlPort:      9051,
					ClearnetFallback: true,
				},
			},
		},
		Engines: []EngineConfig{},
		Plugins: PluginsConfig{
			Enabled:  []string{},
			Disabled: []string{},
		},
		UI: UIConfig{
			Theme:               "simple",
			DefaultLocale:       "en",
			InfiniteScroll:      false,
			AutocompleteBackend: "",
			Languages:           []string{"en"},
		},
	}
}

// GetPaths returns OS-appropriate paths.
func GetPaths(configDir, dataDir string) *Paths {
	isRoot := os.Geteuid() == 0

	paths := &Paths{}
	if configDir != "" {
		paths.Config = configDir
	} else {
		paths.Config = getDefaultConfigDir(isRoot)
	}
	if dataDir != "" {
		paths.Data = dataDir
	} else {
		paths.Data = getDefaultDataDir(isRoot)
	}
	paths.Log = getDefaultLogDir(isRoot)
	return paths
}

// Load loads configuration from file, creating a default document on
// first run, then applies environment overrides.
func Load(configDir, dataDir string) (*Config, string, error) {
	paths := GetPaths(configDir, dataDir)

	for _, dir := range []string{paths.Config, paths.Data, paths.Log} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(paths.Config, "metaseek.yml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := Default()
		cfg.General.Database.SQLite.Path = filepath.Join(paths.Data, "metaseek.db")
		if err := Save(cfg, configPath); err != nil {
			return nil, "", fmt.Errorf("failed to save default config: %w", err)
		}
		applyEnvOverrides(cfg)
		return cfg, configPath, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, configPath, nil
}

// applyEnvOverrides applies SEARXNG_-prefixed environment overrides
// per spec.md §6 on top of a loaded document.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "DEBUG"); v != "" {
		cfg.General.Debug = ParseBool(v)
	}
	if v := os.Getenv(EnvPrefix + "SECRET_KEY"); v != "" {
		cfg.General.SecretKey = v
	}
	if v := os.Getenv(EnvPrefix + "PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv(EnvPrefix + "BIND_ADDRESS"); v != "" {
		cfg.Server.BindAddress = v
	}
	if v := os.Getenv(EnvPrefix + "BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
}

// Save saves configuration to file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := `# =============================================================================
# metaseek configuration
# =============================================================================
`
	if err := os.WriteFile(path, []byte(header+string(data)), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func findUnusedPort() int {
	for port := 64000; port < 65000; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err == nil {
			ln.Close()
			return port
		}
	}
	return 64080
}

func generateToken(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func getDefaultConfigDir(isRoot bool) string {
	switch runtime.GOOS {
	case "linux":
		if isRoot {
			return fmt.Sprintf("/etc/%s/%s", ProjectOrg, ProjectName)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", ProjectOrg, ProjectName)
	case "darwin":
		if isRoot {
			return fmt.Sprintf("/Library/Application Support/%s/%s", ProjectOrg, ProjectName)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", ProjectOrg, ProjectName)
	case "windows":
		if isRoot {
			return filepath.Join(os.Getenv("ProgramData"), ProjectOrg, ProjectName)
		}
		return filepath.Join(os.Getenv("APPDATA"), ProjectOrg, ProjectName)
	default:
		if isRoot {
			return fmt.Sprintf("/usr/local/etc/%s/%s", ProjectOrg, ProjectName)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", ProjectOrg, ProjectName)
	}
}

func getDefaultDataDir(isRoot bool) string {
	switch runtime.GOOS {
	case "linux":
		if isRoot {
			return fmt.Sprintf("/var/lib/%s/%s", ProjectOrg, ProjectName)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", ProjectOrg, ProjectName)
	case "darwin":
		if isRoot {
			return fmt.Sprintf("/Library/Application Support/%s/%s/data", ProjectOrg, ProjectName)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", ProjectOrg, ProjectName)
	case "windows":
		if isRoot {
			return filepath.Join(os.Getenv("ProgramData"), ProjectOrg, ProjectName, "data")
		}
		return filepath.Join(os.Getenv("LocalAppData"), ProjectOrg, ProjectName)
	default:
		if isRoot {
			return fmt.Sprintf("/var/db/%s/%s", ProjectOrg, ProjectName)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", ProjectOrg, ProjectName)
	}
}

func getDefaultLogDir(isRoot bool) string {
	switch runtime.GOOS {
	case "linux":
		if isRoot {
			return fmt.Sprintf("/var/log/%s/%s", ProjectOrg, ProjectName)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", ProjectOrg, ProjectName, "logs")
	case "darwin":
		if isRoot {
			return fmt.Sprintf("/Library/Logs/%s/%s", ProjectOrg, ProjectName)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Logs", ProjectOrg, ProjectName)
	case "windows":
		if isRoot {
			return filepath.Join(os.Getenv("ProgramData"), ProjectOrg, ProjectName, "logs")
		}
		return filepath.Join(os.Getenv("LocalAppData"), ProjectOrg, ProjectName, "logs")
	default:
		if isRoot {
			return fmt.Sprintf("/var/log/%s/%s", ProjectOrg, ProjectName)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", ProjectOrg, ProjectName, "logs")
	}
}

// IsDevelopmentMode returns true if running in development mode.
func (c *Config) IsDevelopmentMode() bool {
	mode := strings.ToLower(c.Server.Mode)
	return mode == "development" || mode == "dev"
}

// IsProductionMode returns true if running in production mode.
func (c *Config) IsProductionMode() bool {
	return !c.IsDevelopmentMode()
}

// ReloadCallback is called when configuration is reloaded.
type ReloadCallback func(*Config)

// ConfigWatcher polls the config file for changes and notifies
// registered callbacks.
type ConfigWatcher struct {
	configPath string
	cfg        *Config
	callbacks  []ReloadCallback
	stopChan   chan struct{}
	lastMod    int64
}

// NewWatcher creates a new config watcher.
func NewWatcher(configPath string, cfg *Config) *ConfigWatcher {
	info, _ := os.Stat(configPath)
	var lastMod int64
	if info != nil {
		lastMod = info.ModTime().UnixNano()
	}
	return &ConfigWatcher{
		configPath: configPath,
		cfg:        cfg,
		callbacks:  make([]ReloadCallback, 0),
		stopChan:   make(chan struct{}),
		lastMod:    lastMod,
	}
}

// OnReload registers a callback for config reload events.
func (w *ConfigWatcher) OnReload(callback ReloadCallback) {
	w.callbacks = append(w.callbacks, callback)
}

// Start begins watching for config changes.
func (w *ConfigWatcher) Start() {
	go w.watch()
}

// Stop stops watching for config changes.
func (w *ConfigWatcher) Stop() {
	close(w.stopChan)
}

func (w *ConfigWatcher) watch() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			info, err := os.Stat(w.configPath)
			if err != nil {
				continue
			}
			modTime := info.ModTime().UnixNano()
			if modTime > w.lastMod {
				w.lastMod = modTime
				w.reload()
			}
		}
	}
}

func (w *ConfigWatcher) reload() {
	data, err := os.ReadFile(w.configPath)
	if err != nil {
		return
	}
	newCfg := Default()
	if err := yaml.Unmarshal(data, newCfg); err != nil {
		return
	}

	// Only the fields safe to swap without restarting in-flight searches.
	w.cfg.Search = newCfg.Search
	w.cfg.Plugins = newCfg.Plugins
	w.cfg.UI = newCfg.UI
	w.cfg.General.Logs = newCfg.General.Logs
	w.cfg.General.Metrics = newCfg.General.Metrics
	w.cfg.General.GeoIP = newCfg.General.GeoIP
	w.cfg.Engines = newCfg.Engines

	for _, callback := range w.callbacks {
		callback(w.cfg)
	}
}

// Reload forces a configuration reload.
func (w *ConfigWatcher) Reload() error {
	w.reload()
	return nil
}

// devOnlyTLDs are TLDs allowed only in development mode.
var devOnlyTLDs = []string{
	".localhost", ".test", ".example", ".invalid",
	".local", ".lan", ".internal", ".home", ".localdomain",
	".home.arpa", ".intranet", ".corp", ".private",
}

// IsValidHost validates a host for the base_url/FQDN the server
// advertises. In production mode, IPs, localhost and dev TLDs are
// rejected.
func IsValidHost(host string, devMode bool) bool {
	lower := strings.ToLower(host)

	if net.ParseIP(host) != nil {
		return false
	}
	if lower == "localhost" {
		return devMode
	}
	if !strings.Contains(host, ".") {
		return false
	}
	if !devMode {
		for _, tld := range devOnlyTLDs {
			if strings.HasSuffix(lower, tld) {
				return false
			}
		}
	}
	return true
}
