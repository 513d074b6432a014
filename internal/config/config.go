package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes environment overrides, e.g. INVOICEDESK_SERVER_URL.
const EnvPrefix = "INVOICEDESK"

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	v *viper.Viper

	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
// When cfgFile is empty, config.yaml is looked up in the working directory
// and then in each of searchPaths.
func NewManager(cfgFile string, searchPaths ...string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile, searchPaths); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string, searchPaths []string) error {
	v := cm.v
	defaults := DefaultConfig()
	v.SetDefault("server_url", defaults.ServerURL)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("ready_timeout", defaults.ReadyTimeout)
	v.SetDefault("samples", defaults.Samples)
	v.SetDefault("export_dir", defaults.ExportDir)
	v.SetDefault("log_level", defaults.LogLevel)

	// Environment variables with INVOICEDESK_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		for _, p := range searchPaths {
			v.AddConfigPath(p)
		}
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a validated Config.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ServerURL = ResolveEnvVars(cfg.ServerURL)
	cfg.ExportDir = ResolveEnvVars(cfg.ExportDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// FileUsed returns the config file that was read, or "" if none was found.
func (cm *Manager) FileUsed() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration. An edit that fails to
// load or validate is logged and the previous configuration stays active.
func (cm *Manager) WatchConfig(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			logger.Warn("ignoring config change", "file", e.Name, "error", err)
			return
		}
		cm.apply(cfg)
		logger.Info("config reloaded", "file", e.Name)
	})
	cm.v.WatchConfig()
}

// apply installs cfg and notifies callbacks.
func (cm *Manager) apply(cfg *Config) {
	cm.mu.Lock()
	cm.config = cfg
	callbacks := make([]func(*Config), len(cm.callbacks))
	copy(callbacks, cm.callbacks)
	cm.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envRef.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()

	// Durations are written as strings so the file stays editable by hand.
	doc := yaml.MapSlice{
		{Key: "server_url", Value: cfg.ServerURL},
		{Key: "timeout", Value: cfg.Timeout.String()},
		{Key: "ready_timeout", Value: cfg.ReadyTimeout.String()},
		{Key: "samples", Value: cfg.Samples},
		{Key: "export_dir", Value: cfg.ExportDir},
		{Key: "log_level", Value: cfg.LogLevel},
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# invoicedesk configuration
# server_url supports ${ENV_VAR} syntax, e.g. server_url: ${INVOICE_API_URL}
# Every key can be overridden with an INVOICEDESK_ environment variable,
# e.g. INVOICEDESK_SERVER_URL=http://extractor:8000

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
