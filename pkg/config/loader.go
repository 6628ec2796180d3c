// Package config provides configuration loading and management for OpenPBRL.
// It supports loading from YAML files, environment variables, and command-line
// arguments, with hot-reload capabilities using Viper.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ============================================================================
// Configuration Loader
// ============================================================================

// Loader manages configuration loading and reloading
type Loader struct {
	// Viper instance
	viper *viper.Viper

	// Current configuration
	config *Config
	mu     sync.RWMutex

	// Reload callbacks
	reloadCallbacks []ReloadCallback
}

// ReloadCallback is called when configuration is reloaded
type ReloadCallback func(oldConfig, newConfig *Config) error

// LoaderOptions defines options for configuration loader
type LoaderOptions struct {
	// Configuration file path
	ConfigFile string

	// Enable watching for file changes
	EnableWatch bool

	// Environment variable prefix
	EnvPrefix string

	// Additional config paths to search
	ConfigPaths []string
}

// NewLoader creates a new configuration loader
func NewLoader(opts LoaderOptions) (*Loader, error) {
	v := viper.New()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/openpbrl")
		for _, path := range opts.ConfigPaths {
			v.AddConfigPath(path)
		}
	}

	envPrefix := opts.EnvPrefix
	if envPrefix == "" {
		envPrefix = "OPENPBRL"
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	loader := &Loader{viper: v}

	if err := loader.load(); err != nil {
		return nil, err
	}

	if opts.EnableWatch {
		loader.watch()
	}

	return loader, nil
}

// load reads the configuration file over the defaults
func (l *Loader) load() error {
	cfg := Default()

	if err := l.viper.ReadInConfig(); err != nil {
		// Missing config file is fine; defaults plus env vars apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := l.viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l.mu.Lock()
	l.config = cfg
	l.mu.Unlock()
	return nil
}

// watch reloads the configuration when the file changes
func (l *Loader) watch() {
	l.viper.OnConfigChange(func(e fsnotify.Event) {
		old := l.Get()
		if err := l.load(); err != nil {
			// Keep the previous configuration on reload failure
			l.mu.Lock()
			l.config = old
			l.mu.Unlock()
			return
		}
		l.mu.RLock()
		callbacks := l.reloadCallbacks
		current := l.config
		l.mu.RUnlock()
		for _, cb := range callbacks {
			_ = cb(old, current)
		}
	})
	l.viper.WatchConfig()
}

// Get returns the current configuration snapshot
func (l *Loader) Get() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}

// OnReload registers a callback invoked after each successful reload
func (l *Loader) OnReload(cb ReloadCallback) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reloadCallbacks = append(l.reloadCallbacks, cb)
}

// Load is a convenience wrapper that loads configuration once without watching
func Load(configFile string) (*Config, error) {
	loader, err := NewLoader(LoaderOptions{ConfigFile: configFile})
	if err != nil {
		return nil, err
	}
	return loader.Get(), nil
}
