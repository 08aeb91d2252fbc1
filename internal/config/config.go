// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitconfig "github.com/go-git/go-git/v5/config"
	"gopkg.in/yaml.v3"
)

const EnvVar = "GITPANEL_ENV"

type Config struct {
	Server struct {
		Host string `json:"host" yaml:"host"`
		Port int    `json:"port" yaml:"port"`
	} `json:"server" yaml:"server"`

	Cache struct {
		Enabled bool   `json:"enabled" yaml:"enabled"`
		Path    string `json:"path" yaml:"path"` // empty keeps the cache in memory
		Size    int    `json:"size" yaml:"size"`
	} `json:"cache" yaml:"cache"`

	Identity struct {
		Scope string `json:"scope" yaml:"scope"` // local, global, system
	} `json:"identity" yaml:"identity"`

	Watch struct {
		DebounceMS int `json:"debounce_ms" yaml:"debounce_ms"`
	} `json:"watch" yaml:"watch"`

	Environment string `json:"environment" yaml:"environment"` // development, production
	LogLevel    string `json:"log_level" yaml:"log_level"`     // debug, info, warn, error
}

func Default() *Config {
	var c Config
	c.Server.Host = "127.0.0.1"
	c.Server.Port = 7420
	c.Cache.Enabled = true
	c.Cache.Size = 256
	c.Identity.Scope = "global"
	c.Watch.DebounceMS = 250
	c.Environment = "development"
	c.LogLevel = "info"
	return &c
}

// Path returns config/config.<env>.json where env comes from GITPANEL_ENV.
func Path() string {
	env := os.Getenv(EnvVar)
	if env == "" {
		env = "development"
	}
	return fmt.Sprintf("config/config.%s.json", env)
}

// Load reads a JSON or YAML file (by extension) over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	config, err := Load(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return config, err
}

func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if _, err := c.IdentityScope(); err != nil {
		return err
	}
	if c.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative")
	}
	switch c.Environment {
	case "", "development", "production":
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IdentityScope maps identity.scope onto the git config scope that is read
// for user.name and user.email. Wider scopes include the narrower files.
func (c *Config) IdentityScope() (gitconfig.Scope, error) {
	switch strings.ToLower(c.Identity.Scope) {
	case "", "global":
		return gitconfig.GlobalScope, nil
	case "local":
		return gitconfig.LocalScope, nil
	case "system":
		return gitconfig.SystemScope, nil
	default:
		return 0, fmt.Errorf("unknown identity.scope %q", c.Identity.Scope)
	}
}
