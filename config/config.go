package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/ini.v1"
)

type Config struct {
	ConnectTimeoutMs int    `json:"connect_timeout_ms" ini:"connect_timeout_ms"`
	Backlog          int    `json:"backlog" ini:"backlog"`
	LogLevel         string `json:"log_level" ini:"log_level"`
	LogLines         int    `json:"log_lines" ini:"log_lines"`
	LogsDir          string `json:"logs_dir" ini:"logs_dir"`
	RecentDir        string `json:"recent_dir" ini:"recent_dir"`
}

const (
	defaultConnectTimeoutMs = 1000
	defaultBacklog          = 5
	defaultLogLevel         = "info"
	defaultLogLines         = 1000
	defaultLogsDir          = "logs"
	defaultRecentDir        = "recent"
)

var (
	defaultConfig *Config
	once          sync.Once
)

func Default() *Config {
	return &Config{
		ConnectTimeoutMs: defaultConnectTimeoutMs,
		Backlog:          defaultBacklog,
		LogLevel:         defaultLogLevel,
		LogLines:         defaultLogLines,
		LogsDir:          defaultLogsDir,
		RecentDir:        defaultRecentDir,
	}
}

// ConnectTimeout is the port checker's dial bound.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMs) * time.Millisecond
}

func searchPaths() []string {
	return []string{
		"netprobe.json",
		".netprobe.json",
		"netprobe.ini",
		filepath.Join(os.Getenv("HOME"), ".config", "netprobe", "config.json"),
	}
}

// Load reads a JSON or INI config file. An empty path tries the default
// locations; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		for _, p := range searchPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}

		if path == "" {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if strings.EqualFold(filepath.Ext(path), ".ini") {
		f, err := ini.Load(path)
		if err != nil {
			return nil, err
		}
		if err := f.MapTo(cfg); err != nil {
			return nil, err
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ConnectTimeoutMs <= 0 {
		c.ConnectTimeoutMs = defaultConnectTimeoutMs
	}
	if c.Backlog <= 0 {
		c.Backlog = defaultBacklog
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.LogLines <= 0 {
		c.LogLines = defaultLogLines
	}
	if c.LogsDir == "" {
		c.LogsDir = defaultLogsDir
	}
	if c.RecentDir == "" {
		c.RecentDir = defaultRecentDir
	}
}

// LoadDefault loads the config once and caches it
func LoadDefault() (*Config, error) {
	var err error
	once.Do(func() {
		defaultConfig, err = Load("")
	})
	if err != nil {
		return Default(), err
	}
	return defaultConfig, nil
}
