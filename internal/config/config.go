package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete extforge configuration.
type Config struct {
	// Sources are files, directories or doublestar globs holding HCL
	// declaration files.
	Sources []string      `yaml:"sources"`
	Output  OutputConfig  `yaml:"output"`
	Compile CompileConfig `yaml:"compile"`
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	NATS    NATSConfig    `yaml:"nats"`
}

// OutputConfig configures where compiled definitions go.
type OutputConfig struct {
	// Dir receives one XML file per definition. Empty disables it.
	Dir string `yaml:"dir"`
	// DatabaseURL is a Postgres URL for the definition store. Empty
	// disables it.
	DatabaseURL string `yaml:"database_url"`
	// DTD is the document type named in every generated file.
	DTD string `yaml:"dtd"`
	// NotifyURL is a socket.io endpoint that receives every compiled
	// document as a "definition" event. Empty disables it.
	NotifyURL       string `yaml:"notify_url"`
	NotifyNamespace string `yaml:"notify_namespace"`
}

// CompileConfig tunes the compile pass.
type CompileConfig struct {
	Workers  int           `yaml:"workers"`
	Debounce time.Duration `yaml:"debounce"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures the HTTP dispatch API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// NATSConfig configures the NATS dispatch transport. An empty URL disables
// it.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Sources: []string{"declarations"},
		Output: OutputConfig{
			Dir: "build/definitions",
			DTD: "object.dtd",
		},
		Compile: CompileConfig{
			Workers:  4,
			Debounce: 300 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		NATS: NATSConfig{
			Subject: "extforge.dispatch",
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json; got %q", c.Log.Format)
	}
	if c.Compile.Workers < 1 {
		return fmt.Errorf("compile.workers must be at least 1")
	}
	if c.Compile.Debounce < 0 {
		return fmt.Errorf("compile.debounce must not be negative")
	}
	if c.Output.DTD == "" {
		return fmt.Errorf("output.dtd is required")
	}
	if c.NATS.URL != "" && c.NATS.Subject == "" {
		return fmt.Errorf("nats.subject is required when nats.url is set")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Merge copies the non-zero values of other into c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if len(other.Sources) > 0 {
		c.Sources = other.Sources
	}

	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}
	if other.Output.DatabaseURL != "" {
		c.Output.DatabaseURL = other.Output.DatabaseURL
	}
	if other.Output.DTD != "" {
		c.Output.DTD = other.Output.DTD
	}
	if other.Output.NotifyURL != "" {
		c.Output.NotifyURL = other.Output.NotifyURL
	}
	if other.Output.NotifyNamespace != "" {
		c.Output.NotifyNamespace = other.Output.NotifyNamespace
	}

	if other.Compile.Workers != 0 {
		c.Compile.Workers = other.Compile.Workers
	}
	if other.Compile.Debounce != 0 {
		c.Compile.Debounce = other.Compile.Debounce
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}

	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Subject != "" {
		c.NATS.Subject = other.NATS.Subject
	}
}
