package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

type Config struct {
	Server    HTTPServerConfig `json:"server"`
	Generator GeneratorConfig  `json:"generator"`
	Log       LogConfig        `json:"log"`
}

type HTTPServerConfig struct {
	Host           string        `json:"host" default:"0.0.0.0" validate:"required"`
	Port           int           `json:"port" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout    time.Duration `json:"read_timeout" default:"30s" validate:"gt=0"`
	WriteTimeout   time.Duration `json:"write_timeout" default:"30s" validate:"gt=0"`
	MetricsAddr    string        `json:"metrics_addr" validate:"omitempty,hostname_port"`
	AllowedOrigins []string      `json:"allowed_origins" default:"*"`
}

type GeneratorConfig struct {
	MaxHostsPerRole  int `json:"max_hosts_per_role" default:"64" validate:"min=1,max=1024"`
	DefaultHostCount int `json:"default_host_count" default:"3" validate:"min=0,ltefield=MaxHostsPerRole"`
}

type LogConfig struct {
	Level string `json:"level" default:"info" validate:"oneof=debug info warn error"`
}

// fileConfig mirrors Config for HCL decoding. Every attribute is optional so a
// file only needs to name what it overrides.
type fileConfig struct {
	Server    *fileServer    `hcl:"server,block"`
	Generator *fileGenerator `hcl:"generator,block"`
	Log       *fileLog       `hcl:"log,block"`
}

type fileServer struct {
	Host           *string  `hcl:"host,optional"`
	Port           *int     `hcl:"port,optional"`
	ReadTimeout    *string  `hcl:"read_timeout,optional"`
	WriteTimeout   *string  `hcl:"write_timeout,optional"`
	MetricsAddr    *string  `hcl:"metrics_addr,optional"`
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
}

type fileGenerator struct {
	MaxHostsPerRole  *int `hcl:"max_hosts_per_role,optional"`
	DefaultHostCount *int `hcl:"default_host_count,optional"`
}

type fileLog struct {
	Level *string `hcl:"level,optional"`
}

var validate = validator.New()

func Default() *Config {
	return &Config{
		Server: HTTPServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Generator: GeneratorConfig{
			MaxHostsPerRole:  64,
			DefaultHostCount: 3,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the HCL file named by
// MCGEN_CONFIG (if set) and environment variables, in that order.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("MCGEN_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) applyFile(path string) error {
	var fc fileConfig
	if err := hclsimple.DecodeFile(path, nil, &fc); err != nil {
		return fmt.Errorf("load config file %s: %w", path, err)
	}

	if s := fc.Server; s != nil {
		if s.Host != nil {
			c.Server.Host = *s.Host
		}
		if s.Port != nil {
			c.Server.Port = *s.Port
		}
		if s.ReadTimeout != nil {
			d, err := time.ParseDuration(*s.ReadTimeout)
			if err != nil {
				return fmt.Errorf("server.read_timeout: %w", err)
			}
			c.Server.ReadTimeout = d
		}
		if s.WriteTimeout != nil {
			d, err := time.ParseDuration(*s.WriteTimeout)
			if err != nil {
				return fmt.Errorf("server.write_timeout: %w", err)
			}
			c.Server.WriteTimeout = d
		}
		if s.MetricsAddr != nil {
			c.Server.MetricsAddr = *s.MetricsAddr
		}
		if s.AllowedOrigins != nil {
			c.Server.AllowedOrigins = s.AllowedOrigins
		}
	}

	if g := fc.Generator; g != nil {
		if g.MaxHostsPerRole != nil {
			c.Generator.MaxHostsPerRole = *g.MaxHostsPerRole
		}
		if g.DefaultHostCount != nil {
			c.Generator.DefaultHostCount = *g.DefaultHostCount
		}
	}

	if l := fc.Log; l != nil && l.Level != nil {
		c.Log.Level = *l.Level
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.MetricsAddr = getEnv("METRICS_ADDR", c.Server.MetricsAddr)
	c.Log.Level = strings.ToLower(getEnv("LOG_LEVEL", c.Log.Level))

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"SERVER_PORT", &c.Server.Port},
		{"MAX_HOSTS_PER_ROLE", &c.Generator.MaxHostsPerRole},
		{"DEFAULT_HOST_COUNT", &c.Generator.DefaultHostCount},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s env variable: %w", e.key, err)
		}
		*e.dst = n
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
