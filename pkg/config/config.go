// Package config provides configuration management for the nanocube
// service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Cube      CubeConfig      `mapstructure:"cube"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

// CubeConfig holds cube schema and ingestion configuration.
type CubeConfig struct {
	// Widths is the per-dimension bit width of the cube schema. When empty,
	// a two-dimensional quadtree schema of QuadLevel is derived.
	Widths []int `mapstructure:"widths"`

	// QuadLevel is the quadtree refinement level for lat/lon projection.
	QuadLevel int `mapstructure:"quad_level"`

	// DataDir is where cube images and catalogs are written.
	DataDir string `mapstructure:"data_dir"`

	// ParserWorkers bounds the projection worker pool during ingestion.
	ParserWorkers int `mapstructure:"parser_workers"`
}

// ServerConfig holds HTTP façade configuration.
type ServerConfig struct {
	Port           int `mapstructure:"port"`
	ReadTimeoutS   int `mapstructure:"read_timeout_s"`
	WriteTimeoutS  int `mapstructure:"write_timeout_s"`
	ShutdownGraceS int `mapstructure:"shutdown_grace_s"`
}

// DatabaseConfig holds the dataset catalog connection configuration.
type DatabaseConfig struct {
	Type     string `mapstructure:"type"` // sqlite, postgres or mysql
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Path     string `mapstructure:"path"` // for sqlite
	MaxConns int    `mapstructure:"max_conns"`
}

// StorageConfig holds dataset storage configuration.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // cos or local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"`
	Scheme    string `mapstructure:"scheme"`
	LocalPath string `mapstructure:"local_path"`
}

// TelemetryConfig holds tracing configuration.
type TelemetryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // grpc or http
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	Insecure    bool    `mapstructure:"insecure"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/nanocube")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// no config file, run on defaults
		} else if os.IsNotExist(err) {
			// explicit path missing, run on defaults
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("NANOCUBE")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw bytes (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("cube.quad_level", 10)
	v.SetDefault("cube.data_dir", "./data")
	v.SetDefault("cube.parser_workers", 4)

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout_s", 30)
	v.SetDefault("server.write_timeout_s", 30)
	v.SetDefault("server.shutdown_grace_s", 5)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "./data/catalog.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./storage")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.protocol", "grpc")
	v.SetDefault("telemetry.service_name", "nanocube")
	v.SetDefault("telemetry.sample_ratio", 1.0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("sqlite database path is required")
		}
	case "postgres", "mysql":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if c.Cube.QuadLevel < 1 || c.Cube.QuadLevel > 15 {
		return fmt.Errorf("quad level %d outside [1, 15]", c.Cube.QuadLevel)
	}
	for _, w := range c.Cube.Widths {
		if w < 1 || w > 30 {
			return fmt.Errorf("cube width %d outside [1, 30]", w)
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d invalid", c.Server.Port)
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			return fmt.Errorf("telemetry endpoint is required when telemetry is enabled")
		}
		if c.Telemetry.Protocol != "grpc" && c.Telemetry.Protocol != "http" {
			return fmt.Errorf("unsupported telemetry protocol: %s", c.Telemetry.Protocol)
		}
	}

	return nil
}

// CubeWidths returns the configured schema, deriving the two-dimensional
// quadtree schema when no explicit widths are set.
func (c *Config) CubeWidths() []int {
	if len(c.Cube.Widths) > 0 {
		return c.Cube.Widths
	}
	return []int{c.Cube.QuadLevel * 2, c.Cube.QuadLevel * 2}
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	if c.Cube.DataDir == "" {
		return nil
	}
	return os.MkdirAll(c.Cube.DataDir, 0755)
}

// CubeImagePath returns the path of a dataset's cube image.
func (c *Config) CubeImagePath(uuid string) string {
	return filepath.Join(c.Cube.DataDir, uuid+".ncube")
}
