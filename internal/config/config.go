package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Directory modes
const (
	ModeSQLite = "sqlite"
	ModeHTTP   = "http"
	ModeMock   = "mock"
)

// Config holds all application configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Directory DirectoryConfig `yaml:"directory"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Mock      MockConfig      `yaml:"mock"`
	Debug     bool            `yaml:"debug"`
	Tracing   bool            `yaml:"tracing"`
}

// HTTPConfig holds the REST and websocket surface settings
type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	AccessLog      bool     `yaml:"access_log"`
	RefreshLimit   int      `yaml:"refresh_limit"` // manual refreshes per client per minute
}

// GRPCConfig holds the gRPC server settings. Port 0 disables the server.
type GRPCConfig struct {
	Port int `yaml:"port"`
}

// DirectoryConfig selects where devices and alerts come from
type DirectoryConfig struct {
	Mode         string        `yaml:"mode"` // sqlite, http, mock
	URL          string        `yaml:"url"`
	DBPath       string        `yaml:"db_path"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// DashboardConfig holds the refresh pipeline settings
type DashboardConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	AutoRefresh     bool          `yaml:"auto_refresh"`
	AlertLimit      int           `yaml:"alert_limit"`
}

// KafkaConfig enables snapshot publication when Brokers is set
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// MQTTConfig enables the device-event refresh trigger when Broker is set
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// MockConfig drives the simulated fleet
type MockConfig struct {
	Scenario     string        `yaml:"scenario"`
	Seed         int64         `yaml:"seed"`
	StepInterval time.Duration `yaml:"step_interval"`
	Latitude     float64       `yaml:"latitude"`
	Longitude    float64       `yaml:"longitude"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:         ":8080",
			RefreshLimit: 10,
		},
		GRPC: GRPCConfig{Port: 9000},
		Directory: DirectoryConfig{
			Mode:         ModeMock,
			DBPath:       getDefaultDBPath(),
			FetchTimeout: 10 * time.Second,
		},
		Dashboard: DashboardConfig{
			RefreshInterval: 30 * time.Second,
			AutoRefresh:     true,
			AlertLimit:      5,
		},
		Kafka: KafkaConfig{Topic: "fleetpulse.snapshots"},
		MQTT: MQTTConfig{
			Topic:    "fleet/devices/+/events",
			ClientID: "fleetpulse",
		},
		Mock: MockConfig{
			Scenario:     "basic",
			StepInterval: 5 * time.Second,
			Latitude:     40.4168,
			Longitude:    -3.7038,
		},
	}
}

// Load builds the configuration from os.Args.
func Load() (*Config, error) {
	return Parse(os.Args[1:])
}

// Parse layers defaults, the optional YAML file, FLEETPULSE_* environment
// variables and finally command-line flags, each overriding the previous.
func Parse(args []string) (*Config, error) {
	cfg := Default()

	if path := configPath(args); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	fs := flag.NewFlagSet("fleetpulse", flag.ContinueOnError)
	var origins, brokers string
	fs.String("config", "", "Path to a YAML configuration file")
	fs.StringVar(&cfg.HTTP.Addr, "addr", cfg.HTTP.Addr, "HTTP server address")
	fs.StringVar(&origins, "origins", strings.Join(cfg.HTTP.AllowedOrigins, ","), "Allowed CORS/websocket origins (comma separated, empty allows any)")
	fs.BoolVar(&cfg.HTTP.AccessLog, "access-log", cfg.HTTP.AccessLog, "Write HTTP access log lines to stdout")
	fs.IntVar(&cfg.GRPC.Port, "grpc", cfg.GRPC.Port, "gRPC server port (0 disables)")
	fs.StringVar(&cfg.Directory.Mode, "mode", cfg.Directory.Mode, "Device directory: sqlite, http or mock")
	fs.StringVar(&cfg.Directory.URL, "directory-url", cfg.Directory.URL, "Base URL of the device directory (http mode)")
	fs.StringVar(&cfg.Directory.DBPath, "db", cfg.Directory.DBPath, "Path to SQLite database (sqlite mode)")
	fs.DurationVar(&cfg.Directory.FetchTimeout, "fetch-timeout", cfg.Directory.FetchTimeout, "Timeout of a single upstream call")
	fs.DurationVar(&cfg.Dashboard.RefreshInterval, "interval", cfg.Dashboard.RefreshInterval, "Dashboard refresh interval")
	fs.BoolVar(&cfg.Dashboard.AutoRefresh, "auto-refresh", cfg.Dashboard.AutoRefresh, "Refresh periodically while observed")
	fs.IntVar(&cfg.Dashboard.AlertLimit, "alerts", cfg.Dashboard.AlertLimit, "Number of ranked alerts shown")
	fs.StringVar(&brokers, "kafka", strings.Join(cfg.Kafka.Brokers, ","), "Kafka brokers for snapshot publication (comma separated)")
	fs.StringVar(&cfg.Kafka.Topic, "kafka-topic", cfg.Kafka.Topic, "Kafka topic for snapshots")
	fs.StringVar(&cfg.MQTT.Broker, "mqtt", cfg.MQTT.Broker, "MQTT broker for device events (tcp://host:1883)")
	fs.StringVar(&cfg.MQTT.Topic, "mqtt-topic", cfg.MQTT.Topic, "MQTT topic filter for device events")
	fs.StringVar(&cfg.Mock.Scenario, "scenario", cfg.Mock.Scenario, "Simulated fleet scenario (mock mode)")
	fs.Int64Var(&cfg.Mock.Seed, "seed", cfg.Mock.Seed, "Simulation seed (0 uses the clock)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")
	fs.BoolVar(&cfg.Tracing, "tracing", cfg.Tracing, "Export OpenTelemetry spans to stdout")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.HTTP.AllowedOrigins = splitList(origins)
	cfg.Kafka.Brokers = splitList(brokers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects inconsistent settings.
func (c *Config) Validate() error {
	switch c.Directory.Mode {
	case ModeSQLite, ModeMock:
	case ModeHTTP:
		if c.Directory.URL == "" {
			return fmt.Errorf("directory mode %q needs a directory URL", c.Directory.Mode)
		}
	default:
		return fmt.Errorf("unknown directory mode %q", c.Directory.Mode)
	}
	if c.Dashboard.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", c.Dashboard.RefreshInterval)
	}
	if c.Dashboard.AlertLimit <= 0 {
		return fmt.Errorf("alert limit must be positive, got %d", c.Dashboard.AlertLimit)
	}
	if c.GRPC.Port < 0 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid gRPC port %d", c.GRPC.Port)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka brokers set without a topic")
	}
	if c.Directory.Mode == ModeMock && c.Mock.StepInterval < 0 {
		return fmt.Errorf("mock step interval must not be negative, got %s", c.Mock.StepInterval)
	}
	return nil
}

// loadFile merges a YAML file over the current values. ${VAR} references
// are expanded from the environment.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTP.Addr = getEnv("FLEETPULSE_ADDR", c.HTTP.Addr)
	if v, ok := os.LookupEnv("FLEETPULSE_ORIGINS"); ok {
		c.HTTP.AllowedOrigins = splitList(v)
	}
	c.GRPC.Port = getEnvInt("FLEETPULSE_GRPC", c.GRPC.Port)
	c.Directory.Mode = getEnv("FLEETPULSE_MODE", c.Directory.Mode)
	c.Directory.URL = getEnv("FLEETPULSE_DIRECTORY_URL", c.Directory.URL)
	c.Directory.DBPath = getEnv("FLEETPULSE_DB", c.Directory.DBPath)
	c.Directory.FetchTimeout = getEnvDuration("FLEETPULSE_FETCH_TIMEOUT", c.Directory.FetchTimeout)
	c.Dashboard.RefreshInterval = getEnvDuration("FLEETPULSE_INTERVAL", c.Dashboard.RefreshInterval)
	c.Dashboard.AutoRefresh = getEnvBool("FLEETPULSE_AUTO_REFRESH", c.Dashboard.AutoRefresh)
	c.Dashboard.AlertLimit = getEnvInt("FLEETPULSE_ALERTS", c.Dashboard.AlertLimit)
	if v, ok := os.LookupEnv("FLEETPULSE_KAFKA"); ok {
		c.Kafka.Brokers = splitList(v)
	}
	c.Kafka.Topic = getEnv("FLEETPULSE_KAFKA_TOPIC", c.Kafka.Topic)
	c.MQTT.Broker = getEnv("FLEETPULSE_MQTT", c.MQTT.Broker)
	c.MQTT.Topic = getEnv("FLEETPULSE_MQTT_TOPIC", c.MQTT.Topic)
	c.Mock.Scenario = getEnv("FLEETPULSE_SCENARIO", c.Mock.Scenario)
	c.Mock.Latitude = getEnvFloat("FLEETPULSE_LAT", c.Mock.Latitude)
	c.Mock.Longitude = getEnvFloat("FLEETPULSE_LNG", c.Mock.Longitude)
	c.Debug = getEnvBool("FLEETPULSE_DEBUG", c.Debug)
	c.Tracing = getEnvBool("FLEETPULSE_TRACING", c.Tracing)
}

// configPath finds -config in args, falling back to FLEETPULSE_CONFIG. It
// runs before flag parsing so the file can sit below the flags.
func configPath(args []string) string {
	path := os.Getenv("FLEETPULSE_CONFIG")
	for i, a := range args {
		if a == "--" {
			break
		}
		if !strings.HasPrefix(a, "-") {
			continue
		}
		name, val, hasVal := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if name != "config" {
			continue
		}
		if hasVal {
			path = val
		} else if i+1 < len(args) {
			path = args[i+1]
		}
	}
	return path
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getDefaultDBPath returns ~/.fleetpulse/fleetpulse.db, creating the
// directory when needed.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Warn("Could not get user home directory, using current dir", "error", err)
		return "fleetpulse.db"
	}

	dir := filepath.Join(home, ".fleetpulse")
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Warn("Could not create .fleetpulse directory, using current dir", "error", err)
		return "fleetpulse.db"
	}

	return filepath.Join(dir, "fleetpulse.db")
}
