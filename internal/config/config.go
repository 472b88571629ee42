package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// ConfigFileEnv names an optional YAML file whose keys mirror the
// environment variable names. Environment variables take precedence.
const ConfigFileEnv = "CONFIG_FILE"

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Log           LogConfig
	Push          PushConfig
	Dispatch      DispatchConfig
	PubSub        PubSubConfig
	Observability ObservabilityConfig
	Agent         AgentConfig
}

type LogConfig struct {
	Level string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	// DSN selects the postgres store. Empty keeps everything in memory.
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type PushConfig struct {
	URL            string
	AccessToken    string
	RequestTimeout time.Duration
}

type DispatchConfig struct {
	Secret string
	// Interval of the in-process dispatch ticker. Zero leaves dispatch to an external trigger.
	Interval time.Duration
}

type PubSubConfig struct {
	NatsURL string
}

type ObservabilityConfig struct {
	ServiceName       string
	Environment       string
	TraceSamplingRate float64
	// Exporter is none, stdout or gcloud.
	Exporter       string
	ExportInterval time.Duration
	GCPProjectID   string
}

type AgentConfig struct {
	UserID      string
	RecordDB    string
	TasksFile   string
	ServerURL   string
	SyncTimeout time.Duration
}

var defaults = map[string]string{
	"SERVER_HOST":             "0.0.0.0",
	"SERVER_PORT":             "8080",
	"SERVER_READ_TIMEOUT":     "30s",
	"SERVER_WRITE_TIMEOUT":    "30s",
	"DB_MAX_OPEN_CONNS":       "25",
	"DB_MAX_IDLE_CONNS":       "25",
	"DB_CONN_MAX_LIFETIME":    "5m",
	"LOG_LEVEL":               "info",
	"EXPO_PUSH_URL":           "https://exp.host/--/api/v2/push/send",
	"PUSH_REQUEST_TIMEOUT":    "10s",
	"DISPATCH_INTERVAL":       "0s",
	"SERVICE_NAME":            "task-reminder",
	"ENV":                     "local",
	"TRACE_SAMPLING_RATE":     "1.0",
	"OTEL_EXPORTER":           "none",
	"METRICS_EXPORT_INTERVAL": "60s",
	"AGENT_USER_ID":           "local",
	"AGENT_RECORD_DB":         "reminders.db",
	"AGENT_TASKS_FILE":        "tasks.json",
	"AGENT_SYNC_TIMEOUT":      "8s",
}

func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	l := loader{v: v}

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         l.int("SERVER_PORT"),
			ReadTimeout:  l.duration("SERVER_READ_TIMEOUT"),
			WriteTimeout: l.duration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("POSTGRES_DSN"),
			MaxOpenConns:    l.int("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    l.int("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: l.duration("DB_CONN_MAX_LIFETIME"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Push: PushConfig{
			URL:            v.GetString("EXPO_PUSH_URL"),
			AccessToken:    v.GetString("EXPO_ACCESS_TOKEN"),
			RequestTimeout: l.duration("PUSH_REQUEST_TIMEOUT"),
		},
		Dispatch: DispatchConfig{
			Secret:   v.GetString("REMINDER_DISPATCH_SECRET"),
			Interval: l.duration("DISPATCH_INTERVAL"),
		},
		PubSub: PubSubConfig{
			NatsURL: v.GetString("NATS_URL"),
		},
		Observability: ObservabilityConfig{
			ServiceName:       v.GetString("SERVICE_NAME"),
			Environment:       v.GetString("ENV"),
			TraceSamplingRate: l.float("TRACE_SAMPLING_RATE"),
			Exporter:          v.GetString("OTEL_EXPORTER"),
			ExportInterval:    l.duration("METRICS_EXPORT_INTERVAL"),
			GCPProjectID:      gcpProjectID(v),
		},
		Agent: AgentConfig{
			UserID:      v.GetString("AGENT_USER_ID"),
			RecordDB:    v.GetString("AGENT_RECORD_DB"),
			TasksFile:   v.GetString("AGENT_TASKS_FILE"),
			ServerURL:   v.GetString("AGENT_SERVER_URL"),
			SyncTimeout: l.duration("AGENT_SYNC_TIMEOUT"),
		},
	}

	if l.err != nil {
		return nil, l.err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT: %d out of range", c.Server.Port)
	}

	if c.Observability.TraceSamplingRate < 0 || c.Observability.TraceSamplingRate > 1 {
		return fmt.Errorf("invalid TRACE_SAMPLING_RATE: %v not in [0, 1]", c.Observability.TraceSamplingRate)
	}

	switch c.Observability.Exporter {
	case "none", "stdout", "gcloud":
	default:
		return fmt.Errorf("invalid OTEL_EXPORTER: %q is not one of none, stdout, gcloud", c.Observability.Exporter)
	}

	if c.Observability.ExportInterval <= 0 {
		return fmt.Errorf("invalid METRICS_EXPORT_INTERVAL: %s must be positive", c.Observability.ExportInterval)
	}

	if c.Dispatch.Interval < 0 {
		return fmt.Errorf("invalid DISPATCH_INTERVAL: %s is negative", c.Dispatch.Interval)
	}

	if c.Push.RequestTimeout <= 0 {
		return fmt.Errorf("invalid PUSH_REQUEST_TIMEOUT: %s must be positive", c.Push.RequestTimeout)
	}

	return nil
}

// loader keeps the first parse failure so Load can report it once.
type loader struct {
	v   *viper.Viper
	err error
}

func (l *loader) int(key string) int {
	n, err := strconv.Atoi(l.v.GetString(key))
	if err != nil && l.err == nil {
		l.err = fmt.Errorf("invalid %s: %w", key, err)
	}

	return n
}

func (l *loader) duration(key string) time.Duration {
	d, err := time.ParseDuration(l.v.GetString(key))
	if err != nil && l.err == nil {
		l.err = fmt.Errorf("invalid %s: %w", key, err)
	}

	return d
}

func (l *loader) float(key string) float64 {
	f, err := strconv.ParseFloat(l.v.GetString(key), 64)
	if err != nil && l.err == nil {
		l.err = fmt.Errorf("invalid %s: %w", key, err)
	}

	return f
}

// gcpProjectID prefers the Cloud Run project variable.
func gcpProjectID(v *viper.Viper) string {
	if id := v.GetString("GOOGLE_CLOUD_PROJECT"); id != "" {
		return id
	}

	return v.GetString("GCLOUD_PROJECT_ID")
}

func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
