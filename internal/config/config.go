package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel     string `yaml:"log_level"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	OTLPInsecure bool   `yaml:"otlp_insecure"`
}

type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bind    string `yaml:"bind"`
	Port    int    `yaml:"port"`
}

type SessionConfig struct {
	SampleRate      int  `yaml:"sample_rate"`
	Channels        int  `yaml:"channels"`
	PartialEveryMS  int  `yaml:"partial_every_ms"`
	MinAudioMS      int  `yaml:"min_audio_ms"`
	MaxBufferSecs   int  `yaml:"max_buffer_secs"`
	EmitReady       bool `yaml:"emit_ready"`
	PublishPartials bool `yaml:"publish_partials"`
}

type TranscriberConfig struct {
	Mode      string `yaml:"mode"`
	Command   string `yaml:"command"`
	ModelPath string `yaml:"model_path"`
	Language  string `yaml:"language"`
}

type OutputConfig struct {
	Format string `yaml:"format"`
}

type BusConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Servers        []string `yaml:"servers"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
}

type StoreConfig struct {
	Path          string `yaml:"path"`
	RetentionMode string `yaml:"retention_mode"`
	RetentionDays int    `yaml:"retention_days"`
	MaxSessions   int    `yaml:"max_sessions"`
	VacuumOnStart bool   `yaml:"vacuum_on_start"`
}

type Config struct {
	ServiceName string            `yaml:"service_name"`
	Environment string            `yaml:"environment"`
	HTTP        HTTPConfig        `yaml:"http"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Session     SessionConfig     `yaml:"session"`
	Transcriber TranscriberConfig `yaml:"transcriber"`
	Output      OutputConfig      `yaml:"output"`
	Bus         BusConfig         `yaml:"bus"`
	Store       StoreConfig       `yaml:"store"`
}

func Default() Config {
	return Config{
		ServiceName: "captiond",
		Environment: "development",
		HTTP: HTTPConfig{
			Enabled: false,
			Bind:    "0.0.0.0",
			Port:    9090,
		},
		Telemetry: TelemetryConfig{
			LogLevel:     "info",
			OTLPEndpoint: "",
			OTLPInsecure: true,
		},
		Session: SessionConfig{
			SampleRate:      16000,
			Channels:        1,
			PartialEveryMS:  500,
			MinAudioMS:      1000,
			MaxBufferSecs:   180,
			EmitReady:       true,
			PublishPartials: true,
		},
		Transcriber: TranscriberConfig{
			Mode: "mock",
		},
		Output: OutputConfig{
			Format: "json",
		},
		Bus: BusConfig{
			Enabled:        false,
			Servers:        []string{"nats://localhost:4222"},
			ConnectTimeout: 2000,
		},
		Store: StoreConfig{
			Path:          "./data/caption-transcripts.db",
			RetentionMode: "ephemeral",
			RetentionDays: 30,
			MaxSessions:   10000,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.ServiceName, "CAPTION_SERVICE_NAME")
	overrideString(&cfg.Environment, "CAPTION_ENVIRONMENT")
	overrideBool(&cfg.HTTP.Enabled, "CAPTION_HTTP_ENABLED")
	overrideString(&cfg.HTTP.Bind, "CAPTION_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "CAPTION_HTTP_PORT")
	overrideString(&cfg.Telemetry.LogLevel, "CAPTION_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "CAPTION_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "CAPTION_TELEMETRY_OTLP_INSECURE")
	overrideInt(&cfg.Session.SampleRate, "CAPTION_SESSION_SAMPLE_RATE")
	overrideInt(&cfg.Session.Channels, "CAPTION_SESSION_CHANNELS")
	overrideInt(&cfg.Session.PartialEveryMS, "CAPTION_SESSION_PARTIAL_EVERY_MS")
	overrideInt(&cfg.Session.MinAudioMS, "CAPTION_SESSION_MIN_AUDIO_MS")
	overrideInt(&cfg.Session.MaxBufferSecs, "CAPTION_SESSION_MAX_BUFFER_SECS")
	overrideBool(&cfg.Session.EmitReady, "CAPTION_SESSION_EMIT_READY")
	overrideBool(&cfg.Session.PublishPartials, "CAPTION_SESSION_PUBLISH_PARTIALS")
	overrideString(&cfg.Transcriber.Mode, "CAPTION_TRANSCRIBER_MODE")
	overrideString(&cfg.Transcriber.Command, "CAPTION_TRANSCRIBER_COMMAND")
	overrideString(&cfg.Transcriber.ModelPath, "CAPTION_TRANSCRIBER_MODEL_PATH")
	overrideString(&cfg.Transcriber.Language, "CAPTION_TRANSCRIBER_LANGUAGE")
	overrideString(&cfg.Output.Format, "CAPTION_OUTPUT_FORMAT")
	overrideBool(&cfg.Bus.Enabled, "CAPTION_BUS_ENABLED")
	overrideStringSlice(&cfg.Bus.Servers, "CAPTION_BUS_SERVERS")
	overrideString(&cfg.Bus.Username, "CAPTION_BUS_USERNAME")
	overrideString(&cfg.Bus.Password, "CAPTION_BUS_PASSWORD")
	overrideString(&cfg.Bus.Token, "CAPTION_BUS_TOKEN")
	overrideBool(&cfg.Bus.TLSInsecure, "CAPTION_BUS_TLS_INSECURE")
	overrideInt(&cfg.Bus.ConnectTimeout, "CAPTION_BUS_CONNECT_TIMEOUT_MS")
	overrideString(&cfg.Store.Path, "CAPTION_STORE_PATH")
	overrideString(&cfg.Store.RetentionMode, "CAPTION_STORE_RETENTION_MODE")
	overrideInt(&cfg.Store.RetentionDays, "CAPTION_STORE_RETENTION_DAYS")
	overrideInt(&cfg.Store.MaxSessions, "CAPTION_STORE_MAX_SESSIONS")
	overrideBool(&cfg.Store.VacuumOnStart, "CAPTION_STORE_VACUUM_ON_START")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func validate(cfg Config) error {
	if cfg.ServiceName == "" {
		return errors.New("service_name must not be empty")
	}
	if cfg.HTTP.Enabled {
		if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
			return errors.New("http.port must be between 1 and 65535")
		}
	}
	if cfg.Session.SampleRate <= 0 {
		return errors.New("session.sample_rate must be positive")
	}
	if cfg.Session.Channels <= 0 {
		return errors.New("session.channels must be positive")
	}
	if cfg.Session.PartialEveryMS < 0 {
		return errors.New("session.partial_every_ms must be >= 0")
	}
	if cfg.Session.MinAudioMS <= 0 {
		return errors.New("session.min_audio_ms must be positive")
	}
	if cfg.Session.MaxBufferSecs <= 0 {
		return errors.New("session.max_buffer_secs must be positive")
	}
	if cfg.Session.MinAudioMS/1000 > cfg.Session.MaxBufferSecs {
		return errors.New("session.min_audio_ms must not exceed session.max_buffer_secs")
	}
	switch cfg.Transcriber.Mode {
	case "mock", "exec":
	default:
		return errors.New("transcriber.mode must be one of mock|exec")
	}
	if cfg.Transcriber.Mode == "exec" && cfg.Transcriber.Command == "" {
		return errors.New("transcriber.command must be set when mode=exec")
	}
	switch cfg.Output.Format {
	case "json", "text":
	default:
		return errors.New("output.format must be one of json|text")
	}
	if cfg.Bus.Enabled && len(cfg.Bus.Servers) == 0 {
		return errors.New("bus.servers must not be empty when bus is enabled")
	}
	switch cfg.Store.RetentionMode {
	case "ephemeral", "session", "persistent":
		// ok
	default:
		return errors.New("store.retention_mode must be one of ephemeral|session|persistent")
	}
	if cfg.Store.RetentionMode != "ephemeral" && cfg.Store.Path == "" {
		return errors.New("store.path must not be empty")
	}
	if cfg.Store.RetentionDays < 0 {
		return errors.New("store.retention_days must be >= 0")
	}
	return nil
}
