// Package config provides unified configuration loading for the service.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the lab report service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	LLM           LLMConfig           `yaml:"llm"`
	Speech        SpeechConfig        `yaml:"speech"`
	Telephony     TelephonyConfig     `yaml:"telephony"`
	Pipeline      PipelineConfig      `yaml:"pipeline"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
}

// LLMConfig holds chat completion settings for the Groq endpoint.
type LLMConfig struct {
	APIKey      string        `yaml:"api_key"`
	APIBase     string        `yaml:"api_base"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// SpeechConfig holds Murf text-to-speech and translation settings.
type SpeechConfig struct {
	APIKey  string        `yaml:"api_key"`
	APIBase string        `yaml:"api_base"`
	VoiceID string        `yaml:"voice_id"`
	Timeout time.Duration `yaml:"timeout"`
}

// TelephonyConfig holds Twilio call and SMS settings.
type TelephonyConfig struct {
	AccountSID      string        `yaml:"account_sid"`
	AuthToken       string        `yaml:"auth_token"`
	APIBase         string        `yaml:"api_base"`
	RecipientNumber string        `yaml:"recipient_number"`
	SenderNumber    string        `yaml:"sender_number"`
	Timeout         time.Duration `yaml:"timeout"`
}

// PipelineConfig holds document processing settings.
type PipelineConfig struct {
	RenderDPI   int    `yaml:"render_dpi"`
	TessdataDir string `yaml:"tessdata_dir"`
	TempDir     string `yaml:"temp_dir"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from a YAML file and applies environment
// overrides. A missing path loads defaults plus environment only.
func Load(path string) (*Config, error) {
	// .env is optional; ignore the error when absent
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeout:      60 * time.Second,
			WriteTimeout:     120 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
			MaxUploadBytes:   32 << 20,
		},
		LLM: LLMConfig{
			APIBase:     "https://api.groq.com/openai/v1",
			Model:       "llama-3.3-70b-versatile",
			Temperature: 0.2,
			Timeout:     60 * time.Second,
		},
		Speech: SpeechConfig{
			APIBase: "https://api.murf.ai/v1",
			VoiceID: "en-US-natalie",
			Timeout: 60 * time.Second,
		},
		Telephony: TelephonyConfig{
			APIBase: "https://api.twilio.com/2010-04-01",
			Timeout: 30 * time.Second,
		},
		Pipeline: PipelineConfig{
			RenderDPI: 300,
			TempDir:   os.TempDir(),
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// applyEnvOverrides maps vendor environment variables onto the config.
// Vendor keys use the names the vendors document for their .env setup.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("GROQ_API_BASE"); v != "" {
		cfg.LLM.APIBase = v
	}
	if v := os.Getenv("GROQ_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("MURF_API_KEY"); v != "" {
		cfg.Speech.APIKey = v
	}
	if v := os.Getenv("MURF_API_BASE"); v != "" {
		cfg.Speech.APIBase = v
	}
	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" {
		cfg.Telephony.AccountSID = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" {
		cfg.Telephony.AuthToken = v
	}
	if v := os.Getenv("TWILIO_RECIPIENT_NUMBER"); v != "" {
		cfg.Telephony.RecipientNumber = v
	}
	if v := os.Getenv("TWILIO_SENDER_NUMBER"); v != "" {
		cfg.Telephony.SenderNumber = v
	}
	if v := os.Getenv("LABVOICE_ADDR"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LABVOICE_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("LABVOICE_LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
	if v := os.Getenv("TESSDATA_PREFIX"); v != "" {
		cfg.Pipeline.TessdataDir = v
	}
}

// Validate checks structural configuration. Vendor credentials are not
// required here: a missing key fails the individual vendor call, which the
// pipeline reports as a request error or soft error depending on the stage.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Pipeline.RenderDPI < 72 || c.Pipeline.RenderDPI > 600 {
		return fmt.Errorf("pipeline.render_dpi must be between 72 and 600, got %d", c.Pipeline.RenderDPI)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %f", c.LLM.Temperature)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	return nil
}
