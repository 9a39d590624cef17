// Package config loads service configuration from a YAML file and environment
// variables into a single value object. The value object is constructed once
// at process start and handed to each component's constructor; no component
// reads ambient process state directly.
package config

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/skillsenselab/osce-insight/internal/logger"
)

// Config is the root configuration value object.
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        logger.Config    `yaml:"log" mapstructure:"log"`
	AWS        AWSConfig        `yaml:"aws" mapstructure:"aws"`
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	Transcribe TranscribeConfig `yaml:"transcribe" mapstructure:"transcribe"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string   `yaml:"host" mapstructure:"host"`
	Port           int      `yaml:"port" mapstructure:"port"`
	ReadTimeout    int      `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout   int      `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// AWSConfig holds shared AWS client settings.
type AWSConfig struct {
	Region    string `yaml:"region" mapstructure:"region"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
}

// StorageConfig selects and configures the object storage backend.
type StorageConfig struct {
	// Provider is "s3" or "local".
	Provider string `yaml:"provider" mapstructure:"provider"`
	// InputBucket holds uploaded audio and source transcripts.
	InputBucket string `yaml:"input_bucket" mapstructure:"input_bucket"`
	// OutputBucket holds persisted reports.
	OutputBucket string `yaml:"output_bucket" mapstructure:"output_bucket"`
	// LocalPath is the base directory for the local backend.
	LocalPath string `yaml:"local_path" mapstructure:"local_path"`
}

// TranscribeConfig holds transcription job settings.
type TranscribeConfig struct {
	Language     string        `yaml:"language" mapstructure:"language"`
	MaxSpeakers  int           `yaml:"max_speakers" mapstructure:"max_speakers"`
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	// MaxPollAttempts bounds the poll loop. 0 means unbounded.
	MaxPollAttempts int `yaml:"max_poll_attempts" mapstructure:"max_poll_attempts"`
}

// LLMConfig holds text-generation settings.
type LLMConfig struct {
	ModelID string `yaml:"model_id" mapstructure:"model_id"`
	// PromptDir is where named prompt template files are looked up.
	PromptDir string `yaml:"prompt_dir" mapstructure:"prompt_dir"`
	// DefaultPrompt is the template file used when no name is requested.
	DefaultPrompt string `yaml:"default_prompt" mapstructure:"default_prompt"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	c.Log.ApplyDefaults()
	if c.AWS.Region == "" {
		c.AWS.Region = "us-east-1"
	}
	if c.Storage.Provider == "" {
		c.Storage.Provider = "s3"
	}
	if c.Storage.InputBucket == "" {
		c.Storage.InputBucket = "osce-insight-input"
	}
	if c.Storage.OutputBucket == "" {
		c.Storage.OutputBucket = "osce-insight-output"
	}
	if c.Storage.LocalPath == "" {
		c.Storage.LocalPath = "./data"
	}
	if c.Transcribe.Language == "" {
		c.Transcribe.Language = "en-US"
	}
	if c.Transcribe.MaxSpeakers == 0 {
		c.Transcribe.MaxSpeakers = 2
	}
	if c.Transcribe.PollInterval == 0 {
		c.Transcribe.PollInterval = 5 * time.Second
	}
	if c.LLM.ModelID == "" {
		c.LLM.ModelID = "us.anthropic.claude-3-5-sonnet-20241022-v2:0"
	}
	if c.LLM.PromptDir == "" {
		c.LLM.PromptDir = "./prompts"
	}
	if c.LLM.DefaultPrompt == "" {
		c.LLM.DefaultPrompt = "prompt.txt"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be in (0, 65535], got %d", c.Server.Port))
	}
	switch c.Storage.Provider {
	case "s3", "local":
	default:
		errs = append(errs, fmt.Errorf("storage.provider must be s3 or local, got %q", c.Storage.Provider))
	}
	if c.Transcribe.PollInterval < 0 {
		errs = append(errs, fmt.Errorf("transcribe.poll_interval must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", stderrors.Join(errs...))
	}
	return nil
}
