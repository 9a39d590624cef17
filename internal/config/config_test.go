package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.AWS.Region != "us-east-1" {
		t.Errorf("expected default region us-east-1, got %q", cfg.AWS.Region)
	}
	if cfg.Transcribe.PollInterval != 5*time.Second {
		t.Errorf("expected default poll interval 5s, got %v", cfg.Transcribe.PollInterval)
	}
	if cfg.Transcribe.MaxSpeakers != 2 {
		t.Errorf("expected default max speakers 2, got %d", cfg.Transcribe.MaxSpeakers)
	}
	if cfg.Storage.Provider != "s3" {
		t.Errorf("expected default provider s3, got %q", cfg.Storage.Provider)
	}
	if cfg.LLM.ModelID == "" {
		t.Error("expected a default model id")
	}
}

func TestValidate_BadProvider(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	cfg.Storage.Provider = "ftp"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown provider")
	}
}

func TestValidate_BadPort(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	cfg.Server.Port = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative port")
	}
}

func TestLoad_FromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := []byte("server:\n  port: 9001\nstorage:\n  provider: local\n  input_bucket: in\n  output_bucket: out\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	var cfg Config
	if err := Load(&cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("expected port 9001, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Provider != "local" {
		t.Errorf("expected provider local, got %q", cfg.Storage.Provider)
	}
	// defaults still fill the gaps
	if cfg.Transcribe.Language != "en-US" {
		t.Errorf("expected default language, got %q", cfg.Transcribe.Language)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("STORAGE_INPUT_BUCKET", "env-bucket")

	var cfg Config
	if err := Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.InputBucket != "env-bucket" {
		t.Errorf("expected env override, got %q", cfg.Storage.InputBucket)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	variants := envKeyVariants("STORAGE_INPUT_BUCKET")
	want := map[string]bool{"storage.input_bucket": true, "storage.input.bucket": true}
	for _, v := range variants {
		if !want[v] {
			t.Errorf("unexpected variant %q", v)
		}
		delete(want, v)
	}
	if len(want) != 0 {
		t.Errorf("missing variants: %v", want)
	}

	if got := envKeyVariants("PATH"); got != nil {
		t.Errorf("expected nil for non-config env var, got %v", got)
	}
	if got := envKeyVariants("HOME_DIR"); got != nil {
		t.Errorf("expected nil for unknown section, got %v", got)
	}
}
