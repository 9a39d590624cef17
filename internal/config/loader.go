package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderConfig holds optional file overrides for Load.
type LoaderConfig struct {
	ConfigFile string // explicit config file path
	EnvFile    string // explicit .env file path
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads configuration into cfg. A YAML config file provides the base,
// a .env file (if present) is loaded into the process environment, and
// environment variables override both. Missing files are not an error.
// Load populates cfg from, in increasing precedence: defaults, an optional
// YAML config file, and environment variables (optionally seeded from a .env
// file). The result is validated before returning.
func Load(cfg *Config, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}

	configFile := lc.ConfigFile
	if configFile == "" {
		configFile = findFirst("./config.yml", "./config/config.yml", "./cmd/server/config.yml")
	}
	envFile := lc.EnvFile
	if envFile == "" {
		envFile = findFirst("./.env", "./config/.env")
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Printf("[config] warning: failed to load .env file %s: %v\n", envFile, err)
		}
	}

	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			fmt.Printf("[config] warning: failed to load config file %s: %v\n", configFile, err)
		}
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.ApplyDefaults()
	return cfg.Validate()
}

func findFirst(paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// bindEnvVars maps UPPER_SNAKE environment variables onto nested viper keys so
// that e.g. STORAGE_INPUT_BUCKET overrides storage.input_bucket.
func bindEnvVars(v *viper.Viper) {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		for _, variant := range envKeyVariants(pair[0]) {
			v.Set(variant, pair[1])
		}
	}
}

// envKeyVariants generates the nested key spellings an environment variable
// may stand for. STORAGE_INPUT_BUCKET yields storage.input_bucket and
// storage.input.bucket; the section prefix is always the first segment.
func envKeyVariants(envKey string) []string {
	parts := strings.Split(strings.ToLower(envKey), "_")
	if len(parts) < 2 {
		return nil
	}
	section := parts[0]
	switch section {
	case "server", "log", "aws", "storage", "transcribe", "llm":
	default:
		return nil
	}
	rest := parts[1:]
	variants := []string{
		section + "." + strings.Join(rest, "_"),
	}
	if len(rest) > 1 {
		variants = append(variants, section+"."+strings.Join(rest, "."))
	}
	return variants
}
