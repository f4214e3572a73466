package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/user/reviewbot/internal/types"
)

const envPrefix = "REVIEWBOT"

// Extra environment variables consulted for llm.api_key, after
// REVIEWBOT_LLM_API_KEY.
var apiKeyEnv = []string{"GLM_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"}

type LLMConfig struct {
	Provider         string  `json:"provider" mapstructure:"provider"`
	BaseURL          string  `json:"base_url" mapstructure:"base_url"`
	APIKey           string  `json:"api_key" mapstructure:"api_key"`
	LightModel       string  `json:"light_model" mapstructure:"light_model"`
	HeavyModel       string  `json:"heavy_model" mapstructure:"heavy_model"`
	SystemMessage    string  `json:"system_message" mapstructure:"system_message"`
	Temperature      float32 `json:"temperature" mapstructure:"temperature"`
	TopP             float32 `json:"top_p" mapstructure:"top_p"`
	MaxTokens        int     `json:"max_tokens" mapstructure:"max_tokens"`
	Retries          int     `json:"retries" mapstructure:"retries"`
	TimeoutMS        int     `json:"timeout_ms" mapstructure:"timeout_ms"`
	ConcurrencyLimit int     `json:"concurrency_limit" mapstructure:"concurrency_limit"`
}

type Config struct {
	LogLevel string    `json:"log_level" mapstructure:"log_level"`
	LLM      LLMConfig `json:"llm" mapstructure:"llm"`
}

// Defaults returns the configuration written when no file exists.
func Defaults() *Config {
	cfg := &Config{LogLevel: "info"}
	cfg.LLM.Provider = "glm"
	cfg.LLM.BaseURL = "https://open.bigmodel.cn/api/paas/v4"
	cfg.LLM.LightModel = "glm-4.5-flash"
	cfg.LLM.HeavyModel = "glm-4.6"
	cfg.LLM.SystemMessage = "You are a meticulous code reviewer. Point out bugs, risky changes and unclear code; be concise."
	cfg.LLM.Temperature = 1
	cfg.LLM.TopP = 0.95
	cfg.LLM.Retries = 3
	cfg.LLM.TimeoutMS = 120000
	cfg.LLM.ConcurrencyLimit = 6
	return cfg
}

// Load reads the JSON config at path, writing defaults first if it does
// not exist. Environment variables take precedence over the file.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Save(path, Defaults()); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	v := viper.New()
	if err := setDefaults(v); err != nil {
		return nil, err
	}
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	keyEnv := append([]string{envPrefix + "_LLM_API_KEY"}, apiKeyEnv...)
	if err := v.BindEnv(append([]string{"llm.api_key"}, keyEnv...)...); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every default key with viper so env overrides
// apply even when the file omits a key.
func setDefaults(v *viper.Viper) error {
	m, err := ToMap(Defaults())
	if err != nil {
		return err
	}
	for k, val := range Flatten(m) {
		v.SetDefault(k, val)
	}
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []string

	switch c.LLM.Provider {
	case "glm", "openai", "anthropic", "responses":
	case "":
		errs = append(errs, "llm.provider is required")
	default:
		errs = append(errs, fmt.Sprintf("llm.provider %q is not one of glm, openai, anthropic, responses", c.LLM.Provider))
	}
	if c.LLM.BaseURL == "" && c.LLM.Provider != "anthropic" {
		errs = append(errs, "llm.base_url is required")
	}
	if c.LLM.LightModel == "" {
		errs = append(errs, "llm.light_model is required")
	}
	if c.LLM.HeavyModel == "" {
		errs = append(errs, "llm.heavy_model is required")
	}
	if c.LLM.Retries < 0 {
		errs = append(errs, "llm.retries must be >= 0")
	}
	if c.LLM.TimeoutMS <= 0 {
		errs = append(errs, "llm.timeout_ms must be > 0")
	}
	if c.LLM.ConcurrencyLimit < 1 {
		errs = append(errs, "llm.concurrency_limit must be >= 1")
	}
	if c.LLM.MaxTokens < 0 {
		errs = append(errs, "llm.max_tokens must be >= 0")
	}
	if c.LLM.TopP < 0 || c.LLM.TopP > 1 {
		errs = append(errs, "llm.top_p must be within [0, 1]")
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Timeout is the per-attempt request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.LLM.TimeoutMS) * time.Millisecond
}

// Model returns the model configured for kind.
func (c *Config) Model(kind types.BotKind) string {
	if kind == types.BotHeavy {
		return c.LLM.HeavyModel
	}
	return c.LLM.LightModel
}

// Save writes cfg to path atomically.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// ToMap converts cfg to its nested JSON map form.
func ToMap(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return m, nil
}

// ListValues returns cfg as a flat map, with secrets masked if mask is set.
func ListValues(cfg *Config, mask bool) (map[string]any, error) {
	m, err := ToMap(cfg)
	if err != nil {
		return nil, err
	}
	flat := Flatten(m)
	if mask {
		flat = MaskSecrets(flat)
	}
	return flat, nil
}

func readFlat(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return Flatten(m), nil
}

// GetValue reads a single dot-separated key straight from the file.
func GetValue(path, key string) (any, error) {
	flat, err := readFlat(path)
	if err != nil {
		return nil, err
	}
	v, ok := flat[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	return v, nil
}

// SetValue writes a single dot-separated key. Values that parse as JSON
// (numbers, booleans) are stored typed; anything else is stored as a string.
func SetValue(path, key, raw string) error {
	flat, err := readFlat(path)
	if err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		v = raw
	}
	flat[key] = v

	data, err := json.MarshalIndent(Unflatten(flat), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeFile(path, data)
}
