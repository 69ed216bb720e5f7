package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/email-trust-agent/")
	v.AddConfigPath("$HOME/.email-trust-agent")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("EMAIL_TRUST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Ambient settings read once at startup: the provider credentials
	// and the tool process path keep their conventional names.
	bindAmbient(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func bindAmbient(v *viper.Viper) {
	v.BindEnv("openai.api_key", "EMAIL_TRUST_OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("gemini.api_key", "EMAIL_TRUST_GEMINI_API_KEY", "GEMINI_API_KEY")
	v.BindEnv("mcp.server_path", "EMAIL_TRUST_MCP_SERVER_PATH", "TRUST_API_MCP_PATH")
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// LLM provider defaults
	v.SetDefault("llm.provider", "openai")

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4o")
	v.SetDefault("openai.max_tokens", 1024)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_tool_turns", 8)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-5-sonnet-20240620-v1:0")
	v.SetDefault("bedrock.max_tokens", 1024)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_tool_turns", 8)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-pro")
	v.SetDefault("gemini.max_tokens", 1024)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_tool_turns", 8)

	// Trust API tool process defaults
	v.SetDefault("mcp.command", "node")
	v.SetDefault("mcp.server_path", "../server/dist/index.js")
	v.SetDefault("mcp.connect_timeout", "30s")

	// Analysis defaults
	v.SetDefault("analysis.timeout", "120s")
	v.SetDefault("analysis.trusted_domains", []string{})
	v.SetDefault("analysis.policy", "")

	// SMTP frontend defaults
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.block_blocked", false)
	v.SetDefault("server.headers.decision", "X-Trust-Decision")
	v.SetDefault("server.headers.score", "X-Trust-Score")
	v.SetDefault("server.headers.reason", "X-Trust-Reason")
	v.SetDefault("server.relay.enabled", false)
	v.SetDefault("server.relay.address", "127.0.0.1")
	v.SetDefault("server.relay.port", 10026)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) time.Duration {
	return c.v.GetDuration(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
