package config

import "time"

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey       string
	ModelName    string
	MaxTokens    int
	Temperature  float32
	TopP         float32
	MaxToolTurns int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region       string
	ModelID      string
	MaxTokens    int
	Temperature  float32
	TopP         float32
	MaxToolTurns int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey       string
	ModelName    string
	MaxTokens    int
	Temperature  float32
	TopP         float32
	MaxToolTurns int
}

// MCPConfig represents the configuration for the Trust API tool process
type MCPConfig struct {
	Command        string
	ServerPath     string
	ConnectTimeout time.Duration
}

// AnalysisConfig represents the orchestrator configuration
type AnalysisConfig struct {
	Timeout        time.Duration
	TrustedDomains []string
	Policy         string
}

// ServerConfig represents the SMTP frontend configuration
type ServerConfig struct {
	ListenAddress  string
	BlockBlocked   bool
	DecisionHeader string
	ScoreHeader    string
	ReasonHeader   string
	RelayEnabled   bool
	RelayAddress   string
	RelayPort      int
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:       c.GetString("openai.api_key"),
		ModelName:    c.GetString("openai.model_name"),
		MaxTokens:    c.GetInt("openai.max_tokens"),
		Temperature:  float32(c.GetFloat64("openai.temperature")),
		TopP:         float32(c.GetFloat64("openai.top_p")),
		MaxToolTurns: c.GetInt("openai.max_tool_turns"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:       c.GetString("bedrock.region"),
		ModelID:      c.GetString("bedrock.model_id"),
		MaxTokens:    c.GetInt("bedrock.max_tokens"),
		Temperature:  float32(c.GetFloat64("bedrock.temperature")),
		TopP:         float32(c.GetFloat64("bedrock.top_p")),
		MaxToolTurns: c.GetInt("bedrock.max_tool_turns"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:       c.GetString("gemini.api_key"),
		ModelName:    c.GetString("gemini.model_name"),
		MaxTokens:    c.GetInt("gemini.max_tokens"),
		Temperature:  float32(c.GetFloat64("gemini.temperature")),
		TopP:         float32(c.GetFloat64("gemini.top_p")),
		MaxToolTurns: c.GetInt("gemini.max_tool_turns"),
	}
}

// GetMCP returns the Trust API tool process configuration
func (c *Config) GetMCP() MCPConfig {
	return MCPConfig{
		Command:        c.GetString("mcp.command"),
		ServerPath:     c.GetString("mcp.server_path"),
		ConnectTimeout: c.GetDuration("mcp.connect_timeout"),
	}
}

// GetAnalysis returns the orchestrator configuration
func (c *Config) GetAnalysis() AnalysisConfig {
	return AnalysisConfig{
		Timeout:        c.GetDuration("analysis.timeout"),
		TrustedDomains: c.GetStringSlice("analysis.trusted_domains"),
		Policy:         c.GetString("analysis.policy"),
	}
}

// GetServer returns the SMTP frontend configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress:  c.GetString("server.listen_address"),
		BlockBlocked:   c.GetBool("server.block_blocked"),
		DecisionHeader: c.GetString("server.headers.decision"),
		ScoreHeader:    c.GetString("server.headers.score"),
		ReasonHeader:   c.GetString("server.headers.reason"),
		RelayEnabled:   c.GetBool("server.relay.enabled"),
		RelayAddress:   c.GetString("server.relay.address"),
		RelayPort:      c.GetInt("server.relay.port"),
	}
}
