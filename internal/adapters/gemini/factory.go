package gemini

import (
	"go.uber.org/zap"

	"github.com/yuri1992/email-trust-agent/internal/config"
	"github.com/yuri1992/email-trust-agent/internal/core"
	"github.com/yuri1992/email-trust-agent/internal/prompt"
)

// Factory creates new instances of AgentClient
type Factory struct {
	cfg     *config.Config
	logger  *zap.Logger
	builder *prompt.Builder
}

// NewFactory creates a new factory for AgentClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger, builder *prompt.Builder) *Factory {
	return &Factory{
		cfg:     cfg,
		logger:  logger,
		builder: builder,
	}
}

// CreateBackend creates a new Gemini agent backend bound to tools.
func (f *Factory) CreateBackend(tools core.ToolSession) (core.AgentBackend, error) {
	geminiCfg := f.cfg.GetGemini()

	return NewAgentClient(
		geminiCfg.APIKey,
		tools,
		f.builder,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		geminiCfg.MaxToolTurns,
		f.logger,
	)
}
