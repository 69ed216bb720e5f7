package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/yuri1992/email-trust-agent/internal/adapters/bedrock"
	"github.com/yuri1992/email-trust-agent/internal/adapters/gemini"
	"github.com/yuri1992/email-trust-agent/internal/adapters/openai"
	"github.com/yuri1992/email-trust-agent/internal/config"
	"github.com/yuri1992/email-trust-agent/internal/core"
	"github.com/yuri1992/email-trust-agent/internal/prompt"
)

// LLMFactory creates agent backends
type LLMFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	builder *prompt.Builder
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, builder *prompt.Builder) *LLMFactory {
	return &LLMFactory{
		cfg:     cfg,
		logger:  logger,
		builder: builder,
	}
}

// CreateBackend creates an agent backend for the configured provider,
// bound to an open tool session.
func (f *LLMFactory) CreateBackend(tools core.ToolSession) (core.AgentBackend, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case "openai":
		return openai.NewFactory(f.cfg, f.logger, f.builder).CreateBackend(tools)
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger, f.builder).CreateBackend(tools)
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger, f.builder).CreateBackend(tools)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}
