package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/yuri1992/email-trust-agent/internal/config"
	"github.com/yuri1992/email-trust-agent/internal/core"
	"github.com/yuri1992/email-trust-agent/internal/factory"
	"github.com/yuri1992/email-trust-agent/internal/logging"
	"github.com/yuri1992/email-trust-agent/internal/mcp"
	"github.com/yuri1992/email-trust-agent/internal/ports"
	"github.com/yuri1992/email-trust-agent/internal/prompt"
	"github.com/yuri1992/email-trust-agent/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register instruction builder with the operator's decision policy
	if err := container.Provide(func(cfg *config.Config, tp *utils.TextProcessor) *prompt.Builder {
		return prompt.NewBuilder(cfg.GetAnalysis().Policy, tp)
	}); err != nil {
		return nil, err
	}

	// Register the trust tool session. The session is scoped to the
	// process lifetime here; the run loop closes it on shutdown.
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.ToolSession, error) {
		mcpCfg := cfg.GetMCP()
		return mcp.Dial(context.Background(), mcp.Config{
			Command:        mcpCfg.Command,
			Args:           []string{mcpCfg.ServerPath},
			ConnectTimeout: mcpCfg.ConnectTimeout,
		}, logger)
	}); err != nil {
		return nil, err
	}

	// Register agent backend
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.LLMFactory, tools core.ToolSession) (core.AgentBackend, error) {
		return f.CreateBackend(tools)
	}); err != nil {
		return nil, err
	}

	// Register analysis orchestrator
	if err := container.Provide(func(backend core.AgentBackend, logger *zap.Logger, cfg *config.Config) *core.AnalysisService {
		analysisCfg := cfg.GetAnalysis()
		return core.NewAnalysisService(backend, logger, analysisCfg.Timeout, analysisCfg.TrustedDomains)
	}); err != nil {
		return nil, err
	}

	// Register email filter
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
