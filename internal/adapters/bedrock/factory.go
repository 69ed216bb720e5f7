package bedrock

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/yuri1992/email-trust-agent/internal/config"
	"github.com/yuri1992/email-trust-agent/internal/core"
	"github.com/yuri1992/email-trust-agent/internal/prompt"
)

// Factory creates Bedrock agent backends
type Factory struct {
	cfg     *config.Config
	logger  *zap.Logger
	builder *prompt.Builder
}

// NewFactory creates a new Bedrock factory
func NewFactory(cfg *config.Config, logger *zap.Logger, builder *prompt.Builder) *Factory {
	return &Factory{
		cfg:     cfg,
		logger:  logger,
		builder: builder,
	}
}

// CreateBackend creates a new Bedrock agent backend bound to tools.
func (f *Factory) CreateBackend(tools core.ToolSession) (core.AgentBackend, error) {
	bedrockCfg := f.cfg.GetBedrock()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(bedrockCfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := bedrockruntime.NewFromConfig(awsCfg)

	return NewAgentClient(
		client,
		tools,
		f.builder,
		bedrockCfg.ModelID,
		bedrockCfg.MaxTokens,
		bedrockCfg.Temperature,
		bedrockCfg.TopP,
		bedrockCfg.MaxToolTurns,
		f.logger,
	), nil
}
