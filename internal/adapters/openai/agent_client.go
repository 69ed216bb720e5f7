package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/yuri1992/email-trust-agent/internal/core"
	"github.com/yuri1992/email-trust-agent/internal/prompt"
	"github.com/yuri1992/email-trust-agent/internal/utils"
)

// AgentClient is an implementation of the AgentBackend interface using
// OpenAI chat completions with function calling. Discovered trust tools
// are advertised to the model on every turn; the loop executes the tool
// calls the model requests and feeds results back until the model
// produces its final answer.
type AgentClient struct {
	client       *openai.Client
	tools        core.ToolSession
	builder      *prompt.Builder
	modelName    string
	maxTokens    int
	temperature  float32
	topP         float32
	maxToolTurns int
	logger       *zap.Logger
}

// NewAgentClient creates a new OpenAI agent backend bound to an open
// tool session.
func NewAgentClient(
	client *openai.Client,
	tools core.ToolSession,
	builder *prompt.Builder,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxToolTurns int,
	logger *zap.Logger,
) *AgentClient {
	return &AgentClient{
		client:       client,
		tools:        tools,
		builder:      builder,
		modelName:    modelName,
		maxTokens:    maxTokens,
		temperature:  temperature,
		topP:         topP,
		maxToolTurns: maxToolTurns,
		logger:       logger,
	}
}

// Analyze runs the delegated reasoning call for one request.
func (c *AgentClient) Analyze(ctx context.Context, req *core.EmailAnalysisRequest) (*core.EmailSecurityDecision, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: c.builder.System()},
		{Role: openai.ChatMessageRoleUser, Content: c.builder.Instruction(req)},
	}

	discovered := c.tools.Tools()
	oaTools := make([]openai.Tool, 0, len(discovered))
	for _, t := range discovered {
		oaTools = append(oaTools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		})
	}

	for turn := 0; turn < c.maxToolTurns; turn++ {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.modelName,
			Messages:    messages,
			Tools:       oaTools,
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
			TopP:        c.topP,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("%w: empty response from OpenAI", core.ErrSchemaViolation)
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return parseFinalAnswer(msg.Content)
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			output, err := c.runToolCall(ctx, call)
			if err != nil {
				return nil, err
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    output,
				ToolCallID: call.ID,
			})
		}
	}

	return nil, fmt.Errorf("%w: no final answer after %d tool turns", core.ErrSchemaViolation, c.maxToolTurns)
}

// runToolCall executes one requested tool call through the session.
// Tool-level failures are reported back to the model as text so it can
// recover; transport failures abort the loop.
func (c *AgentClient) runToolCall(ctx context.Context, call openai.ToolCall) (string, error) {
	c.logger.Debug("Model requested tool call",
		zap.String("tool", call.Function.Name),
		zap.String("call_id", call.ID))

	var args map[string]any
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		return fmt.Sprintf("invalid tool arguments: %v", err), nil
	}

	output, err := c.tools.Call(ctx, call.Function.Name, args)
	if err != nil {
		if errors.Is(err, core.ErrConnection) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return fmt.Sprintf("tool error: %v", err), nil
	}
	return output, nil
}

// parseFinalAnswer coerces the model's last message into a validated
// decision, tolerating prose or fences around the JSON object.
func parseFinalAnswer(content string) (*core.EmailSecurityDecision, error) {
	decision, err := core.ParseDecision([]byte(content))
	if err == nil {
		return decision, nil
	}
	if extracted, ok := utils.ExtractJSONObject(content); ok {
		return core.ParseDecision([]byte(extracted))
	}
	return nil, err
}
