package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/yuri1992/email-trust-agent/internal/core"
	"github.com/yuri1992/email-trust-agent/internal/prompt"
	"github.com/yuri1992/email-trust-agent/internal/utils"
)

// AgentClient is an implementation of the AgentBackend interface using
// Amazon Bedrock with the Anthropic messages API. Tool use goes through
// the raw InvokeModel payload: discovered trust tools are declared in
// the request, tool_use blocks are executed through the session, and
// tool_result blocks are fed back until the model stops.
type AgentClient struct {
	client       *bedrockruntime.Client
	tools        core.ToolSession
	builder      *prompt.Builder
	modelID      string
	maxTokens    int
	temperature  float32
	topP         float32
	maxToolTurns int
	logger       *zap.Logger
}

// NewAgentClient creates a new Bedrock agent backend bound to an open
// tool session.
func NewAgentClient(
	client *bedrockruntime.Client,
	tools core.ToolSession,
	builder *prompt.Builder,
	modelID string,
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
		modelID:      modelID,
		maxTokens:    maxTokens,
		temperature:  temperature,
		topP:         topP,
		maxToolTurns: maxToolTurns,
		logger:       logger,
	}
}

type claudeTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`

	// tool_use blocks
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result blocks
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Content []claudeContent `json:"content"`
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float32         `json:"temperature"`
	TopP             float32         `json:"top_p"`
	System           string          `json:"system"`
	Tools            []claudeTool    `json:"tools,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content    []claudeContent `json:"content"`
	StopReason string          `json:"stop_reason"`
}

// Analyze runs the delegated reasoning call for one request.
func (c *AgentClient) Analyze(ctx context.Context, req *core.EmailAnalysisRequest) (*core.EmailSecurityDecision, error) {
	discovered := c.tools.Tools()
	declared := make([]claudeTool, 0, len(discovered))
	for _, t := range discovered {
		declared = append(declared, claudeTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}

	messages := []claudeMessage{
		{Role: "user", Content: []claudeContent{{Type: "text", Text: c.builder.Instruction(req)}}},
	}

	for turn := 0; turn < c.maxToolTurns; turn++ {
		payload, err := json.Marshal(claudeRequest{
			AnthropicVersion: "bedrock-2023-05-31",
			MaxTokens:        c.maxTokens,
			Temperature:      c.temperature,
			TopP:             c.topP,
			System:           c.builder.System(),
			Tools:            declared,
			Messages:         messages,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request payload: %w", err)
		}

		resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
			ModelId:     &c.modelID,
			Body:        payload,
			Accept:      aws.String("application/json"),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
		}

		var parsed claudeResponse
		if err := json.Unmarshal(resp.Body, &parsed); err != nil {
			return nil, fmt.Errorf("failed to unmarshal Bedrock response: %w", err)
		}

		if parsed.StopReason != "tool_use" {
			return parseFinalAnswer(textOf(parsed.Content))
		}

		messages = append(messages, claudeMessage{Role: "assistant", Content: parsed.Content})

		results := make([]claudeContent, 0, 1)
		for _, block := range parsed.Content {
			if block.Type != "tool_use" {
				continue
			}
			result, err := c.runToolUse(ctx, block)
			if err != nil {
				return nil, err
			}
			results = append(results, result)
		}
		messages = append(messages, claudeMessage{Role: "user", Content: results})
	}

	return nil, fmt.Errorf("%w: no final answer after %d tool turns", core.ErrSchemaViolation, c.maxToolTurns)
}

// runToolUse executes one tool_use block. Tool-level failures go back
// to the model as error results; transport failures abort the loop.
func (c *AgentClient) runToolUse(ctx context.Context, block claudeContent) (claudeContent, error) {
	c.logger.Debug("Model requested tool call",
		zap.String("tool", block.Name),
		zap.String("call_id", block.ID))

	var args map[string]any
	if err := json.Unmarshal(block.Input, &args); err != nil {
		return claudeContent{
			Type:      "tool_result",
			ToolUseID: block.ID,
			Content:   fmt.Sprintf("invalid tool arguments: %v", err),
			IsError:   true,
		}, nil
	}

	output, err := c.tools.Call(ctx, block.Name, args)
	if err != nil {
		if errors.Is(err, core.ErrConnection) || errors.Is(err, context.DeadlineExceeded) {
			return claudeContent{}, err
		}
		return claudeContent{
			Type:      "tool_result",
			ToolUseID: block.ID,
			Content:   fmt.Sprintf("tool error: %v", err),
			IsError:   true,
		}, nil
	}

	return claudeContent{Type: "tool_result", ToolUseID: block.ID, Content: output}, nil
}

func textOf(content []claudeContent) string {
	var text string
	for _, block := range content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text
}

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
