package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/yuri1992/email-trust-agent/internal/core"
	"github.com/yuri1992/email-trust-agent/internal/prompt"
	"github.com/yuri1992/email-trust-agent/internal/utils"
)

// AgentClient is an implementation of the AgentBackend interface using
// Google Gemini function calling. Discovered trust tools become
// function declarations on the model; the chat loop executes requested
// calls through the session and returns function responses until the
// model answers with text.
type AgentClient struct {
	client       *genai.Client
	model        *genai.GenerativeModel
	tools        core.ToolSession
	builder      *prompt.Builder
	modelName    string
	maxToolTurns int
	logger       *zap.Logger
}

// NewAgentClient creates a new Gemini agent backend bound to an open
// tool session.
func NewAgentClient(
	apiKey string,
	tools core.ToolSession,
	builder *prompt.Builder,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxToolTurns int,
	logger *zap.Logger,
) (*AgentClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(builder.System())}}

	declarations := make([]*genai.FunctionDeclaration, 0, len(tools.Tools()))
	for _, t := range tools.Tools() {
		schema, err := schemaFromJSON(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %q schema: %w", t.Name, err)
		}
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schema,
		})
	}
	if len(declarations) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}
	}

	return &AgentClient{
		client:       client,
		model:        model,
		tools:        tools,
		builder:      builder,
		modelName:    modelName,
		maxToolTurns: maxToolTurns,
		logger:       logger,
	}, nil
}

// Close closes the Gemini client
func (c *AgentClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Analyze runs the delegated reasoning call for one request.
func (c *AgentClient) Analyze(ctx context.Context, req *core.EmailAnalysisRequest) (*core.EmailSecurityDecision, error) {
	chat := c.model.StartChat()

	resp, err := chat.SendMessage(ctx, genai.Text(c.builder.Instruction(req)))
	if err != nil {
		return nil, fmt.Errorf("failed to send message to Gemini: %w", err)
	}

	for turn := 0; turn < c.maxToolTurns; turn++ {
		call, text := splitResponse(resp)
		if call == nil {
			return parseFinalAnswer(text)
		}

		c.logger.Debug("Model requested tool call", zap.String("tool", call.Name))

		output, err := c.tools.Call(ctx, call.Name, call.Args)
		if err != nil {
			if errors.Is(err, core.ErrConnection) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			output = fmt.Sprintf("tool error: %v", err)
		}

		resp, err = chat.SendMessage(ctx, genai.FunctionResponse{
			Name:     call.Name,
			Response: map[string]any{"output": output},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to send tool response to Gemini: %w", err)
		}
	}

	return nil, fmt.Errorf("%w: no final answer after %d tool turns", core.ErrSchemaViolation, c.maxToolTurns)
}

// splitResponse returns the first function call of the candidate, if
// any, along with the concatenated text parts.
func splitResponse(resp *genai.GenerateContentResponse) (*genai.FunctionCall, string) {
	var text string
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ""
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.FunctionCall:
			return &p, text
		case genai.Text:
			text += string(p)
		}
	}
	return nil, text
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
