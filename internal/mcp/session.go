// Package mcp holds the scoped session to the external Trust API tool
// process. Operation names are never hardcoded here: the session
// enumerates the remote toolset at connect time and dispatches against
// that discovered mapping only.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/yuri1992/email-trust-agent/internal/core"
)

// Config describes how to launch and reach the tool process.
type Config struct {
	// Command is the interpreter or binary for the tool process.
	Command string
	// Args are passed to Command; typically the server script path.
	Args []string
	// ConnectTimeout bounds process start plus capability negotiation.
	ConnectTimeout time.Duration
}

// Session is a live connection to the tool process. The discovered
// toolset is immutable for the session's lifetime. Calls are serialized
// because the stdio transport gives no multiplexing guarantee.
type Session struct {
	cs     *mcpsdk.ClientSession
	tools  map[string]core.ToolDescriptor
	order  []string
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

var _ core.ToolSession = (*Session)(nil)

// Dial launches the tool process as a subprocess and connects over its
// stdio transport. The subprocess's stderr passes through so its logs
// stay visible. Failures wrap core.ErrConnection.
func Dial(ctx context.Context, cfg Config, logger *zap.Logger) (*Session, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("%w: tool process command is empty", core.ErrConnection)
	}
	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Stderr = os.Stderr

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	return Connect(ctx, &mcpsdk.CommandTransport{Command: cmd}, logger)
}

// Connect establishes a session over an arbitrary transport and runs
// capability negotiation: the remote toolset is listed once and kept as
// an immutable mapping for the session's duration.
func Connect(ctx context.Context, transport mcpsdk.Transport, logger *zap.Logger) (*Session, error) {
	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "email-trust-agent", Version: "v1.0.0"}, nil)

	cs, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", core.ErrConnection, err)
	}

	listed, err := cs.ListTools(ctx, nil)
	if err != nil {
		cs.Close()
		return nil, fmt.Errorf("%w: tool discovery: %v", core.ErrConnection, err)
	}

	tools := make(map[string]core.ToolDescriptor, len(listed.Tools))
	order := make([]string, 0, len(listed.Tools))
	for _, t := range listed.Tools {
		schema, err := json.Marshal(t.InputSchema)
		if err != nil {
			cs.Close()
			return nil, fmt.Errorf("%w: tool %q schema: %v", core.ErrConnection, t.Name, err)
		}
		tools[t.Name] = core.ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schema,
		}
		order = append(order, t.Name)
	}

	logger.Info("Trust tool session established", zap.Strings("tools", order))

	return &Session{
		cs:     cs,
		tools:  tools,
		order:  order,
		logger: logger,
	}, nil
}

// Tools returns the discovered operations in advertised order.
func (s *Session) Tools() []core.ToolDescriptor {
	out := make([]core.ToolDescriptor, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.tools[name])
	}
	return out
}

// Call dispatches one discovered operation. Unknown names fail locally
// without a round trip. A remote-side tool error is returned as an
// error carrying the tool's own message so the reasoning layer can see
// it; transport faults wrap core.ErrConnection.
func (s *Session) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	if _, ok := s.tools[name]; !ok {
		return "", fmt.Errorf("tool %q was not advertised by the trust server", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", fmt.Errorf("%w: session is closed", core.ErrConnection)
	}

	s.logger.Debug("Calling trust tool", zap.String("tool", name))

	res, err := s.cs.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", fmt.Errorf("%w: call %q: %v", core.ErrConnection, name, err)
	}

	text := flattenContent(res.Content)
	if res.IsError {
		return "", fmt.Errorf("tool %q failed: %s", name, text)
	}
	return text, nil
}

// Close releases the session, terminating the subprocess. Safe to call
// more than once and on every exit path.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Debug("Closing trust tool session")
	return s.cs.Close()
}

func flattenContent(content []mcpsdk.Content) string {
	var text string
	for _, c := range content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			if text != "" {
				text += "\n"
			}
			text += tc.Text
		}
	}
	return text
}
