// SMTP trust filter server: accepts mail, runs each message's metadata
// through the delegated analysis, and annotates or blocks accordingly.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/yuri1992/email-trust-agent/internal/core"
	"github.com/yuri1992/email-trust-agent/internal/di"
	"github.com/yuri1992/email-trust-agent/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	emailFilter ports.EmailFilter,
	backend core.AgentBackend,
	tools core.ToolSession,
) error {
	defer logger.Sync()

	// The tool session is a scoped resource: release it on every exit
	// path, including startup failure below.
	defer func() {
		if err := tools.Close(); err != nil {
			logger.Error("Failed to close trust tool session", zap.Error(err))
		}
	}()

	if err := emailFilter.Start(); err != nil {
		logger.Error("Failed to start filter", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := emailFilter.Stop(); err != nil {
		logger.Error("Failed to stop filter", zap.Error(err))
	}

	if closer, ok := backend.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close agent backend", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
