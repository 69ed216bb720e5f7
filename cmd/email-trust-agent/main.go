// Demo runner: analyzes a fixed sequence of example emails through one
// trust tool session and prints each decision.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yuri1992/email-trust-agent/internal/config"
	"github.com/yuri1992/email-trust-agent/internal/core"
	"github.com/yuri1992/email-trust-agent/internal/factory"
	"github.com/yuri1992/email-trust-agent/internal/logging"
	"github.com/yuri1992/email-trust-agent/internal/mcp"
	"github.com/yuri1992/email-trust-agent/internal/presenter"
	"github.com/yuri1992/email-trust-agent/internal/prompt"
	"github.com/yuri1992/email-trust-agent/internal/utils"
)

var (
	verbose = flag.Bool("verbose", false, "Enable verbose logging")
	envFile = flag.String("env-file", ".env", "Path to env file")
)

type example struct {
	title string
	req   *core.EmailAnalysisRequest
}

func main() {
	flag.Parse()

	// A missing env file is fine; ambient environment still applies.
	_ = godotenv.Load(*envFile)

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if name, ok := missingCredential(cfg); ok {
		fmt.Fprintf(os.Stderr, "ERROR: %s not set\n", name)
		fmt.Fprintf(os.Stderr, "Set %s in the environment or in %s\n", name, *envFile)
		os.Exit(1)
	}

	logger, err := logging.InitConsoleLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("Analysis run failed", zap.Error(err))
		os.Exit(1)
	}
}

// missingCredential reports the provider credential that must be set
// before anything is dialed. Bedrock uses the ambient AWS credential
// chain and has no single required variable.
func missingCredential(cfg *config.Config) (string, bool) {
	switch cfg.GetLLM().Provider {
	case "openai":
		if cfg.GetOpenAI().APIKey == "" {
			return "OPENAI_API_KEY", true
		}
	case "gemini":
		if cfg.GetGemini().APIKey == "" {
			return "GEMINI_API_KEY", true
		}
	}
	return "", false
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mcpCfg := cfg.GetMCP()
	session, err := mcp.Dial(ctx, mcp.Config{
		Command:        mcpCfg.Command,
		Args:           []string{mcpCfg.ServerPath},
		ConnectTimeout: mcpCfg.ConnectTimeout,
	}, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	analysisCfg := cfg.GetAnalysis()
	builder := prompt.NewBuilder(analysisCfg.Policy, utils.NewTextProcessor(logger))

	backend, err := factory.NewLLMFactory(cfg, logger, builder).CreateBackend(session)
	if err != nil {
		return err
	}
	if closer, ok := backend.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	service := core.NewAnalysisService(backend, logger, analysisCfg.Timeout, analysisCfg.TrustedDomains)

	for _, ex := range examples() {
		fmt.Printf("\n%s\n", ex.title)
		decision, err := service.Analyze(ctx, ex.req)
		if err != nil {
			return fmt.Errorf("analysis of %q: %w", ex.req.SenderEmail, err)
		}
		presenter.Render(os.Stdout, ex.req, decision)
	}

	return nil
}

func examples() []example {
	return []example{
		{
			title: "EXAMPLE 1: Legitimate email (Gmail to corporate)",
			req: &core.EmailAnalysisRequest{
				SenderEmail:              "yuri1992@gmail.com",
				SenderName:               "Yuri Ritvin",
				SenderIP:                 "8.8.8.8",
				RecipientEmail:           "moshee@pipl.com",
				RecipientName:            "Moshe Elkayam",
				RecipientIP:              "1.1.1.1",
				ARCAuthenticationResults: "mx.google.com; dkim=pass header.i=@gmail.com; spf=pass; dmarc=pass",
				DKIMSignature:            "v=1; a=rsa-sha256; d=gmail.com; s=google;",
				MessageIDDomain:          "gmail.com",
			},
		},
		{
			title: "EXAMPLE 2: Suspicious email (disposable domain)",
			req: &core.EmailAnalysisRequest{
				SenderEmail:              "temp12345@tempmail.com",
				SenderName:               "John Doe",
				SenderIP:                 "192.168.1.1",
				RecipientEmail:           "support@pipl.com",
				RecipientName:            "Support Team",
				ARCAuthenticationResults: "mx.tempmail.com; dkim=fail; spf=fail; dmarc=fail",
				DKIMSignature:            "v=1; a=rsa-sha256; d=tempmail.com; s=default;",
				MessageIDDomain:          "tempmail.com",
			},
		},
		{
			title: "EXAMPLE 3: Phishing attempt (domain mismatch)",
			req: &core.EmailAnalysisRequest{
				SenderEmail:              "admin@secure-banking.net",
				SenderName:               "Security Department",
				SenderIP:                 "45.123.45.67",
				RecipientEmail:           "user@example.com",
				RecipientName:            "Account Holder",
				ARCAuthenticationResults: "mx.suspicious.com; dkim=fail; spf=fail; dmarc=fail",
				DKIMSignature:            "v=1; a=rsa-sha256; d=secure-banking.net; s=default;",
				MessageIDDomain:          "mail-relay.xyz",
			},
		},
	}
}
