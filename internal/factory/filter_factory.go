package factory

import (
	"go.uber.org/zap"

	"github.com/yuri1992/email-trust-agent/internal/adapters/filter"
	"github.com/yuri1992/email-trust-agent/internal/config"
	"github.com/yuri1992/email-trust-agent/internal/core"
	"github.com/yuri1992/email-trust-agent/internal/ports"
)

// FilterFactory creates ingestion frontends
type FilterFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.AnalysisService
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, service *core.AnalysisService) *FilterFactory {
	return &FilterFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateEmailFilter creates the SMTP ingestion frontend
func (f *FilterFactory) CreateEmailFilter() (ports.EmailFilter, error) {
	serverCfg := f.cfg.GetServer()

	return filter.NewSMTPFilter(
		f.service,
		f.logger,
		serverCfg.ListenAddress,
		serverCfg.BlockBlocked,
		serverCfg.DecisionHeader,
		serverCfg.ScoreHeader,
		serverCfg.ReasonHeader,
		serverCfg.RelayEnabled,
		serverCfg.RelayAddress,
		serverCfg.RelayPort,
	), nil
}
