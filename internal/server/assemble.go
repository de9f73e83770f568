// internal/server/assemble.go
package server

import (
	"github.com/pagesnap/pagesnap/internal/capture"
	"github.com/pagesnap/pagesnap/internal/config"
	"github.com/pagesnap/pagesnap/internal/history"
	"github.com/pagesnap/pagesnap/internal/monitoring"
	"github.com/pagesnap/pagesnap/internal/utils"
)

// Assemble wires the production service from configuration: metrics,
// the optional history store, the browser session manager and the
// capture pipeline behind the HTTP server. The returned cleanup
// releases resources owned by the assembly.
func Assemble(cfg *config.ServiceConfig, version string, logger utils.Logger) (*Server, func(), error) {
	if logger == nil {
		logger = utils.NewLoggerWithLevel(utils.ParseLevel(cfg.LogLevel))
	}

	metrics, metricsHandler := monitoring.NewMetrics(cfg.Name)

	store, err := history.New(cfg.History, logger)
	if err != nil {
		return nil, nil, err
	}

	manager := capture.NewManager(cfg.Browser, cfg.Capture.LaunchTimeout(), logger)

	var recorder capture.Recorder
	if store != nil {
		recorder = store
	}

	pipeline := capture.NewPipeline(capture.PipelineConfig{
		Service:  cfg,
		Sessions: manager,
		Metrics:  metrics,
		Recorder: recorder,
		Logger:   logger,
	})

	srv := New(cfg, Options{
		Pipeline:       pipeline,
		Metrics:        metrics,
		MetricsHandler: metricsHandler,
		History:        store,
		Logger:         logger,
		Version:        version,
	})

	cleanup := func() {
		if store != nil {
			store.Close()
		}
	}

	return srv, cleanup, nil
}
