// Package killrweather wires and runs a weather-data node: a supervisor
// owning an ingest worker and three compute workers, a streaming compute
// engine fed through a message queue, and a feeder streaming local raw data
// files into the node.
//
// Example usage:
//
//	cfg := killrweather.DefaultConfig()
//	cfg.DataDir = "/var/lib/killrweather/load"
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := killrweather.Run(context.Background(), cfg, logger); err != nil {
//	    log.Fatal(err)
//	}
package killrweather

import (
	"context"

	"github.com/JohnReedLOL/killrweather/internal/compute"
	"github.com/JohnReedLOL/killrweather/internal/config"
	"github.com/JohnReedLOL/killrweather/internal/engine"
	"github.com/JohnReedLOL/killrweather/internal/ingest"
	"github.com/JohnReedLOL/killrweather/internal/kafka"
	"github.com/JohnReedLOL/killrweather/internal/node"
	"github.com/JohnReedLOL/killrweather/pkg/log"
)

// Config holds the node configuration.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = config.Config

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return config.DefaultConfig()
}

// Run starts the node and blocks until it has shut down. Cancelling the
// context triggers graceful shutdown: every worker is asked to stop with a
// bounded wait, and workers that miss their deadline are reported.
//
// Run returns an error when the configuration is invalid or initialization
// fails; an unclean shutdown is logged, not returned as an error.
func Run(ctx context.Context, cfg Config, logger log.Logger) error {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	sources, err := cfg.Sources()
	if err != nil {
		return err
	}

	store := engine.NewStore()
	eng := engine.NewStandalone(cfg.Brokers, cfg.Topic, cfg.Group, logger)
	pipelines := []engine.Pipeline{
		engine.NewTemperaturePipeline(store),
		engine.NewPrecipitationPipeline(store),
		engine.NewStationPipeline(store),
	}
	for _, p := range pipelines {
		if err := eng.Register(p); err != nil {
			return err
		}
	}

	sup := node.New(node.Config{
		CheckpointDir:   cfg.CheckpointDir,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, node.Deps{
		Engine: eng,
		Connect: func(ctx context.Context) (kafka.Publisher, error) {
			return kafka.NewSyncPublisher(cfg.Brokers, logger)
		},
		NewFeeder: func(target ingest.Target) node.Feeder {
			feeder := ingest.NewFeeder(sources, cfg.Topic, cfg.Group, target, logger)
			if cfg.Watch && cfg.DataDir != "" {
				return ingest.NewWatchFeeder(feeder, cfg.DataDir, logger)
			}
			return feeder
		},
		Temperature:   compute.NewTemperatureReceiver(store, logger),
		Precipitation: compute.NewPrecipitationReceiver(store, logger),
		Station:       compute.NewStationReceiver(store, logger),
		Logger:        logger,
	})

	// The supervisor gets a detached context; external cancellation is
	// translated into a termination signal so shutdown stays graceful.
	sup.Start(context.Background())
	go func() {
		select {
		case <-ctx.Done():
			_ = sup.Notify(node.TerminationSignal{})
		case <-sup.Done():
		}
	}()

	<-sup.Done()

	for name, status := range sup.Outcome().Workers {
		if status == node.StatusTimedOut {
			logger.Warn("worker did not stop cleanly", log.String("worker", name))
		}
	}
	if err := eng.Stop(); err != nil {
		logger.Warn("stop engine", log.Err(err))
	}
	return sup.Err()
}
