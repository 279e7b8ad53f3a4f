package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/JohnReedLOL/killrweather"
	"github.com/JohnReedLOL/killrweather/internal/config"
	"github.com/JohnReedLOL/killrweather/internal/metrics"
	"github.com/JohnReedLOL/killrweather/pkg/log"
)

const longHelp = `
Run a killrweather node: stream local raw weather data into the message
queue, aggregate it with the streaming compute engine, and serve temperature,
precipitation, and station queries.

Configuration is layered: flags override KILLRWEATHER_* environment
variables, which override the config file, which overrides defaults.
`

var exampleUsage = strings.TrimSpace(`
  killrweather --data-dir ./data/load --brokers localhost:9092
  killrweather --config $HOME/.killrweather/config.toml --watch
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := config.DefaultConfig()
	var cfgPath string

	logger := log.NewZerologAdapter()

	root := &cobra.Command{
		Use:     "killrweather",
		Short:   "Stream, aggregate, and serve raw weather data",
		Long:    strings.TrimSpace(longHelp),
		Example: exampleUsage,
		Version: getVersion(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = config.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && config.FileExists(cfgFile) {
				fc, err := config.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := config.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := config.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger.Info("configuration",
				log.String("brokers", strings.Join(cfg.Brokers, ",")),
				log.String("topic", cfg.Topic),
				log.String("group", cfg.Group),
				log.String("checkpoint_dir", cfg.CheckpointDir),
				log.Duration("shutdown_timeout", cfg.ShutdownTimeout),
				log.Bool("watch", cfg.Watch),
			)

			if cfg.MetricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("metrics listener failed", log.Err(err))
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
				logger.Info("serving metrics", log.String("addr", cfg.MetricsAddr))
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return killrweather.Run(ctx, cfg, logger)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.killrweather/config.toml)")
	root.Flags().StringSliceVar(&cfg.Brokers, "brokers", cfg.Brokers, "message-queue bootstrap addresses")
	root.Flags().StringVar(&cfg.Topic, "topic", cfg.Topic, "raw-data topic")
	root.Flags().StringVar(&cfg.Group, "group", cfg.Group, "consumer group id")
	root.Flags().StringVar(&cfg.CheckpointDir, "checkpoint-dir", cfg.CheckpointDir, "engine checkpoint directory")
	root.Flags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory of raw data files")
	root.Flags().StringArrayVar(&cfg.DataFiles, "data-file", cfg.DataFiles, "raw data file, fed in flag order (repeatable)")
	root.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "per-worker termination wait")
	root.Flags().BoolVar(&cfg.Watch, "watch", cfg.Watch, "keep watching the data directory for new files")
	root.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "address to serve Prometheus metrics on (empty to disable)")

	if err := root.Execute(); err != nil {
		logger.Error("killrweather", log.Err(err))
		os.Exit(1)
	}
}
