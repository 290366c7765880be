package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edgeflare/treeconf/pkg/agent"
	"github.com/edgeflare/treeconf/pkg/codec"
	"github.com/edgeflare/treeconf/pkg/metrics"
	"github.com/edgeflare/treeconf/pkg/mqtt"
	"github.com/edgeflare/treeconf/pkg/topic"
)

// tickInterval paces the agent's cooperative scheduler. One republished
// leaf or one batch of queued commands per tick.
const tickInterval = 50 * time.Millisecond

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulated device exposing a sample settings tree",
	Long: `Run connects to the configured broker and serves a sample audio
device settings tree (gain plus two channels), useful for integration
testing against a real broker.`,
	RunE: run,
}

func run(cmd *cobra.Command, args []string) error {
	if cfg.Prefix == "" {
		return fmt.Errorf("device prefix is required (set prefix in config or TREECONF_PREFIX)")
	}

	logger, err := newLogger(logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	if cfg.Metrics.Enabled {
		metrics.StartPrometheusServer(ctx, &wg, &metrics.PromServerOpts{Addr: cfg.Metrics.Addr})
	}

	mapper, err := topic.NewMapper(cfg.Prefix)
	if err != nil {
		return err
	}

	c, err := codec.ByName(cfg.Codec)
	if err != nil {
		return err
	}

	mqttCfg := cfg.MQTT
	mqttCfg.AliveTopic = mapper.Alive()
	transport, err := mqtt.New(mqttCfg, logger)
	if err != nil {
		return err
	}
	defer transport.Disconnect()

	settings := newDeviceSettings()
	a, err := agent.New(agent.Options{
		Transport:      transport,
		Root:           settings.Tree(),
		Mapper:         mapper,
		Codec:          c,
		Logger:         logger,
		RepublishDelay: cfg.RepublishDelay,
		OnUpdate: func(path string) {
			logger.Info("applied remote update", zap.String("path", path))
		},
	})
	if err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	logger.Info("device running",
		zap.String("prefix", cfg.Prefix),
		zap.String("codec", c.Name()))

	for {
		select {
		case <-ticker.C:
			a.Tick()
		case <-sigChan:
			logger.Info("received termination signal, shutting down")
			cancel()
			wg.Wait()
			return nil
		}
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}
