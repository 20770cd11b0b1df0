// cmd/bk1785/monitor.go
package main

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/bk1785/internal/httpserver"
	"github.com/tamzrod/bk1785/internal/metrics"
	"github.com/tamzrod/bk1785/internal/poller"
	"github.com/tamzrod/bk1785/internal/psu"
	"github.com/tamzrod/bk1785/internal/status"
	"github.com/tamzrod/bk1785/internal/writer"
)

func init() {
	rootCmd.AddCommand(monitorCmd)
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Poll telemetry and mirror it to Modbus TCP and Prometheus",
	Long: `Poll the supply with one read command per interval (monitor.interval_ms).

Each result is mirrored into a 24-register holding block on every
monitor.targets entry and exported on monitor.metrics_listen (/metrics,
/healthz, /readyz). Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	reg := metrics.NewRegistry()
	m := metrics.NewPSUMetrics(reg)

	ctx, cancel := context.WithCancelCause(cmd.Context())
	defer cancel(nil)

	// the port closes with ctx, unblocking a poll stuck on a silent device
	s, err := openSession(ctx, psu.WithObserver(m))
	if err != nil {
		return err
	}
	defer s.Close()

	mon := s.cfg.Monitor
	log := s.log

	// ---- writer ----
	var w writer.Writer
	if len(mon.Targets) > 0 {
		plan := writer.BuildPlan(mon, deviceName(ctx, s))

		clients, closeWriters, err := writer.BuildEndpointClients(plan)
		if err != nil {
			return err
		}
		defer closeWriters()

		w = writer.New(plan, clients)
		log.Info("register mirror enabled",
			zap.Int("targets", len(plan.Targets)),
			zap.String("device_name", plan.DeviceName),
		)
	}

	// ---- metrics endpoint ----
	var ready atomic.Bool
	if mon.MetricsListen != "" {
		srv := httpserver.New(mon.MetricsListen, metrics.Handler(reg), ready.Load)

		go func() {
			if err := srv.Start(); err != nil {
				cancel(fmt.Errorf("metrics server on %s: %w", mon.MetricsListen, err))
			}
		}()
		defer func() {
			shutCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutCtx)
		}()

		log.Info("metrics listening", zap.String("listen", mon.MetricsListen))
	}

	// ---- poller ----
	p, err := poller.Build(mon, s.psu)
	if err != nil {
		return err
	}

	err = p.Run(ctx, func(res poller.PollResult) {
		m.ObservePoll(res)
		ready.Store(res.Err == nil)

		if res.Err != nil {
			log.Warn("poll failed",
				zap.Uint16("code", status.ErrorCode(res.Err)),
				zap.Error(res.Err),
			)
		}

		if w != nil {
			if err := w.Write(res); err != nil {
				log.Warn("register mirror write failed", zap.Error(err))
			}
		}
	})

	if errors.Is(err, context.Canceled) {
		// interrupted, unless something inside the monitor gave up
		if cause := context.Cause(ctx); !errors.Is(cause, context.Canceled) {
			return cause
		}
		return nil
	}
	return err
}

// deviceName reads the product info for the register block name.
// A configured monitor.device_name skips the exchange.
func deviceName(ctx context.Context, s *session) string {
	if s.cfg.Monitor.DeviceName != "" {
		return s.cfg.Monitor.DeviceName
	}

	id, err := s.psu.ReadProductInfo(ctx)
	if err != nil {
		s.log.Warn("read product info failed; device name left blank", zap.Error(err))
		return ""
	}
	return status.DeviceName(id)
}
