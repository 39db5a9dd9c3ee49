// Command tensilectl is the headless acquisition recorder: it connects to the
// tensile tester firmware over serial, starts a test, records every sample
// until interrupted, then stops the machine and saves the run as CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tm-mech/diy-tensile-tester/internal/config"
	"github.com/tm-mech/diy-tensile-tester/internal/event"
	"github.com/tm-mech/diy-tensile-tester/internal/link"
	"github.com/tm-mech/diy-tensile-tester/internal/monitor"
	"github.com/tm-mech/diy-tensile-tester/internal/runfile"
	"github.com/tm-mech/diy-tensile-tester/internal/sample"
)

// readyWait bounds how long we wait for the firmware READY event after the
// board resets on port open.
const readyWait = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	outPath := flag.String("out", "", "run CSV output path (default tensile_test_<timestamp>.csv)")
	speed := flag.Float64("speed", 0, "crosshead speed in mm/min (0 = firmware default)")
	dir := flag.Int("dir", 0, "pull direction: 1 = pull, -1 = return (0 = firmware default)")
	tare := flag.Bool("tare", false, "zero the force measurement before starting")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("tensilectl starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"port", cfg.Link.Port,
		"baud", cfg.Link.Baud,
		"steps_per_mm", cfg.Calibration.StepsPerMM,
	)

	port, err := link.Open(cfg.Link)
	if err != nil {
		slog.Error("failed to open serial port", "port", cfg.Link.Port, "err", err)
		os.Exit(1)
	}
	defer port.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := sample.NewStore()
	events := event.NewQueue()
	reader := link.NewReader(port, store, events, cfg.Calibration)
	dispatch := link.NewDispatcher(port)

	go reader.Run(ctx)

	// Watch config file for hot-reload. Applying a new calibration mid-run
	// would corrupt the series, so reloads are logged only.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			slog.Info("config hot-reloaded — takes effect on next start",
				"port", updated.Link.Port)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	if cfg.Monitor.HTTPPort > 0 {
		mon := monitor.New(store, reader.Stats, cfg.Monitor.BroadcastInterval)
		go mon.Run(ctx)

		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Monitor.HTTPPort),
			Handler: mon,
		}
		go func() {
			slog.Info("monitor listening", "port", cfg.Monitor.HTTPPort)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("monitor server stopped", "err", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shutCancel()
			httpSrv.Shutdown(shutCtx) //nolint:errcheck
		}()
	}

	waitForReady(ctx, events)
	go logEvents(ctx, events)

	if *tare {
		if err := dispatch.Tare(); err != nil {
			slog.Error("tare failed", "err", err)
		}
	}
	if *speed > 0 {
		if err := dispatch.SetSpeed(*speed); err != nil {
			slog.Error("set speed failed", "err", err)
			os.Exit(1)
		}
	}
	if *dir != 0 {
		if err := dispatch.SetDirection(*dir); err != nil {
			slog.Error("set direction failed", "err", err)
			os.Exit(1)
		}
	}

	store.Clear()
	reader.ResetRun()
	if err := dispatch.Start(); err != nil {
		slog.Error("start command failed", "err", err)
		os.Exit(1)
	}
	slog.Info("test started — interrupt to stop and save")

	<-ctx.Done()

	if err := dispatch.Stop(); err != nil {
		slog.Warn("stop command failed", "err", err)
	}

	run := store.Snapshot()
	if run.Len() == 0 {
		slog.Warn("no data recorded, nothing to save")
		return
	}

	path := *outPath
	if path == "" {
		path = fmt.Sprintf("tensile_test_%s.csv", time.Now().Format("20060102_150405"))
	}
	if err := runfile.SaveRun(path, run); err != nil {
		slog.Error("save failed", "path", path, "err", err)
		os.Exit(1)
	}
	slog.Info("run saved", "path", path, "samples", run.Len())
}

// waitForReady drains events until the firmware announces READY or the
// timeout elapses. The board resets when the port opens, so this normally
// takes a couple of seconds.
func waitForReady(ctx context.Context, events *event.Queue) {
	slog.Info("waiting for firmware")
	deadline := time.After(readyWait)
	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			slog.Warn("firmware READY not seen, continuing anyway")
			return
		case <-events.Updates():
			for _, m := range events.Drain() {
				if e, ok := m.(event.DeviceEvent); ok && e.Name == "READY" {
					slog.Info("firmware ready")
					return
				}
			}
		}
	}
}

// logEvents surfaces queued device events, warnings and status updates.
func logEvents(ctx context.Context, events *event.Queue) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-events.Updates():
			for _, m := range events.Drain() {
				switch m.(type) {
				case event.Warning:
					slog.Warn("device", "msg", m.String())
				default:
					slog.Info("device", "msg", m.String())
				}
			}
		}
	}
}
