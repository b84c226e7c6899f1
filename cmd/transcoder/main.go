// Command transcoder batch-converts the media files under a directory into
// normalized H.264/AAC MP4s, splitting oversized files into time-bounded
// chunks that are transcoded independently and merged back losslessly.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"batch-transcoder/internal/config"
	"batch-transcoder/internal/engine"
	"batch-transcoder/internal/monitor"
	"batch-transcoder/internal/notify"
	"batch-transcoder/internal/pipeline"
	"batch-transcoder/internal/walker"
)

func main() {
	configPath := pflag.StringP("config", "c", "config.yml", "path to the config file")
	pflag.StringP("path", "p", "", "root directory to scan (default: ~/Movies/bgm)")
	pflag.StringP("search", "s", config.SearchLocal, "search mode: local (top level only) or global (recursive)")
	pflag.Bool("engine-logging", false, "pass ffmpeg diagnostic output through to the console")
	pflag.Float64("threshold", config.DefaultChunkThresholdMB, "per-chunk size threshold in MB")
	pflag.String("notify-url", "", "optional URL to POST the run summary to")
	pflag.String("log-level", "info", "log level: trace, debug, info, warn, error")
	pflag.Parse()

	cfg, err := config.Load(*configPath, pflag.CommandLine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "transcoder: %v\n", err)
		os.Exit(1)
	}

	log := hclog.New(&hclog.LoggerOptions{
		Name:  "transcoder",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})

	// The root must exist before anything else happens.
	fi, err := os.Stat(cfg.RootPath)
	if err != nil || !fi.IsDir() {
		log.Error("input directory does not exist", "path", cfg.RootPath)
		os.Exit(1)
	}

	// Missing ffmpeg/ffprobe is fatal before any file is touched.
	eng, err := engine.NewFFmpegEngine(cfg.EngineLogging, log.Named("engine"))
	if err != nil {
		log.Error("dependency check failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	monitor.LogSystemSpecs(log.Named("monitor"))
	guard := monitor.NewDiskGuard(log.Named("monitor"))

	pipe := pipeline.New(eng, cfg.ChunkThresholdMB, guard.CheckHeadroom, log.Named("pipeline"))
	w := walker.New(cfg.RootPath, cfg.Recursive(), cfg.ExtensionSet(), pipe, log.Named("walker"))

	start := time.Now()
	summary, err := w.Run(ctx)
	if err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
	summary.ElapsedSeconds = time.Since(start).Seconds()
	log.Info("total time", "seconds", fmt.Sprintf("%.2f", summary.ElapsedSeconds))

	if cfg.NotifyURL != "" {
		// Fresh context: the signal context may already be cancelled.
		notifyCtx, notifyCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer notifyCancel()
		if err := notify.NewClient(cfg.NotifyURL, log.Named("notify")).PostSummary(notifyCtx, summary); err != nil {
			log.Warn("summary notification failed", "error", err)
		}
	}
}
