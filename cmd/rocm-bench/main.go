package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"

	"rocmbench/internal/bench"
	"rocmbench/internal/config"
	"rocmbench/internal/sampler"
	"rocmbench/internal/version"
)

var (
	buildVersion = "dev"
	buildCommit  = ""
	buildTime    = ""
)

func main() {
	version.Set(version.Info{
		Version:   buildVersion,
		Commit:    buildCommit,
		BuildTime: buildTime,
	})

	cfg, err := config.Load()
	if err != nil {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})
		slog.New(handler).Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	info := version.Current()
	logger.Debug("build info", "version", info.Version, "commit", info.Commit, "go_version", info.GoVersion)

	app := kingpin.New("rocm-bench", "Sample AMD GPU usage while running any command and persist JSON benchmarks.")
	app.Version(info.Version)

	runCmd := app.Command("run", "Run a command under AMD GPU sampling.")
	execCmd := runCmd.Command("exec", "Execute a command and write a benchmark JSON.")
	execLabel := execCmd.Flag("label", "Label for this benchmark.").Short('l').Required().String()
	execOutputDir := execCmd.Flag("output-dir", "Directory where benchmark JSON files are written.").Short('o').Default(cfg.OutputDir).String()
	execInterval := execCmd.Flag("interval", "GPU sampling interval.").Short('i').Default(cfg.SampleInterval.String()).Duration()
	execExtra := execCmd.Flag("extra", "Extra metadata key=val (repeatable).").Short('e').Strings()
	execDryRun := execCmd.Flag("dry-run", "Skip command execution and GPU sampling while still writing a benchmark record.").Bool()
	execArgv := execCmd.Arg("cmd", "Command and args to execute (use -- to separate).").Required().Strings()

	statusCmd := app.Command("status", "Inspect latest benchmark JSON files.")
	listCmd := statusCmd.Command("list", "Summarize recent benchmark JSON files.")
	listDir := listCmd.Flag("dir", "Directory containing benchmark JSON files.").Default(cfg.OutputDir).String()
	listLimit := listCmd.Flag("limit", "Max files to show (newest first).").Short('n').Default("10").Int()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case execCmd.FullCommand():
		collector := bench.NewCollector(*execOutputDir, cfg.Timezone, logger)
		provider := sampler.NewSysfsProvider(cfg.SysfsRoot, logger)
		orchestrator := bench.NewOrchestrator(collector, provider, bench.ExecRunner{}, logger)

		code, path, err := orchestrator.Run(ctx, bench.RunOptions{
			Cmd:      *execArgv,
			Label:    *execLabel,
			Interval: *execInterval,
			Extra:    bench.ParseExtra(*execExtra, logger),
			DryRun:   *execDryRun,
		})
		if err != nil {
			logger.Error("benchmark run failed", "err", err)
			os.Exit(1)
		}
		fmt.Printf("[rocm-bench] wrote: %s\n", path)
		os.Exit(code)

	case listCmd.FullCommand():
		if err := bench.ListRecords(*listDir, *listLimit, os.Stdout); err != nil {
			logger.Error("status listing failed", "err", err)
			os.Exit(1)
		}
	}
}
