package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"rocmbench/internal/sampler"
)

// CommandRunner executes an argv and blocks until the process exits. A
// non-zero exit code is reported through the int return, not the error; the
// error is reserved for launch failures.
type CommandRunner interface {
	Run(ctx context.Context, argv []string) (int, error)
}

// ExecRunner runs commands as child processes inheriting the standard
// streams of the benchmark tool.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, argv []string) (int, error) {
	if len(argv) == 0 {
		return 0, errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("launch %q: %w", argv[0], err)
}

// RunOptions configures one orchestrated benchmark run.
type RunOptions struct {
	Cmd      []string
	Label    string
	Interval time.Duration
	Extra    map[string]string
	DryRun   bool
}

// Orchestrator coordinates command execution with the sampler lifecycle and
// hands the result to the collector.
type Orchestrator struct {
	collector *Collector
	provider  sampler.Provider
	runner    CommandRunner
	logger    *slog.Logger
}

// NewOrchestrator wires an orchestrator. A nil runner defaults to ExecRunner.
func NewOrchestrator(collector *Collector, provider sampler.Provider, runner CommandRunner, logger *slog.Logger) *Orchestrator {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		collector: collector,
		provider:  provider,
		runner:    runner,
		logger:    logger.With("component", "orchestrator"),
	}
}

// Run executes opts.Cmd under GPU sampling, writes a benchmark record and
// returns the child's exit code together with the record path. A launch
// failure surfaces as an error, after the sampler has been stopped, with no
// record written.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (int, string, error) {
	if opts.DryRun {
		return o.dryRun(opts)
	}

	smp := sampler.New(o.provider, opts.Interval, o.logger)
	started := smp.Start()
	defer smp.Stop()

	startedAt := time.Now()
	code, runErr := o.runner.Run(ctx, opts.Cmd)
	smp.Stop()
	total := time.Since(startedAt)

	if runErr != nil {
		return 0, "", runErr
	}

	var stats *sampler.Summary
	if started {
		stats = smp.Summary()
	}

	path, err := o.collector.Collect(Request{
		Label:     opts.Label,
		Cmd:       opts.Cmd,
		TotalTime: total,
		Extra:     opts.Extra,
		GPUStats:  stats,
	})
	if err != nil {
		return code, "", err
	}
	return code, path, nil
}

// dryRun writes a placeholder record without spawning a process or touching
// the telemetry capability.
func (o *Orchestrator) dryRun(opts RunOptions) (int, string, error) {
	extra := make(map[string]string, len(opts.Extra)+1)
	for key, value := range opts.Extra {
		extra[key] = value
	}
	extra["dry_run"] = "true"

	runtime := 0.0
	path, err := o.collector.Collect(Request{
		Label:          opts.Label,
		Cmd:            opts.Cmd,
		TotalTime:      0,
		RuntimeSeconds: &runtime,
		Extra:          extra,
	})
	if err != nil {
		return 0, "", err
	}
	o.logger.Info("dry-run benchmark written", "path", path)
	return 0, path, nil
}
