package bench

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"rocmbench/internal/sampler"
)

// Filename timestamps are always UTC, second granularity. Two records for the
// same slug within the same second overwrite each other (last writer wins).
const timestampLayout = "20060102T150405Z"

// Collector persists benchmark records as pretty-printed JSON files under a
// single output directory.
type Collector struct {
	outputDir string
	location  *time.Location
	logger    *slog.Logger
	now       func() time.Time
}

// NewCollector builds a collector writing into outputDir. The timezone name
// selects the display zone for recorded_at; an unknown name falls back to
// UTC with a warning, never an error.
func NewCollector(outputDir, timezone string, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "collector")

	location, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Warn("unknown timezone, falling back to UTC", "timezone", timezone, "err", err)
		location = time.UTC
	}

	return &Collector{
		outputDir: outputDir,
		location:  location,
		logger:    logger,
		now:       time.Now,
	}
}

// Request carries everything needed to build one Record.
type Request struct {
	Label          string
	Cmd            []string
	TotalTime      time.Duration
	RuntimeSeconds *float64
	Extra          map[string]string
	GPUStats       *sampler.Summary
}

// Collect builds a record from the request, writes it to
// {outputDir}/{slug}_{timestamp}.json and returns the written path. The
// output directory is created, with parents, if absent.
func (c *Collector) Collect(req Request) (string, error) {
	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	extra := req.Extra
	if extra == nil {
		extra = map[string]string{}
	}

	now := c.now()
	record := Record{
		Label:            req.Label,
		Cmd:              req.Cmd,
		TotalTimeSeconds: req.TotalTime.Seconds(),
		RuntimeSeconds:   req.RuntimeSeconds,
		GPUStats:         GPUStats{Summary: req.GPUStats},
		Extra:            extra,
		RecordedAt:       now.In(c.location),
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}

	path := filepath.Join(c.outputDir, c.filename(req, now))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write record: %w", err)
	}

	c.logger.Info("benchmark written", "path", path)
	return path, nil
}

func (c *Collector) filename(req Request, now time.Time) string {
	label := req.Label
	if label == "" && len(req.Cmd) > 0 {
		label = req.Cmd[0]
	}
	return fmt.Sprintf("%s_%s.json", Slugify(label), now.UTC().Format(timestampLayout))
}
