// Package bench persists benchmark records and orchestrates command
// execution under GPU sampling.
package bench

import (
	"bytes"
	"encoding/json"
	"time"

	"rocmbench/internal/sampler"
)

// Record is the persisted unit for one benchmark invocation. Records are
// written once and never mutated.
type Record struct {
	Label            string            `json:"label"`
	Cmd              []string          `json:"cmd"`
	TotalTimeSeconds float64           `json:"total_time_seconds"`
	RuntimeSeconds   *float64          `json:"runtime_seconds"`
	GPUStats         GPUStats          `json:"gpu_stats"`
	Extra            map[string]string `json:"extra"`
	RecordedAt       time.Time         `json:"recorded_at"`
}

// GPUStats wraps an optional sampling summary. On disk a record carries an
// empty JSON object, never null, when no sampling data exists.
type GPUStats struct {
	Summary *sampler.Summary
}

func (g GPUStats) MarshalJSON() ([]byte, error) {
	if g.Summary == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(g.Summary)
}

func (g *GPUStats) UnmarshalJSON(data []byte) error {
	trimmed := string(bytes.TrimSpace(data))
	if trimmed == "null" || trimmed == "{}" {
		g.Summary = nil
		return nil
	}
	summary := &sampler.Summary{}
	if err := json.Unmarshal(data, summary); err != nil {
		return err
	}
	g.Summary = summary
	return nil
}
