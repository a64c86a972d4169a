package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ListRecords prints a one-line summary for up to limit record files under
// dir, newest modification time first. The directory is created if absent.
// Files that fail to parse are reported inline and do not abort the listing.
func ListRecords(dir string, limit int, out io.Writer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create records dir: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read records dir: %w", err)
	}

	type recordFile struct {
		name    string
		modTime time.Time
	}
	var files []recordFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, recordFile{name: entry.Name(), modTime: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})
	if limit >= 0 && len(files) > limit {
		files = files[:limit]
	}

	if len(files) == 0 {
		fmt.Fprintln(out, "[status] No records found.")
		return nil
	}

	for _, file := range files {
		data, err := os.ReadFile(filepath.Join(dir, file.name))
		var view recordView
		if err == nil {
			err = json.Unmarshal(data, &view)
		}
		if err != nil {
			fmt.Fprintf(out, "- %s (failed to parse: %v)\n", file.name, err)
			continue
		}

		label := view.Label
		if label == "" {
			label = "?"
		}
		fmt.Fprintf(out, "- %s | label=%s total=%.2fs avg=%s max=%s\n",
			file.name, label, view.TotalTimeSeconds,
			formatPercent(view.GPUStats.AvgLoadPercent),
			formatPercent(view.GPUStats.MaxLoadPercent))
	}
	return nil
}

// recordView is the subset of a record needed for the listing. Pointer
// fields distinguish absent keys from zero values.
type recordView struct {
	Label            string  `json:"label"`
	TotalTimeSeconds float64 `json:"total_time_seconds"`
	GPUStats         struct {
		AvgLoadPercent *float64 `json:"avg_gpu_load_percent"`
		MaxLoadPercent *float64 `json:"max_gpu_load_percent"`
	} `json:"gpu_stats"`
}

func formatPercent(value *float64) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *value)
}
