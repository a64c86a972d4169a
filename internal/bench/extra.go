package bench

import (
	"log/slog"
	"strings"
)

// ParseExtra splits repeatable key=val metadata flags into a map. Malformed
// entries are dropped with a warning instead of failing the run.
func ParseExtra(pairs []string, logger *slog.Logger) map[string]string {
	if logger == nil {
		logger = slog.Default()
	}
	extra := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			logger.Warn("ignoring malformed extra, expected key=val", "value", pair)
			continue
		}
		extra[key] = value
	}
	return extra
}
