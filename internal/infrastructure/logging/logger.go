package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/milltex/knitplan/internal/application/common"
	"github.com/milltex/knitplan/internal/infrastructure/config"
)

var levelRank = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

// StdoutLogger implements common.Logger, writing text or JSON lines to
// stdout according to logging configuration
type StdoutLogger struct {
	minLevel int
	json     bool
}

// NewStdoutLogger creates a logger from logging configuration
func NewStdoutLogger(cfg *config.LoggingConfig) *StdoutLogger {
	min, ok := levelRank[cfg.Level]
	if !ok {
		min = levelRank["info"]
	}
	return &StdoutLogger{
		minLevel: min,
		json:     cfg.Format == "json",
	}
}

// Log writes one log line if the level clears the configured threshold
func (l *StdoutLogger) Log(level, message string, fields map[string]interface{}) {
	rank, ok := levelRank[level]
	if !ok {
		rank = levelRank["info"]
	}
	if rank < l.minLevel {
		return
	}

	if l.json {
		entry := map[string]interface{}{
			"time":    time.Now().UTC().Format(time.RFC3339),
			"level":   level,
			"message": message,
		}
		for k, v := range fields {
			entry[k] = v
		}
		if line, err := json.Marshal(entry); err == nil {
			fmt.Fprintln(os.Stdout, string(line))
		}
		return
	}

	line := fmt.Sprintf("%s [%s] %s", time.Now().UTC().Format(time.RFC3339), level, message)
	for _, k := range sortedKeys(fields) {
		line += fmt.Sprintf(" %s=%v", k, fields[k])
	}
	fmt.Fprintln(os.Stdout, line)
}

func sortedKeys(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ common.Logger = (*StdoutLogger)(nil)
