package logger

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// Logger writes one JSON object per line to stdout. Every entry carries the
// service name, an action tag and an optional fields map.
type Logger struct {
	service  string
	hostname string

	mu  sync.Mutex
	enc *json.Encoder
}

func New(service string) *Logger {
	hostname, _ := os.Hostname()
	return &Logger{
		service:  service,
		hostname: hostname,
		enc:      json.NewEncoder(os.Stdout),
	}
}

func (l *Logger) log(level, action string, fields map[string]any, err error) {
	entry := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"level":     level,
		"service":   l.service,
		"action":    action,
		"hostname":  l.hostname,
	}
	for k, v := range fields {
		entry[k] = v
	}
	if err != nil {
		entry["error"] = err.Error()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.enc.Encode(entry)
}

func (l *Logger) Info(action string, fields map[string]any) {
	l.log("INFO", action, fields, nil)
}

func (l *Logger) Debug(action string, fields map[string]any) {
	l.log("DEBUG", action, fields, nil)
}

func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.log("ERROR", action, fields, err)
}
