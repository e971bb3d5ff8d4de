package activity

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Levels recorded in the activity log
const (
	LevelInfo    = "INFO"
	LevelWarning = "WARNING"
	LevelError   = "ERROR"
)

// Entry is one line of the activity log
type Entry struct {
	ID        string         `json:"id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Script    string         `json:"script"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data"`
}

// naiveLayout matches timestamps written without a zone, as older collectors did
const naiveLayout = "2006-01-02T15:04:05.999999999"

// UnmarshalJSON accepts RFC 3339 timestamps and zone-less ones, which are read as local time.
// An unparseable timestamp leaves the zero time.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	aux := struct {
		*plain
		Timestamp string `json:"timestamp"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.Timestamp = parseTimestamp(aux.Timestamp)
	return nil
}

func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(naiveLayout, s, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

// Publisher forwards entries to an external sink
type Publisher interface {
	Publish(entry Entry) error
}

// Log appends activity entries to a JSONL file and optionally publishes them.
// Sink failures are logged and swallowed so they never fail the caller's work.
type Log struct {
	path      string
	script    string
	publisher Publisher
	logger    *logrus.Logger
	now       func() time.Time

	mu sync.Mutex
}

// NewLog creates an activity log for one component
func NewLog(path, script string, publisher Publisher, logger *logrus.Logger) *Log {
	return &Log{
		path:      path,
		script:    script,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Record writes one entry. data may be nil.
func (l *Log) Record(level, message string, data map[string]any) {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: l.now(),
		Script:    l.script,
		Level:     level,
		Message:   message,
		Data:      data,
	}

	fields := l.logger.WithFields(logrus.Fields{"script": l.script, "data": data})
	switch level {
	case LevelError:
		fields.Error(message)
	case LevelWarning:
		fields.Warn(message)
	default:
		fields.Info(message)
	}

	if err := l.append(entry); err != nil {
		l.logger.WithError(err).Warn("Failed to write activity log")
	}
	if l.publisher != nil {
		if err := l.publisher.Publish(entry); err != nil {
			l.logger.WithError(err).Warn("Failed to publish activity")
		}
	}
}

func (l *Log) append(entry Entry) error {
	if l.path == "" {
		return nil
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

// ReadEntries loads every well-formed entry from path. A missing file yields no entries.
func ReadEntries(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading activity log: %w", err)
	}
	return entries, nil
}

// Filter keeps entries matching level and script (empty matches all) and returns the last limit of them
func Filter(entries []Entry, level, script string, limit int) []Entry {
	var out []Entry
	for _, e := range entries {
		if level != "" && e.Level != level {
			continue
		}
		if script != "" && e.Script != script {
			continue
		}
		out = append(out, e)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
