package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Read returns at most maxLines from the end of the file at path. maxLines
// of zero or less returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed log line.
type Entry struct {
	Time      time.Time
	Level     zerolog.Level
	Message   string
	Component string
	RequestID string
	Error     string
	// Fields holds every other key rendered as text, sorted by key in Keys.
	Fields map[string]string
	Keys   []string
	// Raw is the original line; it is the only content of non-JSON lines.
	Raw string
}

// Parse decodes a zerolog JSON line. Lines that are not JSON objects come
// back as a NoLevel entry carrying only Raw.
func Parse(line string) Entry {
	entry := Entry{Raw: line, Level: zerolog.NoLevel}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		entry.Message = line
		return entry
	}

	entry.Message = stringField(fields, zerolog.MessageFieldName)
	entry.Component = stringField(fields, "component")
	entry.RequestID = stringField(fields, "request_id")
	entry.Error = stringField(fields, zerolog.ErrorFieldName)
	if lvl, err := zerolog.ParseLevel(stringField(fields, zerolog.LevelFieldName)); err == nil {
		entry.Level = lvl
	}
	if ts := stringField(fields, zerolog.TimestampFieldName); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			entry.Time = parsed
		}
	}

	for _, known := range []string{
		zerolog.MessageFieldName, zerolog.LevelFieldName, zerolog.TimestampFieldName,
		zerolog.ErrorFieldName, "component", "request_id",
	} {
		delete(fields, known)
	}
	if len(fields) > 0 {
		entry.Fields = make(map[string]string, len(fields))
		for k, v := range fields {
			entry.Fields[k] = fieldText(v)
			entry.Keys = append(entry.Keys, k)
		}
		sort.Strings(entry.Keys)
	}
	return entry
}

// Tail reads and parses the last maxLines of path.
func Tail(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Format renders an entry as a single plain-text line.
func (e Entry) Format() string {
	if e.Level == zerolog.NoLevel && e.Fields == nil && e.Component == "" {
		return e.Message
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	b.WriteString(strings.ToUpper(e.Level.String()))
	if e.Component != "" {
		fmt.Fprintf(&b, " [%s]", e.Component)
	}
	b.WriteString(" ")
	b.WriteString(e.Message)
	for _, k := range e.Keys {
		fmt.Fprintf(&b, " %s=%s", k, e.Fields[k])
	}
	if e.Error != "" {
		fmt.Fprintf(&b, " error=%q", e.Error)
	}
	return b.String()
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return s
}

func fieldText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
