package logging

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/valyala/fastjson"
)

// Entry is one record read back from a JSON-lines log file.
type Entry struct {
	Timestamp time.Time
	Level     string
	Message   string
	Context   map[string]any
}

// ReadEntries parses JSON-lines records from r. Malformed lines are
// skipped and counted instead of failing the read; a best-effort log
// file can legally contain a torn final line.
func ReadEntries(r io.Reader) ([]Entry, int, error) {
	var (
		parser  fastjson.Parser
		entries []Entry
		skipped int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		v, err := parser.ParseBytes(line)
		if err != nil {
			skipped++
			continue
		}

		entry := Entry{
			Level:   string(v.GetStringBytes("level")),
			Message: string(v.GetStringBytes("message")),
		}
		if ts, err := time.Parse(time.RFC3339Nano, string(v.GetStringBytes("timestamp"))); err == nil {
			entry.Timestamp = ts
		}
		if obj := v.GetObject("context"); obj != nil {
			entry.Context = make(map[string]any)
			obj.Visit(func(key []byte, value *fastjson.Value) {
				entry.Context[string(key)] = jsonValue(value)
			})
		}

		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, skipped, fmt.Errorf("failed to scan log stream: %w", err)
	}

	return entries, skipped, nil
}

// TailFile returns the last n entries of a JSON-lines log file.
func TailFile(path string, n int) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %q: %w", path, err)
	}
	defer file.Close()

	entries, _, err := ReadEntries(file)
	if err != nil {
		return nil, err
	}

	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// jsonValue converts a fastjson value into a plain Go value.
func jsonValue(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeString:
		b, _ := v.StringBytes()
		return string(b)
	case fastjson.TypeNumber:
		f, _ := v.Float64()
		return f
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeObject:
		obj, _ := v.Object()
		m := make(map[string]any)
		obj.Visit(func(key []byte, value *fastjson.Value) {
			m[string(key)] = jsonValue(value)
		})
		return m
	case fastjson.TypeArray:
		arr, _ := v.Array()
		s := make([]any, 0, len(arr))
		for _, item := range arr {
			s = append(s, jsonValue(item))
		}
		return s
	default:
		return nil
	}
}
