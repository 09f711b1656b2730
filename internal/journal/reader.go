package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Entry is one parsed journal line. Raw keeps the full event for callers
// that want the type-specific fields.
type Entry struct {
	Type string          `json:"type"`
	Time string          `json:"time"`
	Raw  json.RawMessage `json:"-"`
}

// Read parses every line of the journal at path. Blank lines are skipped.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file %s: %w", path, err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", lineNum, err)
		}
		e.Raw = append(json.RawMessage(nil), line...)
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return entries, nil
}

type Count struct {
	Type  string
	Count int
}

// Tally counts entries per type, most frequent first.
func Tally(entries []Entry) []Count {
	byType := make(map[string]int)
	for _, e := range entries {
		byType[e.Type]++
	}
	out := make([]Count, 0, len(byType))
	for t, n := range byType {
		out = append(out, Count{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// Trades decodes the trade entries.
func Trades(entries []Entry) ([]Trade, error) {
	var out []Trade
	for _, e := range entries {
		if e.Type != "trade" {
			continue
		}
		var t Trade
		if err := json.Unmarshal(e.Raw, &t); err != nil {
			return nil, fmt.Errorf("failed to parse trade at %s: %w", e.Time, err)
		}
		out = append(out, t)
	}
	return out, nil
}
