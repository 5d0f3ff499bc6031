package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Tail returns the last n entries of the log at path.
func Tail(path string, n int) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("parse audit log: %w", err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	if n >= 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// FormatEntry renders one entry as a single timeline line.
func FormatEntry(e Entry) string {
	actions := []string{}
	if e.Validate {
		actions = append(actions, "validate")
	}
	if e.Record {
		actions = append(actions, "record")
	}
	if e.Amend {
		actions = append(actions, "amend")
	}
	acted := "-"
	if len(actions) > 0 {
		acted = strings.Join(actions, ",")
	}

	return fmt.Sprintf("%-19s %-24s %-9s %-22s %-40s %s",
		formatTimestamp(e.Timestamp),
		truncate(e.Context, 24),
		strings.ToUpper(e.Outcome),
		acted,
		truncate(e.Command, 40),
		e.Reason)
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
