package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// VerifyResult is the outcome of walking a decision log's hash chain.
type VerifyResult struct {
	Valid     bool   `json:"valid"`
	Lines     int    `json:"lines"`
	Executed  int    `json:"executed"`
	Declined  int    `json:"declined"`
	Error     string `json:"error,omitempty"`
	ErrorLine int    `json:"error_line,omitempty"`
}

func broken(line int, format string, args ...any) VerifyResult {
	return VerifyResult{Error: fmt.Sprintf(format, args...), ErrorLine: line}
}

// Verify checks that every entry's prev_hash is the hash of the line before
// it, starting from GenesisHash. It stops at the first broken link.
func Verify(path string) VerifyResult {
	f, err := os.Open(path)
	if err != nil {
		return VerifyResult{Error: fmt.Sprintf("open: %v", err)}
	}
	defer f.Close()

	var result VerifyResult
	want := GenesisHash

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		result.Lines++
		line := scanner.Bytes()

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return broken(result.Lines, "parse error: %v", err)
		}
		if entry.PrevHash != want {
			if result.Lines == 1 {
				return broken(1, "first entry prev_hash is %q, expected genesis hash", entry.PrevHash)
			}
			return broken(result.Lines, "hash mismatch: expected %s, got %s", want, entry.PrevHash)
		}

		switch entry.Outcome {
		case OutcomeExecuted:
			result.Executed++
		case OutcomeDeclined:
			result.Declined++
		}
		want = HashLine(line)
	}

	if err := scanner.Err(); err != nil {
		return VerifyResult{Error: fmt.Sprintf("scan: %v", err)}
	}

	result.Valid = true
	return result
}
