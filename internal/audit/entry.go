package audit

// Outcomes recorded after a decision has been acted on.
const (
	OutcomeExecuted = "executed"
	OutcomeDeclined = "declined"
)

// Entry is one line in the hash-chained JSONL audit log.
// All fields are plain values (no map[string]any) so json.Marshal field
// order is deterministic and hashes are reproducible.
type Entry struct {
	Timestamp    string `json:"ts"`
	InvocationID string `json:"invocation_id"`
	Context      string `json:"context"`
	Namespace    string `json:"namespace"`
	Command      string `json:"command"`
	Validate     bool   `json:"validate"`
	Record       bool   `json:"record"`
	Amend        bool   `json:"amend"`
	Reason       string `json:"reason"`
	Outcome      string `json:"outcome"`
	PrevHash     string `json:"prev_hash"`
}
