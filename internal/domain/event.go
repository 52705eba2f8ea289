package domain

import "time"

// Tool call outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// ToolCallEvent records one tool invocation for the audit topic.
type ToolCallEvent struct {
	Tool       string         `json:"tool"`
	Arguments  map[string]any `json:"arguments,omitempty"`
	Outcome    string         `json:"outcome"`
	Error      string         `json:"error,omitempty"`
	DurationMS int64          `json:"duration_ms"`
	InvokedAt  time.Time      `json:"invoked_at"`
}
