package models

import "time"

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Operation is a diagnostic kind.
type Operation string

const (
	OperationPing       Operation = "ping"
	OperationTraceroute Operation = "traceroute"
)

// Operations lists every supported operation.
var Operations = []Operation{OperationPing, OperationTraceroute}

// CommandResult is the response envelope for a diagnostic run.
type CommandResult struct {
	Success   bool   `json:"success"`
	Output    string `json:"output,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// NewSuccessResult builds a success envelope stamped with t.
func NewSuccessResult(output string, t time.Time) *CommandResult {
	return &CommandResult{
		Success:   true,
		Output:    output,
		Timestamp: FormatTimestamp(t),
	}
}

// NewFailureResult builds a failure envelope stamped with t.
func NewFailureResult(msg string, t time.Time) *CommandResult {
	return &CommandResult{
		Success:   false,
		Error:     msg,
		Timestamp: FormatTimestamp(t),
	}
}

// HealthStatus is the /health response body.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Location  string `json:"location"`
}

// FormatTimestamp renders t with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
