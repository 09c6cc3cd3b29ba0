package report

import (
	"encoding/json"
	"errors"
	"time"
)

// Record type constants define the envelope types for JSONL artifact
// output. These follow the pattern: simlane.<type>.v<version>
const (
	// TypeShard identifies shard records.
	TypeShard = "simlane.shard.v1"

	// TypeNode identifies MATADA node records.
	TypeNode = "simlane.node.v1"

	// TypeSummary identifies final summary records.
	TypeSummary = "simlane.summary.v1"
)

// Record is the envelope for all JSONL artifact output.
//
// Each line contains a Record with a type-specific payload in the Data
// field. The type field determines how to interpret the payload.
type Record struct {
	// Type identifies the record type (e.g., "simlane.node.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created.
	TS time.Time `json:"ts"`

	// TraceID correlates the record with its simulation job.
	TraceID string `json:"trace_id"`

	// Lane identifies the producing lane.
	Lane string `json:"lane"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// Writer errors.
var (
	// ErrWriterClosed is returned when writing to a closed writer.
	ErrWriterClosed = errors.New("writer is closed")
)

// WriteError wraps errors that occur during write operations.
type WriteError struct {
	Op  string // Operation that failed (e.g., "marshal_data", "write")
	Err error
}

func (e *WriteError) Error() string {
	return "report: " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
