package report

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Writer outputs JSONL records for collected simulation results.
//
// Implementations must be safe for concurrent use. Each Write* method
// emits a complete record as a single line of JSON plus a newline.
type Writer interface {
	// WriteShard emits a shard record.
	WriteShard(ctx context.Context, shard *Shard) error

	// WriteNode emits a MATADA node record.
	WriteNode(ctx context.Context, node *Node) error

	// WriteSummary emits a summary record.
	WriteSummary(ctx context.Context, sum *Summary) error

	// Close flushes any buffered output and releases resources.
	Close() error
}

// JSONLWriter writes records as newline-delimited JSON to an io.Writer.
//
// Writes are serialized with a mutex so lines never interleave.
type JSONLWriter struct {
	w       io.Writer
	traceID string
	mu      sync.Mutex
	closed  bool
}

// NewJSONLWriter creates a JSONL writer for one job's artifacts.
func NewJSONLWriter(w io.Writer, traceID string) *JSONLWriter {
	return &JSONLWriter{w: w, traceID: traceID}
}

// WriteShard emits a shard record.
func (jw *JSONLWriter) WriteShard(ctx context.Context, shard *Shard) error {
	return jw.writeRecord(ctx, TypeShard, shard)
}

// WriteNode emits a MATADA node record.
func (jw *JSONLWriter) WriteNode(ctx context.Context, node *Node) error {
	return jw.writeRecord(ctx, TypeNode, node)
}

// WriteSummary emits a summary record.
func (jw *JSONLWriter) WriteSummary(ctx context.Context, sum *Summary) error {
	return jw.writeRecord(ctx, TypeSummary, sum)
}

// Close marks the writer closed. The underlying io.Writer is not closed;
// its lifecycle belongs to the caller.
func (jw *JSONLWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	jw.closed = true
	return nil
}

func (jw *JSONLWriter) writeRecord(ctx context.Context, recordType string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return &WriteError{Op: "marshal_data", Err: err}
	}

	rec := Record{
		Type:    recordType,
		TS:      time.Now().UTC(),
		TraceID: jw.traceID,
		Lane:    NodeLane,
		Data:    payload,
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return &WriteError{Op: "marshal_record", Err: err}
	}
	line = append(line, '\n')

	jw.mu.Lock()
	defer jw.mu.Unlock()
	if jw.closed {
		return ErrWriterClosed
	}
	if _, err := jw.w.Write(line); err != nil {
		return &WriteError{Op: "write", Err: err}
	}
	return nil
}
