package evaluator

import (
	"time"

	"github.com/thomasrohde/stellar/pkg/ast"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart     TraceEventType = "run_start"
	TraceRunEnd       TraceEventType = "run_end"
	TraceStmtStart    TraceEventType = "stmt_start"
	TraceStmtEnd      TraceEventType = "stmt_end"
	TracePrint        TraceEventType = "print"
	TraceRuntimeError TraceEventType = "runtime_error"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string         `json:"ts"`
	RunID     string         `json:"runId"`
	Event     TraceEventType `json:"event"`
	Span      *ast.Span      `json:"span,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

func (in *Interpreter) emit(event TraceEventType, span *ast.Span) {
	in.emitWithData(event, span, nil)
}

func (in *Interpreter) emitWithData(event TraceEventType, span *ast.Span, data map[string]any) {
	if in.opts.Trace == nil {
		return
	}
	in.opts.Trace(TraceEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RunID:     in.opts.RunID,
		Event:     event,
		Span:      span,
		Data:      data,
	})
}
