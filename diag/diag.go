// Package diag records a columnar trace of the OEM commands issued
// during program() for offline debugging — distinct from the RF data
// itself, which this core never persists.
package diag

import (
	"io"

	"github.com/segmentio/parquet-go"
)

// CommandRecord is one row of the command trace: which OEM, which
// firing, which command, and its encoded argument string.
type CommandRecord struct {
	Sequence int `parquet:"sequence"`
	OEM int `parquet:"oem"`
	Firing int `parquet:"firing"`
	Command string `parquet:"command"`
	Args string `parquet:"args"`
}

// Tracer wraps a parquet.GenericWriter[CommandRecord] and assigns
// monotonic sequence numbers.
type Tracer struct {
	w *parquet.GenericWriter[CommandRecord]
	next int
}

// NewTracer opens a command trace writer over w, tagging the file
// with sessionInfo (e.g. probe name, adapter, nOEM) as key-value
// metadata.
func NewTracer(w io.Writer, sessionInfo string) *Tracer {
	return &Tracer{
		w: parquet.NewGenericWriter[CommandRecord](w,
			parquet.KeyValueMetadata("session", sessionInfo),
		),
	}
}

// Record appends one OEM command to the trace.
func (t *Tracer) Record(oem, firing int, command, args string) error {
	_, err := t.w.Write([]CommandRecord{{
		Sequence: t.next,
		OEM: oem,
		Firing: firing,
		Command: command,
		Args: args,
	}})
	t.next++
	return err
}

// Close flushes and closes the underlying parquet writer.
func (t *Tracer) Close() error {
	return t.w.Close()
}
