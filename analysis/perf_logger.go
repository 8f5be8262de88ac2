// Package analysis derives per-edge throughput metrics from the handshake
// transitions observed during a simulation run.
package analysis

import (
	"fmt"
	"io"

	"github.com/flownetlab/flownet/datarecording"
)

// PerfEntry is a single entry of performance data.
type PerfEntry struct {
	Where string
	What  string
	Value float64
	Unit  string
}

// PerfLogger is the interface that provides the service that can record
// performance data entries.
type PerfLogger interface {
	AddDataEntry(entry PerfEntry)
}

// CSVPerfLogger writes performance entries as comma-separated lines.
type CSVPerfLogger struct {
	writer        io.Writer
	headerWritten bool
}

// NewCSVPerfLogger creates a CSVPerfLogger writing to the given writer.
func NewCSVPerfLogger(w io.Writer) *CSVPerfLogger {
	return &CSVPerfLogger{writer: w}
}

// AddDataEntry writes one entry as a CSV line.
func (l *CSVPerfLogger) AddDataEntry(entry PerfEntry) {
	if !l.headerWritten {
		fmt.Fprintf(l.writer, "where, what, value, unit\n")
		l.headerWritten = true
	}

	fmt.Fprintf(l.writer, "%s, %s, %.10f, %s\n",
		entry.Where, entry.What, entry.Value, entry.Unit)
}

const perfTableName = "flownet_perf"

// DBPerfLogger records performance entries through a DataRecorder.
type DBPerfLogger struct {
	recorder datarecording.DataRecorder
}

// NewDBPerfLogger creates a DBPerfLogger writing into the given recorder.
func NewDBPerfLogger(recorder datarecording.DataRecorder) *DBPerfLogger {
	recorder.CreateTable(perfTableName, PerfEntry{})

	return &DBPerfLogger{recorder: recorder}
}

// AddDataEntry inserts one entry into the performance table.
func (l *DBPerfLogger) AddDataEntry(entry PerfEntry) {
	l.recorder.InsertData(perfTableName, entry)
}
