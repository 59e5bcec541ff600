package diagnostics

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Report is a renderable summary of one compile's findings, modeled on the
// teacher's VerificationReport (verify/report.go): callers get a
// human-readable table instead of re-deriving one from raw findings.
type Report struct {
	Errors   []*CompileError
	Warnings []*CompileError
	Ignored  int
}

// NewReport partitions findings and wraps the result in a Report.
func NewReport(findings []*CompileError, flags FlagTable) *Report {
	errs, warnings, ignored := Partition(findings, flags)
	return &Report{Errors: errs, Warnings: warnings, Ignored: ignored}
}

// OK reports whether the compile produced zero hard errors.
func (r *Report) OK() bool { return len(r.Errors) == 0 }

// Write renders the report as a table to w, one row per finding, most
// severe first.
func (r *Report) Write(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Severity", "Code", "Block", "Port", "Message"})

	for _, e := range r.Errors {
		t.AppendRow(rowFor("error", e))
	}
	for _, e := range r.Warnings {
		t.AppendRow(rowFor("warn", e))
	}

	t.Render()
}

func rowFor(severity string, e *CompileError) table.Row {
	block, port := "", ""
	if e.Where != nil {
		block, port = e.Where.BlockID, e.Where.Port
	}
	return table.Row{severity, string(e.Code), block, port, e.Message}
}
