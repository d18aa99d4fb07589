package checker

import (
	"typewatch/internal/diag"
	"typewatch/internal/observ"
	"typewatch/internal/project"
)

// Record is the external shape of one diagnostic. Paths are relative
// to the project root, positions 1-based, codes the banded string form
// (SYN0001, TYP3002, ...).
type Record struct {
	File     string `json:"file"`
	Line     uint32 `json:"line"`
	Column   uint32 `json:"column"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Metrics accompanies a result when the caller asked for timings.
type Metrics struct {
	// CheckTime is the wall-clock duration of the whole query in
	// milliseconds.
	CheckTime    float64              `json:"checkTime"`
	FilesChecked int                  `json:"filesChecked"`
	TotalErrors  int                  `json:"totalErrors"`
	Phases       []observ.PhaseReport `json:"phases,omitempty"`
}

// Result is what every check mode produces. Errors holds warnings too;
// the Severity field tells them apart.
type Result struct {
	Errors  []Record `json:"errors"`
	Metrics *Metrics `json:"metrics,omitempty"`
}

// HasErrors reports whether any record is a hard error. Warnings alone
// leave the exit status clean.
func (r *Result) HasErrors() bool {
	for i := range r.Errors {
		if r.Errors[i].Severity == diag.SevError.String() {
			return true
		}
	}
	return false
}

func (r *Result) errorCount() int {
	n := 0
	for i := range r.Errors {
		if r.Errors[i].Severity == diag.SevError.String() {
			n++
		}
	}
	return n
}

func toRecord(m *project.Manifest, d diag.Diagnostic) Record {
	return Record{
		File:     m.Rel(d.Path),
		Line:     d.Line,
		Column:   d.Col,
		Code:     d.Code.ID(),
		Message:  d.Message,
		Severity: d.Severity.String(),
	}
}
