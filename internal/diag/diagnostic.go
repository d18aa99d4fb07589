package diag

// Diagnostic is one normalized compiler finding attached to a source
// position. Compiler output without a position is dropped at the
// toolchain boundary and never becomes a Diagnostic.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Path     string // absolute, slash-normalized
	Line     uint32 // 1-based
	Col      uint32 // 1-based
	Message  string
}
