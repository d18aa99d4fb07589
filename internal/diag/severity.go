package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevWarning is for diagnostics the toolchain marks as soft.
	SevWarning Severity = iota
	SevError
)

// String returns the wire label used in the JSON result shape.
func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}
