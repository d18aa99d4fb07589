package toolchain

import (
	"strings"

	"typewatch/internal/diag"
)

// classifyType maps a go/types message to a stable code. The compiler
// does not expose machine codes, so classification keys off message
// shape; the fallback TypCheck keeps every diagnostic addressable.
// Substring order matters: more specific shapes first.
func classifyType(msg string) diag.Code {
	switch {
	case strings.Contains(msg, "cannot use ") && strings.Contains(msg, " as "):
		return diag.TypIncompatibleAssign
	case strings.Contains(msg, "undefined:") || strings.Contains(msg, "undeclared name"):
		return diag.TypUndeclaredName
	case strings.Contains(msg, "imported and not used"):
		return diag.TypUnusedImport
	case strings.Contains(msg, "declared and not used"):
		return diag.TypUnusedVariable
	case strings.Contains(msg, "mismatched types"):
		return diag.TypMismatchedTypes
	case strings.Contains(msg, "not enough arguments") || strings.Contains(msg, "too many arguments"):
		return diag.TypWrongArgCount
	case strings.Contains(msg, "missing return"):
		return diag.TypMissingReturn
	case strings.Contains(msg, "could not import"):
		return diag.TypBadImport
	case strings.Contains(msg, "redeclared") || strings.Contains(msg, "already declared"):
		return diag.TypRedeclared
	case strings.Contains(msg, "no field or method") || strings.Contains(msg, "undefined (type"):
		return diag.TypMissingFieldOrMeth
	case strings.Contains(msg, "is not a type"):
		return diag.TypNotAType
	case strings.Contains(msg, "cannot convert"):
		return diag.TypBadConversion
	case strings.Contains(msg, "invalid operation"):
		return diag.TypInvalidOperation
	default:
		return diag.TypCheck
	}
}

// classifySyntax maps a go/scanner or go/parser message to a code.
func classifySyntax(msg string) diag.Code {
	switch {
	case strings.Contains(msg, "expected"):
		return diag.SynExpected
	case strings.Contains(msg, "illegal"):
		return diag.SynIllegal
	case strings.Contains(msg, "declaration"):
		return diag.SynBadDecl
	default:
		return diag.SynError
	}
}
