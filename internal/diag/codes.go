package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Синтаксические (scanner + parser)
	SynError    Code = 1000
	SynExpected Code = 1001
	SynIllegal  Code = 1002
	SynBadDecl  Code = 1003

	// Семантические (type check)
	TypCheck              Code = 3000
	TypIncompatibleAssign Code = 3001
	TypUndeclaredName     Code = 3002
	TypMissingFieldOrMeth Code = 3003
	TypWrongArgCount      Code = 3004
	TypRedeclared         Code = 3005
	TypUnusedImport       Code = 3006
	TypUnusedVariable     Code = 3007
	TypMismatchedTypes    Code = 3008
	TypMissingReturn      Code = 3009
	TypBadImport          Code = 3010
	TypInvalidOperation   Code = 3011
	TypNotAType           Code = 3012
	TypBadConversion      Code = 3013
)

var codeDescription = map[Code]string{
	UnknownCode: "unknown diagnostic",

	SynError:    "syntax error",
	SynExpected: "expected token missing",
	SynIllegal:  "illegal character or token",
	SynBadDecl:  "malformed declaration",

	TypCheck:              "type check failed",
	TypIncompatibleAssign: "value not assignable to type",
	TypUndeclaredName:     "undeclared name",
	TypMissingFieldOrMeth: "missing field or method",
	TypWrongArgCount:      "wrong number of arguments",
	TypRedeclared:         "name redeclared in scope",
	TypUnusedImport:       "imported and not used",
	TypUnusedVariable:     "declared and not used",
	TypMismatchedTypes:    "mismatched operand types",
	TypMissingReturn:      "missing return",
	TypBadImport:          "could not import package",
	TypInvalidOperation:   "invalid operation",
	TypNotAType:           "not a type",
	TypBadConversion:      "invalid conversion",
}

// ID возвращает стабильный строковый идентификатор кода: SYN####/TYP####.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("TYP%04d", ic)
	default:
		return fmt.Sprintf("TW%04d", ic)
	}
}

// Title returns a short human description of the code.
func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
