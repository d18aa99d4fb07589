package render

import "fmt"

// Format selects the output representation of a check result.
type Format uint8

const (
	FormatJSON Format = iota
	FormatPretty
	FormatMarkdown
)

func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return FormatJSON, nil
	case "pretty", "text":
		return FormatPretty, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return 0, fmt.Errorf("unknown format %q (expected json, pretty or markdown)", s)
	}
}

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatPretty:
		return "pretty"
	case FormatMarkdown:
		return "markdown"
	default:
		return "unknown"
	}
}
