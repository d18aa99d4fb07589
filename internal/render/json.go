package render

import (
	"encoding/json"
	"io"

	"typewatch/internal/checker"
	"typewatch/internal/watch"
)

// WriteJSON emits the stable machine-readable shape, one object, with
// a trailing newline.
func WriteJSON(w io.Writer, res *checker.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteWatchEvent emits one check-cycle event as a single JSON line.
// Watch mode is a stream; consumers parse it line by line, so events
// are never indented.
func WriteWatchEvent(w io.Writer, ev watch.Event) error {
	return json.NewEncoder(w).Encode(ev)
}
