// Package highlight provides JSON syntax highlighting for metadata display.
package highlight

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
)

var (
	mu    sync.RWMutex
	style = "vigil"
)

// SetStyle selects the chroma style used by JSON, typically from the
// configured UI theme.
func SetStyle(name string) {
	mu.Lock()
	defer mu.Unlock()
	if name != "" {
		style = name
	}
}

// JSON pretty-prints and highlights a JSON document for terminal display.
// Returns the input unchanged when it does not parse or highlighting fails.
func JSON(raw string) string {
	if raw == "" {
		return ""
	}
	pretty := Indent(raw)

	mu.RLock()
	name := style
	mu.RUnlock()

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, pretty, "json", "terminal256", name); err != nil {
		return pretty
	}
	return buf.String()
}

// Indent re-indents a JSON document, returning the input unchanged when it
// does not parse.
func Indent(raw string) string {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return raw
	}
	out, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return raw
	}
	return string(out)
}
