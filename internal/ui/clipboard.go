package ui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ClipboardWriter copies text to the system clipboard through the
// platform's native tool, degrading gracefully when none is installed.
type ClipboardWriter struct {
	command []string
	errMsg  string
}

// NewClipboardWriter probes for a usable clipboard tool.
func NewClipboardWriter() *ClipboardWriter {
	cw := &ClipboardWriter{}
	switch runtime.GOOS {
	case "darwin":
		if _, err := exec.LookPath("pbcopy"); err == nil {
			cw.command = []string{"pbcopy"}
		} else {
			cw.errMsg = "pbcopy not found"
		}
	case "linux":
		for _, tool := range []string{"wl-copy", "xclip", "xsel"} {
			if _, err := exec.LookPath(tool); err == nil {
				if tool == "xclip" {
					cw.command = []string{"xclip", "-selection", "clipboard"}
				} else {
					cw.command = []string{tool}
				}
				break
			}
		}
		if cw.command == nil {
			cw.errMsg = "clipboard tool not found (install wl-copy, xclip, or xsel)"
		}
	case "windows":
		if _, err := exec.LookPath("clip"); err == nil {
			cw.command = []string{"clip"}
		} else {
			cw.errMsg = "clip.exe not found"
		}
	default:
		cw.errMsg = "clipboard not supported on " + runtime.GOOS
	}
	return cw
}

// Available reports whether a clipboard tool was found.
func (cw *ClipboardWriter) Available() bool {
	return cw.command != nil
}

// Write copies text to the clipboard.
func (cw *ClipboardWriter) Write(text string) error {
	if cw.command == nil {
		return fmt.Errorf("clipboard unavailable: %s", cw.errMsg)
	}
	cmd := exec.Command(cw.command[0], cw.command[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("clipboard write failed: %w", err)
	}
	return nil
}
