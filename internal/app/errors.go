package app

import (
	"fmt"
	"strings"
)

// FormatConnectionError formats a startup connection failure with
// actionable guidance. Used on the CLI paths, where there is room for
// multi-line help; inside the TUI the status bar shows the short form.
func FormatConnectionError(err error, baseURL string) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "connection refused") {
		return fmt.Sprintf(
			"Connection refused: the alert service is not accepting connections.\n\n"+
				"Troubleshooting steps:\n"+
				"  1. Verify the service is running and reachable at %s\n"+
				"  2. Check server.base_url in ~/.config/vigil/config.yaml\n"+
				"  3. Verify firewall settings allow the connection\n"+
				"\nOriginal error: %s", baseURL, errMsg)
	}

	if strings.Contains(errMsg, "no such host") {
		return fmt.Sprintf(
			"Unknown host: the configured service address does not resolve.\n\n"+
				"Troubleshooting steps:\n"+
				"  1. Check server.base_url in ~/.config/vigil/config.yaml (currently %s)\n"+
				"  2. Verify DNS, or use an IP address\n"+
				"\nOriginal error: %s", baseURL, errMsg)
	}

	if strings.Contains(errMsg, "context deadline exceeded") ||
		strings.Contains(errMsg, "Client.Timeout exceeded") {
		return fmt.Sprintf(
			"Timed out waiting for the alert service.\n\n"+
				"Troubleshooting steps:\n"+
				"  1. Verify the service at %s is healthy\n"+
				"  2. Raise server.timeout in ~/.config/vigil/config.yaml for slow links\n"+
				"\nOriginal error: %s", baseURL, errMsg)
	}

	return errMsg
}
