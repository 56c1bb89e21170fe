//go:build windows

package input

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// readSecureSecret reads the user's secret with prompt from stdin.
func readSecureSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	fmt.Fprintln(os.Stderr)
	return strings.TrimRight(string(secret), "\r\n"), nil
}
