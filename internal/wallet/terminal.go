package wallet

import (
	"os"

	"golang.org/x/term"
)

// readPassword is replaced in tests.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd())) //nolint:gosec // fd fits in int
}
