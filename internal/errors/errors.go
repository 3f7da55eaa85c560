// Package errors formats command failures consistently for the CLI.
package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/streaklit/internal/keyring"
	"github.com/julianstephens/streaklit/internal/logger"
	"github.com/julianstephens/streaklit/internal/share"
	"github.com/julianstephens/streaklit/internal/storage"
)

// hints pairs well-known failures with the next step a user can take.
var hints = []struct {
	target error
	hint   string
}{
	{storage.ErrNotInitialized, "run 'streaklit init' to create your habit database"},
	{storage.ErrNotFound, "run 'streaklit habit list --all' to see every habit"},
	{share.ErrEmbeddedCredentials, "store the password-bearing DSN with 'streaklit keyring set' instead"},
	{share.ErrExpired, "share codes are valid for 30 days; ask for a new one"},
	{share.ErrUnavailable, "check the share database or unset STREAKLIT_SHARE_DSN to share locally"},
	{keyring.ErrKeyringUnavailable, "set STREAKLIT_SHARE_DSN instead of using the OS keyring"},
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint returns a suggestion for a known failure, or "".
func Hint(err error) string {
	if err == nil {
		return ""
	}
	for _, h := range hints {
		if stderrors.Is(err, h.target) {
			return h.hint
		}
	}
	return ""
}

// Describe is Format followed by a hint line when one applies.
func Describe(err error) string {
	msg := Format(err)
	if hint := Hint(err); hint != "" {
		msg += "\nHint: " + hint
	}
	return msg
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Describe(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
