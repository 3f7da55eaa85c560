package errors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/julianstephens/streaklit/internal/share"
	"github.com/julianstephens/streaklit/internal/storage"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, ""},
		{"simple error", errors.New("something went wrong"), "Error: something went wrong"},
		{"wrapped error", fmt.Errorf("loading habits: %w", errors.New("disk full")), "Error: loading habits: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Format(tt.err); result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("habit %q not found", "Read")
	if got != `Error: habit "Read" not found` {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		hint string
	}{
		{"not initialized", storage.ErrNotInitialized, "streaklit init"},
		{"wrapped share outage", fmt.Errorf("%w: dial tcp", share.ErrUnavailable), "STREAKLIT_SHARE_DSN"},
		{"embedded credentials", share.ErrEmbeddedCredentials, "keyring set"},
		{"unknown", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.err)
			if !strings.HasPrefix(got, "Error: ") {
				t.Errorf("Describe() = %q, want Error: prefix", got)
			}
			if tt.hint == "" {
				if strings.Contains(got, "Hint:") {
					t.Errorf("expected no hint, got %q", got)
				}
				return
			}
			if !strings.Contains(got, "\nHint: ") || !strings.Contains(got, tt.hint) {
				t.Errorf("Describe() = %q, want hint containing %q", got, tt.hint)
			}
		})
	}

	if Describe(nil) != "" {
		t.Error("Describe(nil) should be empty")
	}
}

// TestFatal runs Fatal in a helper process because it exits.
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(storage.ErrNotInitialized)
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Fatal() did not exit with error: %v", err)
	}
	if exitErr.ExitCode() != 1 {
		t.Errorf("Fatal() exit code = %d, want 1", exitErr.ExitCode())
	}
	out := stderr.String()
	if !strings.Contains(out, "Error: storage not initialized") || !strings.Contains(out, "Hint: ") {
		t.Errorf("Fatal() stderr = %q", out)
	}
}

func TestFatal_NilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal_NilError")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")
	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) should not exit, but got error: %v", err)
	}
}

func TestFatalf(t *testing.T) {
	if os.Getenv("GO_TEST_FATALF") == "1" {
		Fatalf("connection to %s:%d failed", "localhost", 5432)
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatalf")
	cmd.Env = append(os.Environ(), "GO_TEST_FATALF=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Fatalf() did not exit with error: %v", err)
	}
	if exitErr.ExitCode() != 1 {
		t.Errorf("Fatalf() exit code = %d, want 1", exitErr.ExitCode())
	}
	if !strings.Contains(stderr.String(), "Error: connection to localhost:5432 failed") {
		t.Errorf("Fatalf() stderr = %q", stderr.String())
	}
}
