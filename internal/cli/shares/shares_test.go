package shares

import (
	"bytes"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/share"
	"github.com/julianstephens/streaklit/internal/storage"
	"github.com/julianstephens/streaklit/internal/storage/sqlite"
)

var now = time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)

var codePattern = regexp.MustCompile(`Share code: (\S+)`)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()
	t.Setenv(share.EnvShareDSN, "")

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	settings.Timezone = "UTC"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	h := models.NewHabit("read", "Read", "", "#3b82f6", time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC), false, 0)
	for _, day := range []string{"2025-03-03", "2025-03-04", "2025-03-10", "2025-03-11", "2025-03-12"} {
		h.Completions[day] = true
	}
	if err := store.AddHabit(h); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}

	var out bytes.Buffer
	return &cli.Context{Store: store, Out: &out, Clock: func() time.Time { return now }}, &out
}

func TestShareCreateAndGet(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&ShareCreateCmd{Habit: "Read", Message: "ten days"}).Run(ctx); err != nil {
		t.Fatalf("share create failed: %v", err)
	}
	m := codePattern.FindStringSubmatch(out.String())
	if m == nil {
		t.Fatalf("no share code in output:\n%s", out.String())
	}
	code := m[1]
	if !share.ValidCode(code) {
		t.Fatalf("invalid share code %q", code)
	}
	if !strings.Contains(out.String(), "2025-04-11") {
		t.Errorf("expected a 30 day expiry:\n%s", out.String())
	}

	out.Reset()
	if err := (&ShareGetCmd{Code: code}).Run(ctx); err != nil {
		t.Fatalf("share get failed: %v", err)
	}
	for _, want := range []string{"Read", `"ten days"`, "50%"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected output to contain %q:\n%s", want, out.String())
		}
	}
}

func TestShareGetUnknownCode(t *testing.T) {
	ctx, _ := setupTestDB(t)
	err := (&ShareGetCmd{Code: "ZZZZZZZZ"}).Run(ctx)
	if !errors.Is(err, share.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestShareCreateUnknownHabit(t *testing.T) {
	ctx, _ := setupTestDB(t)
	err := (&ShareCreateCmd{Habit: "missing"}).Run(ctx)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSharePurge(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&ShareCreateCmd{Habit: "Read"}).Run(ctx); err != nil {
		t.Fatalf("share create failed: %v", err)
	}

	later := now.Add(31 * 24 * time.Hour)
	ctx.Clock = func() time.Time { return later }
	out.Reset()
	if err := (&SharePurgeCmd{}).Run(ctx); err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted 1 expired shares") {
		t.Errorf("unexpected purge output: %s", out.String())
	}
}
