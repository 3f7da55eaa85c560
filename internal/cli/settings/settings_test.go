package settings

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/share"
	"github.com/julianstephens/streaklit/internal/storage/sqlite"
	"github.com/julianstephens/streaklit/internal/validation"
)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()
	t.Setenv(share.EnvShareDSN, "")

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	var out bytes.Buffer
	return &cli.Context{Store: store, Out: &out}, &out
}

func ptr[T any](v T) *T { return &v }

func TestSettingsShow(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&SettingsShowCmd{}).Run(ctx); err != nil {
		t.Fatalf("settings show failed: %v", err)
	}
	for _, want := range []string{"timezone", "Local", "weeks_back", "12", "Sharing: local database"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected output to contain %q:\n%s", want, out.String())
		}
	}
}

func TestSettingsSet(t *testing.T) {
	ctx, _ := setupTestDB(t)

	cmd := &SettingsSetCmd{
		Timezone:   ptr("America/New_York"),
		WeeksBack:  ptr(8),
		MonthsBack: ptr(3),
		ShareDSN:   ptr("postgres://streaklit@db.example.com/streaklit"),
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings set failed: %v", err)
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	if settings.Timezone != "America/New_York" || settings.WeeksBack != 8 || settings.MonthsBack != 3 {
		t.Errorf("unexpected settings: %+v", settings)
	}
	if settings.ShareDSN != "postgres://streaklit@db.example.com/streaklit" {
		t.Errorf("unexpected share DSN: %q", settings.ShareDSN)
	}

	if err := (&SettingsSetCmd{ShareDSN: ptr("")}).Run(ctx); err != nil {
		t.Fatalf("clearing share DSN failed: %v", err)
	}
	settings, _ = ctx.Store.GetSettings()
	if settings.ShareDSN != "" {
		t.Errorf("expected share DSN to be cleared, got %q", settings.ShareDSN)
	}
}

func TestSettingsSetValidation(t *testing.T) {
	ctx, _ := setupTestDB(t)

	tests := []struct {
		name    string
		cmd     SettingsSetCmd
		wantErr error
	}{
		{"bad timezone", SettingsSetCmd{Timezone: ptr("Mars/Olympus")}, validation.ErrInvalidTimezone},
		{"zero weeks", SettingsSetCmd{WeeksBack: ptr(0)}, validation.ErrInvalidWindow},
		{"negative months", SettingsSetCmd{MonthsBack: ptr(-2)}, validation.ErrInvalidWindow},
		{"weeks over ten years", SettingsSetCmd{WeeksBack: ptr(521)}, validation.ErrInvalidWindow},
		{"months over ten years", SettingsSetCmd{MonthsBack: ptr(121)}, validation.ErrInvalidWindow},
		{"password in dsn", SettingsSetCmd{ShareDSN: ptr("postgres://u:pw@db.example.com/streaklit")}, share.ErrEmbeddedCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Run(ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSettingsSetNothing(t *testing.T) {
	ctx, out := setupTestDB(t)
	if err := (&SettingsSetCmd{}).Run(ctx); err != nil {
		t.Fatalf("settings set failed: %v", err)
	}
	if !strings.Contains(out.String(), "No changes specified.") {
		t.Errorf("unexpected output: %s", out.String())
	}
}
