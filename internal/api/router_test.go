package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/streaklit/internal/api"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/share"
	"github.com/julianstephens/streaklit/internal/storage/sqlite"
)

var now = time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)

type apiErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type shareEnvelope struct {
	Share models.SharedAchievement `json:"share"`
}

type testEnv struct {
	engine *gin.Engine
	store  *sqlite.Store
}

func setupTestEngine(t *testing.T, withShares bool) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "streaklit.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("failed to load settings: %v", err)
	}
	settings.Timezone = "UTC"
	settings.WeeksBack = 4
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	read := models.NewHabit("read", "Read", "", "#3b82f6", time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC), false, 0)
	write := models.NewHabit("write", "Write", "", "#10b981", time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC), false, 0)
	for _, day := range []string{"2025-03-03", "2025-03-04", "2025-03-10", "2025-03-11", "2025-03-12"} {
		read.Completions[day] = true
		write.Completions[day] = true
	}
	old := models.NewHabit("old", "Old", "", "#ef4444", time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), false, 0)
	old.Active = false
	old.Completions["2025-03-05"] = true
	for _, h := range []models.Habit{read, write, old} {
		if err := store.AddHabit(h); err != nil {
			t.Fatalf("failed to add habit: %v", err)
		}
	}

	var shares *share.Service
	if withShares {
		shares = share.NewService(share.NewSQLiteRepository(store.GetDB()), share.WithClock(func() time.Time { return now }))
	}
	handler := api.NewHandler(store, shares, func() time.Time { return now })
	return testEnv{engine: api.NewRouter(handler, []string{"http://localhost:5173"}), store: store}
}

func request(t *testing.T, engine *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("unmarshal response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	env := setupTestEngine(t, true)
	rec := request(t, env.engine, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := setupTestEngine(t, true)
	rec := request(t, env.engine, http.MethodGet, "/health", nil, map[string]string{"X-Request-ID": "abc-123"})
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected echoed request id, got %q", got)
	}
}

func TestListHabits(t *testing.T) {
	env := setupTestEngine(t, true)

	rec := request(t, env.engine, http.MethodGet, "/api/habits", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode[struct {
		Habits []struct {
			ID             string `json:"id"`
			CompletedToday bool   `json:"completed_today"`
		} `json:"habits"`
		Overview models.Overview `json:"overview"`
		Today    string          `json:"today"`
	}](t, rec)

	if len(body.Habits) != 2 || body.Habits[0].ID != "read" || body.Habits[1].ID != "write" {
		t.Errorf("unexpected habits: %+v", body.Habits)
	}
	if !body.Habits[0].CompletedToday {
		t.Error("expected read to be completed today")
	}
	if body.Overview.TotalHabits != 2 || body.Overview.CompletedToday != 2 {
		t.Errorf("unexpected overview: %+v", body.Overview)
	}
	if body.Today != "2025-03-12" {
		t.Errorf("expected today 2025-03-12, got %s", body.Today)
	}

	rec = request(t, env.engine, http.MethodGet, "/api/habits?all=true", nil, nil)
	all := decode[struct {
		Habits []struct{ ID string } `json:"habits"`
	}](t, rec)
	if len(all.Habits) != 3 {
		t.Errorf("expected 3 habits with all=true, got %d", len(all.Habits))
	}
}

func TestHabitStats(t *testing.T) {
	env := setupTestEngine(t, true)

	rec := request(t, env.engine, http.MethodGet, "/api/habits/read/stats", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode[struct {
		Stats models.HabitStats `json:"stats"`
		Tier  string            `json:"tier"`
	}](t, rec)
	want := models.HabitStats{CurrentStreak: 3, LongestStreak: 3, TotalCompletions: 5, CompletionRate: 50}
	if body.Stats != want {
		t.Errorf("expected %+v, got %+v", want, body.Stats)
	}
	if body.Tier != "fair" {
		t.Errorf("expected fair tier, got %s", body.Tier)
	}

	rec = request(t, env.engine, http.MethodGet, "/api/habits/missing/stats", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if e := decode[apiErrorEnvelope](t, rec); e.Error.Code != "habit_not_found" {
		t.Errorf("expected habit_not_found, got %s", e.Error.Code)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	env := setupTestEngine(t, true)

	tests := []struct {
		path  string
		key   string
		count int
	}{
		{"/api/analytics/weekly", "trends", 4},
		{"/api/analytics/weekly?weeks=2", "trends", 2},
		{"/api/analytics/monthly?months=3", "trends", 3},
		{"/api/analytics/days", "days", 7},
		{"/api/analytics/correlations", "correlations", 1},
		{"/api/analytics/correlations?all=true", "correlations", 3},
		{"/api/analytics/heatmap?weeks=2", "heatmap", 14},
		{"/api/analytics/heatmap?weeks=520", "heatmap", 520 * 7},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := request(t, env.engine, http.MethodGet, tt.path, nil, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			body := decode[map[string][]json.RawMessage](t, rec)
			if len(body[tt.key]) != tt.count {
				t.Errorf("expected %d %s entries, got %d", tt.count, tt.key, len(body[tt.key]))
			}
		})
	}
}

func TestCorrelationStrength(t *testing.T) {
	env := setupTestEngine(t, true)

	rec := request(t, env.engine, http.MethodGet, "/api/analytics/correlations", nil, nil)
	body := decode[struct {
		Correlations []struct {
			Habit1ID string  `json:"habit1_id"`
			Habit2ID string  `json:"habit2_id"`
			Score    float64 `json:"correlation_score"`
			Strength string  `json:"strength"`
		} `json:"correlations"`
	}](t, rec)
	if len(body.Correlations) != 1 {
		t.Fatalf("expected one pair, got %d", len(body.Correlations))
	}
	c := body.Correlations[0]
	if c.Habit1ID != "read" || c.Habit2ID != "write" {
		t.Errorf("unexpected pair: %+v", c)
	}
	if c.Score <= 0 || c.Strength == "" {
		t.Errorf("expected a positive labelled score, got %+v", c)
	}
}

func TestInvalidWindow(t *testing.T) {
	env := setupTestEngine(t, true)

	tests := []struct {
		path string
		code string
	}{
		{"/api/analytics/weekly?weeks=0", "invalid_weeks"},
		{"/api/analytics/monthly?months=abc", "invalid_months"},
		{"/api/analytics/heatmap?weeks=-1", "invalid_weeks"},
		{"/api/analytics/heatmap?weeks=521", "invalid_weeks"},
		{"/api/analytics/monthly?months=121", "invalid_months"},
		{"/api/analytics/days?weeks=200000", "invalid_weeks"},
		{"/api/analytics/correlations?weeks=9223372036854775807", "invalid_weeks"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := request(t, env.engine, http.MethodGet, tt.path, nil, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if e := decode[apiErrorEnvelope](t, rec); e.Error.Code != tt.code {
				t.Errorf("expected %s, got %s", tt.code, e.Error.Code)
			}
		})
	}
}

func TestShareRoundTrip(t *testing.T) {
	env := setupTestEngine(t, true)

	rec := request(t, env.engine, http.MethodPost, "/api/share", map[string]string{"habitId": "read", "message": "ten days"}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[shareEnvelope](t, rec).Share
	if !share.ValidCode(created.Code) {
		t.Fatalf("invalid share code %q", created.Code)
	}
	if created.CurrentStreak != 3 || created.CompletionRate != 50 {
		t.Errorf("unexpected snapshot: %+v", created)
	}

	rec = request(t, env.engine, http.MethodGet, "/api/share/"+created.Code, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	got := decode[shareEnvelope](t, rec).Share
	if got.HabitName != "Read" || got.Message == nil || *got.Message != "ten days" {
		t.Errorf("unexpected share: %+v", got)
	}
	if !got.ExpiresAt.Equal(created.ExpiresAt) {
		t.Errorf("expiry changed: %v vs %v", got.ExpiresAt, created.ExpiresAt)
	}
}

func TestShareErrors(t *testing.T) {
	env := setupTestEngine(t, true)

	rec := request(t, env.engine, http.MethodGet, "/api/share/ZZZZZZZZ", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if e := decode[apiErrorEnvelope](t, rec); e.Error.Code != "share_not_found" {
		t.Errorf("expected share_not_found, got %s", e.Error.Code)
	}

	rec = request(t, env.engine, http.MethodPost, "/api/share", map[string]string{"message": "no id"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without habitId, got %d", rec.Code)
	}

	rec = request(t, env.engine, http.MethodPost, "/api/share", map[string]string{"habitId": "missing"}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown habit, got %d", rec.Code)
	}
}

func TestShareExpired(t *testing.T) {
	env := setupTestEngine(t, true)

	msg := "old news"
	expired := models.SharedAchievement{
		Code:       "abcdefgh",
		HabitName:  "Read",
		HabitColor: "#3b82f6",
		Message:    &msg,
		CreatedAt:  now.Add(-31 * 24 * time.Hour),
		ExpiresAt:  now.Add(-24 * time.Hour),
	}
	if err := share.NewSQLiteRepository(env.store.GetDB()).Insert(t.Context(), expired); err != nil {
		t.Fatalf("failed to seed share: %v", err)
	}

	rec := request(t, env.engine, http.MethodGet, "/api/share/abcdefgh", nil, nil)
	if rec.Code != http.StatusGone {
		t.Fatalf("expected 410, got %d", rec.Code)
	}
	if e := decode[apiErrorEnvelope](t, rec); e.Error.Code != "share_expired" {
		t.Errorf("expected share_expired, got %s", e.Error.Code)
	}
}

func TestShareUnavailable(t *testing.T) {
	env := setupTestEngine(t, false)

	rec := request(t, env.engine, http.MethodGet, "/api/share/abcdefgh", nil, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if e := decode[apiErrorEnvelope](t, rec); e.Error.Code != "share_unavailable" {
		t.Errorf("expected share_unavailable, got %s", e.Error.Code)
	}
}

func TestCORS(t *testing.T) {
	env := setupTestEngine(t, true)

	rec := request(t, env.engine, http.MethodGet, "/api/habits", nil, map[string]string{"Origin": "http://localhost:5173"})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("expected allowed origin header, got %q", got)
	}

	rec = request(t, env.engine, http.MethodGet, "/api/habits", nil, map[string]string{"Origin": "http://evil.example"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for a foreign origin, got %d", rec.Code)
	}
}

func TestNoRoute(t *testing.T) {
	env := setupTestEngine(t, true)
	rec := request(t, env.engine, http.MethodGet, "/api/nope", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if e := decode[apiErrorEnvelope](t, rec); e.Error.Code != "not_found" {
		t.Errorf("expected not_found, got %s", e.Error.Code)
	}
}
