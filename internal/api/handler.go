package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/streaklit/internal/analytics"
	"github.com/julianstephens/streaklit/internal/constants"
	"github.com/julianstephens/streaklit/internal/logger"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/share"
	"github.com/julianstephens/streaklit/internal/stats"
	"github.com/julianstephens/streaklit/internal/storage"
	"github.com/julianstephens/streaklit/internal/utils"
	"github.com/julianstephens/streaklit/internal/validation"
)

// Handler serves read-only analytics over the store plus the share
// endpoints. Every request works on its own snapshot of the habits.
type Handler struct {
	// mu serializes store access; the JSON store is not safe for
	// concurrent use.
	mu     sync.Mutex
	store  storage.Provider
	shares *share.Service
	now    func() time.Time
}

// NewHandler builds a handler. shares may be nil, in which case the share
// endpoints answer 503.
func NewHandler(store storage.Provider, shares *share.Service, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{store: store, shares: shares, now: now}
}

type snapshot struct {
	habits   []models.Habit
	settings models.Settings
	now      time.Time
}

func (h *Handler) snapshot(includeInactive bool) (snapshot, *APIError) {
	h.mu.Lock()
	defer h.mu.Unlock()

	settings, err := h.store.GetSettings()
	if err != nil {
		logger.Error("failed to load settings", "error", err)
		return snapshot{}, Internal("failed to load settings")
	}
	habits, err := h.store.GetAllHabits(includeInactive)
	if err != nil {
		logger.Error("failed to load habits", "error", err)
		return snapshot{}, Internal("failed to load habits")
	}

	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		logger.Warn("invalid timezone in settings, using local", "timezone", settings.Timezone)
		loc = time.Local
	}
	return snapshot{habits: habits, settings: settings, now: h.now().In(loc)}, nil
}

// windowQuery reads a window size query parameter in [1, max], falling back to def.
func windowQuery(c *gin.Context, name string, def, max int) (int, *APIError) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || validation.ValidateWindow(n, max) != nil {
		return 0, BadRequest("invalid_"+name, fmt.Sprintf("%s must be an integer between 1 and %d", name, max))
	}
	return n, nil
}

// includeInactive reports whether the request asked for inactive habits too.
func includeInactive(c *gin.Context) bool {
	all, _ := strconv.ParseBool(c.Query("all"))
	return all
}

type habitView struct {
	models.Habit
	IsTimed        bool `json:"is_timed"`
	CompletedToday bool `json:"completed_today"`
}

func (h *Handler) ListHabits(c *gin.Context) {
	snap, apiErr := h.snapshot(includeInactive(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	views := make([]habitView, 0, len(snap.habits))
	for _, habit := range snap.habits {
		views = append(views, habitView{
			Habit:          habit,
			IsTimed:        habit.IsTimed(),
			CompletedToday: stats.IsCompletedToday(habit, snap.now),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"habits":   views,
		"overview": analytics.Summarize(snap.habits, snap.now),
		"today":    utils.DayKey(snap.now),
	})
}

func (h *Handler) HabitStats(c *gin.Context) {
	snap, apiErr := h.snapshot(true)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	id := c.Param("id")
	for _, habit := range snap.habits {
		if habit.ID != id {
			continue
		}
		st := stats.Calculate(habit, snap.now)
		c.JSON(http.StatusOK, gin.H{
			"habit_id":  habit.ID,
			"name":      habit.Name,
			"stats":     st,
			"tier":      stats.RateTier(st.CompletionRate),
			"milestone": stats.Milestone(st.CurrentStreak),
		})
		return
	}
	writeError(c, NotFound("habit_not_found", "habit not found"))
}

func (h *Handler) Overview(c *gin.Context) {
	snap, apiErr := h.snapshot(false)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"overview": analytics.Summarize(snap.habits, snap.now)})
}

func (h *Handler) WeeklyTrends(c *gin.Context) {
	snap, apiErr := h.snapshot(includeInactive(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	weeks, apiErr := windowQuery(c, "weeks", snap.settings.WeeksBack, constants.MaxWeeksBack)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trends": analytics.WeeklyTrends(snap.habits, weeks, snap.now)})
}

func (h *Handler) MonthlyTrends(c *gin.Context) {
	snap, apiErr := h.snapshot(includeInactive(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	months, apiErr := windowQuery(c, "months", snap.settings.MonthsBack, constants.MaxMonthsBack)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trends": analytics.MonthlyTrends(snap.habits, months, snap.now)})
}

func (h *Handler) DayPerformance(c *gin.Context) {
	snap, apiErr := h.snapshot(includeInactive(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	weeks, apiErr := windowQuery(c, "weeks", snap.settings.WeeksBack, constants.MaxWeeksBack)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	days := analytics.DayPerformance(snap.habits, weeks, snap.now)
	c.JSON(http.StatusOK, gin.H{
		"days":  days,
		"best":  firstN(analytics.BestPerformingDays(days), 3),
		"worst": firstN(analytics.WorstPerformingDays(days), 3),
	})
}

type correlationView struct {
	models.HabitCorrelation
	Strength analytics.Strength `json:"strength"`
}

func (h *Handler) Correlations(c *gin.Context) {
	snap, apiErr := h.snapshot(includeInactive(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	weeks, apiErr := windowQuery(c, "weeks", snap.settings.WeeksBack, constants.MaxWeeksBack)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	corrs := analytics.Correlations(snap.habits, weeks, snap.now)
	views := make([]correlationView, len(corrs))
	for i, corr := range corrs {
		views[i] = correlationView{HabitCorrelation: corr, Strength: analytics.ClassifyStrength(corr.CorrelationScore)}
	}
	c.JSON(http.StatusOK, gin.H{"correlations": views})
}

func (h *Handler) Heatmap(c *gin.Context) {
	snap, apiErr := h.snapshot(includeInactive(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	weeks, apiErr := windowQuery(c, "weeks", constants.DefaultHeatmapWeeks, constants.MaxWeeksBack)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"heatmap": analytics.Heatmap(snap.habits, weeks, snap.now)})
}

type createShareRequest struct {
	HabitID string `json:"habitId" binding:"required"`
	Message string `json:"message"`
}

func (h *Handler) CreateShare(c *gin.Context) {
	if h.shares == nil {
		writeError(c, Unavailable("share_unavailable", "sharing is not configured"))
		return
	}

	var req createShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, BadRequest("invalid_json", "habitId is required"))
		return
	}

	snap, apiErr := h.snapshot(true)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	var habit *models.Habit
	for i := range snap.habits {
		if snap.habits[i].ID == req.HabitID {
			habit = &snap.habits[i]
			break
		}
	}
	if habit == nil {
		writeError(c, NotFound("habit_not_found", "habit not found"))
		return
	}

	achievement, err := h.shares.Create(c.Request.Context(), *habit, req.Message, snap.now)
	if err != nil {
		writeError(c, shareError(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"share": achievement})
}

func (h *Handler) GetShare(c *gin.Context) {
	if h.shares == nil {
		writeError(c, Unavailable("share_unavailable", "sharing is not configured"))
		return
	}

	achievement, err := h.shares.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, shareError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"share": achievement})
}

func shareError(err error) *APIError {
	switch {
	case errors.Is(err, share.ErrNotFound):
		return NotFound("share_not_found", "share not found")
	case errors.Is(err, share.ErrExpired):
		return Gone("share_expired", "this share has expired")
	case errors.Is(err, validation.ErrMessageTooLong):
		return BadRequest("invalid_message", err.Error())
	case errors.Is(err, share.ErrUnavailable):
		logger.Error("share storage failure", "error", err)
		return Unavailable("share_unavailable", "share storage is unavailable")
	default:
		logger.Error("share request failed", "error", err)
		return Internal("")
	}
}

func firstN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// normalizeOrigins splits comma-separated origin lists.
func normalizeOrigins(origins []string) []string {
	var out []string
	for _, o := range origins {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
