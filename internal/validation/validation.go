package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julianstephens/streaklit/internal/constants"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/utils"
)

const (
	maxNameLen        = 64
	maxDescriptionLen = 500
	maxTargetMinutes  = 24 * 60
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var (
	ErrEmptyName       = errors.New("habit name cannot be empty")
	ErrNameTooLong     = fmt.Errorf("habit name cannot exceed %d characters", maxNameLen)
	ErrDescTooLong     = fmt.Errorf("description cannot exceed %d characters", maxDescriptionLen)
	ErrInvalidColor    = errors.New("color must be a hex value like #3b82f6")
	ErrInvalidTarget   = fmt.Errorf("target minutes must be between 1 and %d", maxTargetMinutes)
	ErrInvalidDay      = errors.New("day must be in YYYY-MM-DD format")
	ErrFutureDay       = errors.New("cannot record progress for a future day")
	ErrMessageTooLong  = fmt.Errorf("share message cannot exceed %d characters", constants.ShareMessageMaxLen)
	ErrInvalidWindow   = errors.New("window out of range")
	ErrInvalidTimezone = errors.New("invalid timezone")
)

func ValidateHabitName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return ErrNameTooLong
	}
	return nil
}

func ValidateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > maxDescriptionLen {
		return ErrDescTooLong
	}
	return nil
}

func ValidateColor(color string) error {
	if !colorPattern.MatchString(color) {
		return ErrInvalidColor
	}
	return nil
}

func ValidateTargetMinutes(minutes int) error {
	if minutes < 1 || minutes > maxTargetMinutes {
		return ErrInvalidTarget
	}
	return nil
}

// ValidateDay checks that day is a real calendar key no later than today in
// now's location.
func ValidateDay(day string, now time.Time) error {
	if !utils.ValidateDayKey(day) {
		return ErrInvalidDay
	}
	if day > utils.DayKey(now) {
		return ErrFutureDay
	}
	return nil
}

func ValidateShareMessage(msg string) error {
	if utf8.RuneCountInString(msg) > constants.ShareMessageMaxLen {
		return ErrMessageTooLong
	}
	return nil
}

// ValidateWindow checks that a weeks or months count lies in [1, max].
func ValidateWindow(n, max int) error {
	if n < 1 || n > max {
		return fmt.Errorf("%w: %d is not between 1 and %d", ErrInvalidWindow, n, max)
	}
	return nil
}

func ValidateTimezoneName(tz string) error {
	if !utils.ValidateTimezone(tz) {
		return fmt.Errorf("%w: %q", ErrInvalidTimezone, tz)
	}
	return nil
}

// ProblemType classifies a problem found in stored habits.
type ProblemType string

const (
	ProblemDuplicateName ProblemType = "duplicate_name"
	ProblemInvalidName   ProblemType = "invalid_name"
	ProblemInvalidColor  ProblemType = "invalid_color"
	ProblemInvalidTarget ProblemType = "invalid_target"
	ProblemInvalidDay    ProblemType = "invalid_day"
	ProblemFutureDay     ProblemType = "future_day"
	ProblemBeforeCreated ProblemType = "before_created"
)

// Problem is one issue found by Validator.
type Problem struct {
	Type        ProblemType
	Description string
	HabitIDs    []string
	Day         string
}

// Result holds every problem found in one pass.
type Result struct {
	Problems []Problem
}

func (r *Result) HasProblems() bool {
	return len(r.Problems) > 0
}

// FormatReport returns a human-readable report of all problems.
func (r *Result) FormatReport() string {
	if !r.HasProblems() {
		return "No problems detected."
	}

	var b strings.Builder
	b.WriteString("Problems detected:\n")
	for _, p := range r.Problems {
		fmt.Fprintf(&b, "- %s\n", p.Description)
	}
	return b.String()
}

// Validator checks stored habits for data the analytics would silently skip.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateHabits inspects habits as of now. Completions dated before a
// habit's creation are reported because every window ignores them.
func (v *Validator) ValidateHabits(habits []models.Habit, now time.Time) Result {
	result := Result{Problems: []Problem{}}
	today := utils.DayKey(now)

	byName := make(map[string][]string)
	var names []string
	for _, h := range habits {
		key := strings.ToLower(strings.TrimSpace(h.Name))
		if _, seen := byName[key]; !seen {
			names = append(names, key)
		}
		byName[key] = append(byName[key], h.ID)
	}
	for _, name := range names {
		if ids := byName[name]; len(ids) > 1 && name != "" {
			result.Problems = append(result.Problems, Problem{
				Type:        ProblemDuplicateName,
				Description: fmt.Sprintf("Duplicate habit name %q (IDs: %v)", name, ids),
				HabitIDs:    ids,
			})
		}
	}

	for _, h := range habits {
		ids := []string{h.ID}
		if err := ValidateHabitName(h.Name); err != nil {
			result.Problems = append(result.Problems, Problem{
				Type:        ProblemInvalidName,
				Description: fmt.Sprintf("Habit %s: %v", h.ID, err),
				HabitIDs:    ids,
			})
		}
		if err := ValidateColor(h.Color); err != nil {
			result.Problems = append(result.Problems, Problem{
				Type:        ProblemInvalidColor,
				Description: fmt.Sprintf("Habit %q has invalid color %q", h.Name, h.Color),
				HabitIDs:    ids,
			})
		}
		if h.Timed != nil && h.Timed.TargetMinutes != 0 {
			if err := ValidateTargetMinutes(h.Timed.TargetMinutes); err != nil {
				result.Problems = append(result.Problems, Problem{
					Type:        ProblemInvalidTarget,
					Description: fmt.Sprintf("Habit %q: %v", h.Name, err),
					HabitIDs:    ids,
				})
			}
		}

		created := utils.DayKey(h.CreatedAt.In(now.Location()))
		days := make([]string, 0, len(h.Completions))
		for day, done := range h.Completions {
			if done {
				days = append(days, day)
			}
		}
		sort.Strings(days)
		for _, day := range days {
			switch {
			case !utils.ValidateDayKey(day):
				result.Problems = append(result.Problems, Problem{
					Type:        ProblemInvalidDay,
					Description: fmt.Sprintf("Habit %q has a completion with an invalid date %q", h.Name, day),
					HabitIDs:    ids,
					Day:         day,
				})
			case day > today:
				result.Problems = append(result.Problems, Problem{
					Type:        ProblemFutureDay,
					Description: fmt.Sprintf("Habit %q has a completion in the future (%s)", h.Name, day),
					HabitIDs:    ids,
					Day:         day,
				})
			case day < created:
				result.Problems = append(result.Problems, Problem{
					Type:        ProblemBeforeCreated,
					Description: fmt.Sprintf("Habit %q has a completion on %s, before it was created (%s)", h.Name, day, created),
					HabitIDs:    ids,
					Day:         day,
				})
			}
		}
	}

	return result
}
