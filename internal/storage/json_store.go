package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/streaklit/internal/logger"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/progress"
)

const jsonStoreVersion = 1

// document is the on-disk layout of a JSONStore file.
type document struct {
	Version  int             `json:"version"`
	Settings models.Settings `json:"settings"`
	Habits   []models.Habit  `json:"habits"`
}

// JSONStore keeps everything in a single JSON document. Every mutation
// rewrites the file.
type JSONStore struct {
	path string
	doc  *document
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.doc = &document{
		Version:  jsonStoreVersion,
		Settings: DefaultSettings(),
		Habits:   []models.Habit{},
	}
	return s.save()
}

// Load reads the document. A file that cannot be parsed is copied aside to
// <path>.corrupt, logged, and replaced by an empty habit list.
func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		saved, copyErr := preserveCorrupt(s.path, data)
		if copyErr != nil {
			return fmt.Errorf("stored habits are unreadable and could not be set aside: %w", copyErr)
		}
		logger.Warn("stored habits are unreadable, starting empty", "path", s.path, "saved", saved, "err", err)
		doc = &document{Version: jsonStoreVersion, Settings: DefaultSettings()}
	}
	if doc.Habits == nil {
		doc.Habits = []models.Habit{}
	}
	for i := range doc.Habits {
		if doc.Habits[i].Completions == nil {
			doc.Habits[i].Completions = map[string]bool{}
		}
		if doc.Habits[i].Timed != nil && doc.Habits[i].Timed.Minutes == nil {
			doc.Habits[i].Timed.Minutes = map[string]int{}
		}
	}
	doc.Settings = NormalizeSettings(doc.Settings)
	s.doc = doc
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONStore) loaded() error {
	if s.doc == nil {
		return ErrNotInitialized
	}
	return nil
}

func (s *JSONStore) GetSettings() (models.Settings, error) {
	if err := s.loaded(); err != nil {
		return models.Settings{}, err
	}
	return s.doc.Settings, nil
}

func (s *JSONStore) SaveSettings(settings models.Settings) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.doc.Settings = NormalizeSettings(settings)
	return s.save()
}

func (s *JSONStore) LoadHabits() ([]models.Habit, error) {
	return s.GetAllHabits(true)
}

// SaveHabits replaces the whole habit list, keeping the given order.
func (s *JSONStore) SaveHabits(habits []models.Habit) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.doc.Habits = models.CloneHabits(habits)
	return s.save()
}

func (s *JSONStore) indexOf(id string) int {
	for i, h := range s.doc.Habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}

func (s *JSONStore) nameTaken(name, exceptID string) bool {
	for _, h := range s.doc.Habits {
		if h.ID != exceptID && strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}

func (s *JSONStore) AddHabit(h models.Habit) error {
	if err := s.loaded(); err != nil {
		return err
	}
	if s.indexOf(h.ID) >= 0 {
		return fmt.Errorf("habit %s already exists", h.ID)
	}
	if s.nameTaken(h.Name, h.ID) {
		return ErrDuplicateName
	}
	s.doc.Habits = append(s.doc.Habits, h.Clone())
	return s.save()
}

func (s *JSONStore) GetHabit(id string) (models.Habit, error) {
	if err := s.loaded(); err != nil {
		return models.Habit{}, err
	}
	i := s.indexOf(id)
	if i < 0 {
		return models.Habit{}, ErrNotFound
	}
	return s.doc.Habits[i].Clone(), nil
}

func (s *JSONStore) GetHabitByName(name string) (models.Habit, error) {
	if err := s.loaded(); err != nil {
		return models.Habit{}, err
	}
	for _, h := range s.doc.Habits {
		if strings.EqualFold(h.Name, name) {
			return h.Clone(), nil
		}
	}
	return models.Habit{}, ErrNotFound
}

func (s *JSONStore) GetAllHabits(includeInactive bool) ([]models.Habit, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	habits := make([]models.Habit, 0, len(s.doc.Habits))
	for _, h := range s.doc.Habits {
		if !includeInactive && !h.Active {
			continue
		}
		habits = append(habits, h.Clone())
	}
	return habits, nil
}

func (s *JSONStore) UpdateHabit(h models.Habit) error {
	if err := s.loaded(); err != nil {
		return err
	}
	i := s.indexOf(h.ID)
	if i < 0 {
		return ErrNotFound
	}
	if s.nameTaken(h.Name, h.ID) {
		return ErrDuplicateName
	}
	s.doc.Habits[i] = h.Clone()
	return s.save()
}

func (s *JSONStore) DeleteHabit(id string) error {
	if err := s.loaded(); err != nil {
		return err
	}
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.doc.Habits = append(s.doc.Habits[:i], s.doc.Habits[i+1:]...)
	return s.save()
}

func (s *JSONStore) ApplyUpdate(u progress.Update) error {
	if err := s.loaded(); err != nil {
		return err
	}
	i := s.indexOf(u.HabitID)
	if i < 0 {
		return ErrNotFound
	}
	progress.Apply(&s.doc.Habits[i], u)
	return s.save()
}

var _ Provider = (*JSONStore)(nil)

// preserveCorrupt writes data to the first free <path>.corrupt[.N] file so a
// later save cannot destroy it.
func preserveCorrupt(path string, data []byte) (string, error) {
	for i := 0; i < 100; i++ {
		target := path + ".corrupt"
		if i > 0 {
			target = fmt.Sprintf("%s.corrupt.%d", path, i)
		}
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", err
		}
		return target, f.Close()
	}
	return "", fmt.Errorf("too many corrupt copies of %s", path)
}
