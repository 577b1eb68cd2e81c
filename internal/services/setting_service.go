package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"trustify/internal/repository"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// SettingService caches the settings table and serves it as the host's
// options store. Options are settings rows holding a JSON object of strings.
type SettingService struct {
	repo         *repository.SettingRepository
	settings     map[string]string
	settingsLock sync.RWMutex
}

func NewSettingService(ctx context.Context, repo *repository.SettingRepository) *SettingService {
	s := &SettingService{
		repo:     repo,
		settings: make(map[string]string),
	}
	s.loadSettings(ctx)
	return s
}

func (s *SettingService) loadSettings(ctx context.Context) {
	settings, err := s.repo.GetAllSettings(ctx)
	if err != nil {
		slog.Error("Failed to load settings", "error", err)
		return
	}

	s.settingsLock.Lock()
	s.settings = settings
	s.settingsLock.Unlock()
}

// GetAllSettings retrieves all settings as a map from the cache.
func (s *SettingService) GetAllSettings() map[string]string {
	s.settingsLock.RLock()
	defer s.settingsLock.RUnlock()

	// Return a copy to prevent modification of the cache from outside.
	settingsCopy := make(map[string]string, len(s.settings))
	for key, value := range s.settings {
		settingsCopy[key] = value
	}
	return settingsCopy
}

// GetSetting retrieves a single setting value by its key from the cache.
func (s *SettingService) GetSetting(key string) string {
	s.settingsLock.RLock()
	defer s.settingsLock.RUnlock()
	return s.settings[key]
}

// UpdateSettings updates multiple settings at once and refreshes the cache.
func (s *SettingService) UpdateSettings(ctx context.Context, settings map[string]string) error {
	if err := s.repo.UpdateSettings(ctx, settings); err != nil {
		return err
	}
	// Reload settings into cache after update
	s.loadSettings(ctx)
	return nil
}

// GetOption decodes the named option. A missing or non-object value is an
// empty option.
func (s *SettingService) GetOption(_ context.Context, name string) (map[string]string, error) {
	raw := s.GetSetting(name)
	values := make(map[string]string)
	if raw == "" {
		return values, nil
	}
	if !gjson.Valid(raw) {
		slog.Warn("Option holds invalid JSON, ignoring", "option", name)
		return values, nil
	}

	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		return values, nil
	}
	parsed.ForEach(func(key, value gjson.Result) bool {
		values[key.String()] = value.String()
		return true
	})
	return values, nil
}

// UpdateOption replaces the named option with values.
func (s *SettingService) UpdateOption(ctx context.Context, name string, values map[string]string) error {
	raw, err := encodeOption(values)
	if err != nil {
		return fmt.Errorf("failed to encode option %s: %w", name, err)
	}
	return s.UpdateSettings(ctx, map[string]string{name: raw})
}

func encodeOption(values map[string]string) (string, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	raw := "{}"
	for _, k := range keys {
		var err error
		raw, err = sjson.Set(raw, escapePath(k), values[k])
		if err != nil {
			return "", err
		}
	}
	return raw, nil
}

var pathEscaper = strings.NewReplacer(`\`, `\\`, ".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`, ":", `\:`)

// escapePath quotes the characters that have a meaning in gjson/sjson paths.
func escapePath(key string) string {
	return pathEscaper.Replace(key)
}
