package services

import (
	"context"
	"testing"

	"trustify/internal/config"
	"trustify/internal/repository"
	"trustify/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSettingService(t *testing.T) (*SettingService, *repository.SettingRepository) {
	t.Helper()
	db, err := utils.InitDatabase(config.DatabaseConfig{DSN: ":memory:"}, "")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	repo := repository.NewSettingRepository(db)
	return NewSettingService(context.Background(), repo), repo
}

func TestSeededSettings(t *testing.T) {
	s, _ := newTestSettingService(t)

	assert.Equal(t, "admin", s.GetSetting("password"))
	assert.Equal(t, "My Site", s.GetSetting("site_title"))
	assert.Empty(t, s.GetSetting("missing"))
}

func TestUpdateSettingsRefreshesCache(t *testing.T) {
	s, repo := newTestSettingService(t)
	ctx := context.Background()

	require.NoError(t, s.UpdateSettings(ctx, map[string]string{"site_title": "Shop", "new_key": "v"}))
	assert.Equal(t, "Shop", s.GetSetting("site_title"))
	assert.Equal(t, "v", s.GetSetting("new_key"))

	stored, err := repo.GetSettingByKey(ctx, "site_title")
	require.NoError(t, err)
	assert.Equal(t, "Shop", stored.Value)

	all := s.GetAllSettings()
	all["site_title"] = "changed outside"
	assert.Equal(t, "Shop", s.GetSetting("site_title"))
}

func TestGetOptionMissingIsEmpty(t *testing.T) {
	s, _ := newTestSettingService(t)

	values, err := s.GetOption(context.Background(), "trustify_options")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestOptionRoundTrip(t *testing.T) {
	s, repo := newTestSettingService(t)
	ctx := context.Background()

	in := map[string]string{"trustify_slug": "my-profile", "trustify_bar_enabled": "1", "odd.key": "x"}
	require.NoError(t, s.UpdateOption(ctx, "trustify_options", in))

	stored, err := repo.GetSettingByKey(ctx, "trustify_options")
	require.NoError(t, err)
	assert.JSONEq(t, `{"odd.key":"x","trustify_bar_enabled":"1","trustify_slug":"my-profile"}`, stored.Value)

	out, err := s.GetOption(ctx, "trustify_options")
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// Saving replaces the whole record.
	require.NoError(t, s.UpdateOption(ctx, "trustify_options", map[string]string{"trustify_slug": "other"}))
	out, err = s.GetOption(ctx, "trustify_options")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"trustify_slug": "other"}, out)
}

func TestGetOptionIgnoresMalformedValues(t *testing.T) {
	s, _ := newTestSettingService(t)
	ctx := context.Background()

	for _, raw := range []string{"not json", `["a"]`, `"str"`} {
		require.NoError(t, s.UpdateSettings(ctx, map[string]string{"opt": raw}))
		values, err := s.GetOption(ctx, "opt")
		require.NoError(t, err)
		assert.Empty(t, values, "raw %q", raw)
	}
}

func TestOptionScalarsReadAsStrings(t *testing.T) {
	s, _ := newTestSettingService(t)
	ctx := context.Background()

	require.NoError(t, s.UpdateSettings(ctx, map[string]string{"opt": `{"n":1,"b":true,"s":"x"}`}))
	values, err := s.GetOption(ctx, "opt")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"n": "1", "b": "true", "s": "x"}, values)
}
