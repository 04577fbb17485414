package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("VAULTCHAT_DATA_DIR", "")
	t.Setenv("VAULTCHAT_ENDPOINT", "")
	t.Setenv("VAULTCHAT_MODEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultReferer, cfg.Referer)
	assert.Equal(t, DefaultTitle, cfg.Title)
	assert.Equal(t, filepath.Join(home, ".local", "share", "vaultchat"), cfg.DataDir())

	assert.FileExists(t, GetSettingsFilePath())
	assert.FileExists(t, GetUserConfigPath(cfg.DataDir()))

	info, err := os.Stat(cfg.DataDir())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestLoadUserConfigAndEnvOverrides(t *testing.T) {
	home := t.TempDir()
	dataDir := filepath.Join(t.TempDir(), "data")
	t.Setenv("HOME", home)
	t.Setenv("VAULTCHAT_DATA_DIR", dataDir)
	t.Setenv("VAULTCHAT_ENDPOINT", "")
	t.Setenv("VAULTCHAT_MODEL", "")

	require.NoError(t, os.MkdirAll(dataDir, 0700))
	userCfg := `[api]
endpoint = "http://localhost:9999/v1"
model = "meta-llama/llama-3-8b-instruct"
`
	require.NoError(t, os.WriteFile(GetUserConfigPath(dataDir), []byte(userCfg), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/v1", cfg.Endpoint)
	assert.Equal(t, "meta-llama/llama-3-8b-instruct", cfg.Model)
	assert.Equal(t, DefaultTitle, cfg.Title, "unset keys keep their defaults")

	t.Setenv("VAULTCHAT_MODEL", "openai/gpt-4o")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "openai/gpt-4o", cfg.Model)
}

func TestLoadRejectsMalformedUserConfig(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VAULTCHAT_DATA_DIR", dataDir)

	require.NoError(t, os.WriteFile(GetUserConfigPath(dataDir), []byte("[api\nmodel = "), 0600))

	_, err := Load()
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, "/home/tester", ExpandPath("~"))
	assert.Equal(t, filepath.Clean("/home/tester/chats"), ExpandPath("~/chats"))
	assert.Equal(t, filepath.Clean("/var/data"), ExpandPath("/var//data/"))
}

func TestEnsureDataDirPermissionsTightens(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "loose")
	require.NoError(t, os.MkdirAll(dir, 0755))

	require.NoError(t, EnsureDataDirPermissions(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}
