package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDir(t *testing.T) {
	t.Setenv(ConfigDirEnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", "")

	configDir, err := GetConfigDir()
	require.NoError(t, err)
	assert.Contains(t, configDir, "fwscope")

	switch runtime.GOOS {
	case "windows":
		assert.Contains(t, configDir, "Local")
	case "darwin", "linux":
		assert.Contains(t, configDir, ".config")
	}
}

func TestGetConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(ConfigDirEnvVar, dir)

	configDir, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, dir, configDir)

	configPath, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), configPath)
}

func TestGetConfigDirXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME is only honoured on Linux")
	}
	t.Setenv(ConfigDirEnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	configDir, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/fwscope", configDir)
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	assert.Equal(t, 1, reg.Version)
	assert.NotNil(t, reg.Recent)
	require.NotNil(t, reg.Preferences)
	assert.Equal(t, "discard", reg.Preferences.SkippedDwarfPolicy)
	assert.Equal(t, DefaultMaxRecent, reg.Preferences.MaxRecent)
	assert.Empty(t, reg.Preferences.DefaultTarget)
}

func TestTouchRecent(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.TouchRecent("/work/app.elf", "STM32F407VGTx")
	after := time.Now()

	entry := reg.GetRecent("/work/app.elf")
	require.NotNil(t, entry)
	assert.Equal(t, "STM32F407VGTx", entry.Target)
	assert.False(t, entry.LastOpened.Before(before))
	assert.False(t, entry.LastOpened.After(after))

	// An empty target keeps the remembered one.
	reg.TouchRecent("/work/app.elf", "")
	assert.Equal(t, "STM32F407VGTx", reg.GetRecent("/work/app.elf").Target)

	reg.TouchRecent("/work/app.elf", "nRF52840_xxAA")
	assert.Equal(t, "nRF52840_xxAA", reg.GetRecent("/work/app.elf").Target)

	assert.Nil(t, reg.GetRecent("/work/other.elf"))
}

func TestTouchRecentNilMap(t *testing.T) {
	reg := &Registry{Version: 1}
	reg.TouchRecent("/work/app.elf", "")
	assert.NotNil(t, reg.GetRecent("/work/app.elf"))
}

func TestTargetFor(t *testing.T) {
	reg := NewRegistry()
	assert.Empty(t, reg.TargetFor("/work/app.elf"))

	reg.Preferences.DefaultTarget = "nRF52840_xxAA"
	assert.Equal(t, "nRF52840_xxAA", reg.TargetFor("/work/app.elf"))

	reg.TouchRecent("/work/app.elf", "STM32F407VGTx")
	assert.Equal(t, "STM32F407VGTx", reg.TargetFor("/work/app.elf"))
	assert.Equal(t, "nRF52840_xxAA", reg.TargetFor("/work/other.elf"))

	reg.Preferences = nil
	assert.Empty(t, reg.TargetFor("/work/other.elf"))
}

func TestRecentPathsAndPrune(t *testing.T) {
	reg := NewRegistry()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reg.Recent["/a.elf"] = &RecentFile{LastOpened: base}
	reg.Recent["/b.elf"] = &RecentFile{LastOpened: base.Add(2 * time.Hour)}
	reg.Recent["/c.elf"] = &RecentFile{LastOpened: base.Add(time.Hour)}
	reg.Recent["/d.elf"] = &RecentFile{LastOpened: base.Add(time.Hour)}

	assert.Equal(t, []string{"/b.elf", "/c.elf", "/d.elf", "/a.elf"}, reg.RecentPaths())

	reg.PruneRecent(0)
	assert.Len(t, reg.Recent, 4)

	reg.PruneRecent(2)
	assert.Equal(t, []string{"/b.elf", "/c.elf"}, reg.RecentPaths())
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	t.Setenv(ConfigDirEnvVar, dir)

	reg := NewRegistry()
	reg.Preferences.DefaultTarget = "STM32F407VGTx"
	reg.Preferences.TargetFiles = []string{"/etc/fwscope/boards.yaml"}
	reg.Preferences.LogLevel = "debug"
	reg.Preferences.MaxTreeDepth = 3
	reg.TouchRecent("/work/app.elf", "nRF52840_xxAA")
	require.NoError(t, reg.Save())

	configPath := filepath.Join(dir, "config.yaml")
	info, err := os.Stat(configPath)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
	_, err = os.Stat(configPath + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# fwscope configuration file")

	loaded, err := loadRegistryFromDisk()
	require.NoError(t, err)
	assert.Equal(t, "STM32F407VGTx", loaded.Preferences.DefaultTarget)
	assert.Equal(t, []string{"/etc/fwscope/boards.yaml"}, loaded.Preferences.TargetFiles)
	assert.Equal(t, "debug", loaded.Preferences.LogLevel)
	assert.Equal(t, 3, loaded.Preferences.MaxTreeDepth)
	require.NotNil(t, loaded.GetRecent("/work/app.elf"))
	assert.Equal(t, "nRF52840_xxAA", loaded.GetRecent("/work/app.elf").Target)
}

func TestSavePrunesRecent(t *testing.T) {
	t.Setenv(ConfigDirEnvVar, t.TempDir())

	reg := NewRegistry()
	reg.Preferences.MaxRecent = 1
	reg.Recent["/old.elf"] = &RecentFile{LastOpened: time.Now().Add(-time.Hour)}
	reg.TouchRecent("/new.elf", "")
	require.NoError(t, reg.Save())

	loaded, err := loadRegistryFromDisk()
	require.NoError(t, err)
	assert.Equal(t, []string{"/new.elf"}, loaded.RecentPaths())
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(ConfigDirEnvVar, t.TempDir())

	reg, err := loadRegistryFromDisk()
	require.NoError(t, err)
	assert.Equal(t, NewRegistry(), reg)
}

func TestParseRegistry(t *testing.T) {
	t.Run("defaults for missing sections", func(t *testing.T) {
		reg, err := parseRegistry([]byte("version: 1\n"))
		require.NoError(t, err)
		assert.NotNil(t, reg.Recent)
		assert.Equal(t, defaultPreferences(), reg.Preferences)
	})

	t.Run("unsupported version", func(t *testing.T) {
		_, err := parseRegistry([]byte("version: 2\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported config version")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := parseRegistry([]byte("version: [1\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestReloadRegistry(t *testing.T) {
	t.Setenv(ConfigDirEnvVar, t.TempDir())

	reg, err := ReloadRegistry()
	require.NoError(t, err)
	reg.Preferences.DefaultTarget = "STM32F407VGTx"
	require.NoError(t, reg.Save())

	same, err := LoadRegistry()
	require.NoError(t, err)
	assert.Same(t, reg, same)

	reloaded, err := ReloadRegistry()
	require.NoError(t, err)
	assert.NotSame(t, reg, reloaded)
	assert.Equal(t, "STM32F407VGTx", reloaded.Preferences.DefaultTarget)
}
