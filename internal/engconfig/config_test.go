package engconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embervale/actioncore/fx"
)

func TestLoadOverridesOnlyMentionedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	body := "[Engine]\nTickRate = 60\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg := Defaults
	require.NoError(t, Load(path, &cfg))

	assert.Equal(t, 60.0, cfg.Engine.TickRate)
	assert.Equal(t, Defaults.Resources.Root, cfg.Resources.Root)
	assert.Equal(t, Defaults.Log.Level, cfg.Log.Level)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	body := "[Engine]\nBogusField = 1\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg := Defaults
	err := Load(path, &cfg)
	assert.Error(t, err)
}

func TestLoadMissingFileErrors(t *testing.T) {
	cfg := Defaults
	err := Load(filepath.Join(t.TempDir(), "missing.toml"), &cfg)
	assert.Error(t, err)
}

func TestTickDurationIsExactRational(t *testing.T) {
	cfg := EngineConfig{TickRate: 30}
	dur := cfg.TickDuration()
	// 30 ticks per second gives exactly the Fx rational 1/30, with no float
	// conversion in between.
	assert.Equal(t, fx.FromRatio(1, 30), dur)
}

func TestDumpRoundTrips(t *testing.T) {
	out, err := Dump(&Defaults)
	require.NoError(t, err)
	assert.Contains(t, string(out), "TickRate")
}
