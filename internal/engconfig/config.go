// Package engconfig loads the engine's TOML configuration file, following
// the same defaults-then-file-then-flags layering and loadConfig/toml.Config
// idiom the headless runner's teacher lineage uses for its own node config.
package engconfig

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/naoina/toml"

	"github.com/embervale/actioncore/fx"
)

// EngineConfig controls the simulation core itself.
type EngineConfig struct {
	// TickRate is the fixed simulation rate in ticks per second (spec.md
	// §4.5's fixed tick duration, expressed the way an operator tunes it).
	TickRate float64
}

// TickDuration converts TickRate into the Fx tick duration the engine runs
// on, as an exact rational rather than a float round-trip.
func (c EngineConfig) TickDuration() fx.Fx {
	return fx.FromRatio(1, int64(c.TickRate))
}

// ResourceConfig points the resource cache at its file-graph root and,
// optionally, a directory to persist compiled scripts to across restarts.
type ResourceConfig struct {
	Root       string
	PersistDir string `toml:",omitempty"`
}

// LogConfig controls internal/logx's default logger.
type LogConfig struct {
	Level string
}

// StreamConfig controls the websocket state-pool bridge.
type StreamConfig struct {
	ListenAddr string
}

// Config is the full on-disk configuration shape for the headless runner and
// the state-stream bridge.
type Config struct {
	Engine    EngineConfig
	Resources ResourceConfig
	Log       LogConfig
	Stream    StreamConfig
}

// Defaults mirrors the teacher's pattern of a package-level Config value
// every command starts from before applying a file or flags on top.
var Defaults = Config{
	Engine:    EngineConfig{TickRate: 30},
	Resources: ResourceConfig{Root: "resources"},
	Log:       LogConfig{Level: "info"},
	Stream:    StreamConfig{ListenAddr: ":8765"},
}

// tomlSettings keeps TOML keys identical to the Go struct field names and
// rejects unknown fields, so a typo in an operator's config file fails fast
// instead of silently keeping a default.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Load decodes file into cfg, leaving any field file doesn't mention at
// whatever value cfg already held (normally Defaults).
func Load(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// Dump renders cfg back to TOML, for an operator-facing "show effective
// config" command.
func Dump(cfg *Config) ([]byte, error) {
	return tomlSettings.Marshal(cfg)
}
