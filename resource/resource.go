// Package resource implements the engine's resource cache (spec.md §4.6):
// restoring a tree of ResObj definitions from a directory of YAML/JSON
// files, assigning each a stable FastResID in first-seen order, and
// compiling/deduping the scripts those definitions reference so that two
// resources with byte-identical script text share one compiled vm.Program.
package resource

import (
	"fmt"

	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/geom"
	"github.com/embervale/actioncore/ids"
)

// ShapeDef is the file-graph representation of a geom.Shape (spec.md §1
// treats shape geometry as an opaque external collaborator; this is the
// minimal concrete encoding the resource loader restores into one).
type ShapeDef struct {
	Kind        string     `yaml:"kind" json:"kind"` // "sphere" | "box"
	Radius      float64    `yaml:"radius,omitempty" json:"radius,omitempty"`
	HalfExtents [3]float64 `yaml:"half_extents,omitempty" json:"half_extents,omitempty"`
}

// Build restores a concrete geom.Shape from its definition.
func (s ShapeDef) Build() (geom.Shape, error) {
	switch s.Kind {
	case "sphere":
		return geom.Sphere{Radius: fx.FromFloat64(s.Radius)}, nil
	case "box":
		return geom.Box{HalfExtents: fx.V3(
			fx.FromFloat64(s.HalfExtents[0]),
			fx.FromFloat64(s.HalfExtents[1]),
			fx.FromFloat64(s.HalfExtents[2]),
		)}, nil
	default:
		return nil, fmt.Errorf("resource: unknown shape kind %q", s.Kind)
	}
}

// hashKey is a stable cache key for a ShapeDef, used to dedup structurally
// identical shapes restored from different files.
func (s ShapeDef) hashKey() string {
	return fmt.Sprintf("%s|%g|%g,%g,%g", s.Kind, s.Radius, s.HalfExtents[0], s.HalfExtents[1], s.HalfExtents[2])
}

// SkillDef is the file-graph representation of a skill resource: its
// collision shape and the scripts that run on its lifecycle/collide hooks
// (spec.md §4.6, §4.8).
type SkillDef struct {
	Shape     *ShapeDef `yaml:"shape,omitempty" json:"shape,omitempty"`
	OnHit     string    `yaml:"on_hit,omitempty" json:"on_hit,omitempty"`
	OnTick    string    `yaml:"on_tick,omitempty" json:"on_tick,omitempty"`
}

// StageDef is the file-graph representation of stage geometry.
type StageDef struct {
	Shape ShapeDef `yaml:"shape" json:"shape"`
}

// CommandDef is a standalone script resource run directly by
// CmdRunResCommand rather than bound to a skill (spec.md §4.7).
type CommandDef struct {
	Script string `yaml:"script" json:"script"`
}

// ResObj is one resource tree node restored from a file, tagged with its
// ResID/FastResID and exactly one of the definition kinds it carries.
type ResObj struct {
	ResID     ids.ResID
	FastResID ids.FastResID
	Name      string

	Stage   *StageDef
	Skill   *SkillDef
	Command *CommandDef
}
