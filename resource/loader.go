package resource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/embervale/actioncore/ids"
)

// doc is the on-disk shape of one resource file: exactly one of its kind
// fields is set, mirroring ResObj's exactly-one-definition contract.
type doc struct {
	ID      string      `yaml:"id" json:"id"`
	Stage   *StageDef   `yaml:"stage,omitempty" json:"stage,omitempty"`
	Skill   *SkillDef   `yaml:"skill,omitempty" json:"skill,omitempty"`
	Command *CommandDef `yaml:"command,omitempty" json:"command,omitempty"`
}

// Load walks root recursively, restoring one ResObj per .yaml/.yml/.json
// file found and registering it into a fresh Cache (spec.md §4.6 "a tree
// of ResObj restored from a file graph"). A resource's ResID is its id
// field if set, otherwise its file name with extension stripped.
func Load(root string) (*Cache, error) {
	cache := NewCache()
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("resource: reading %s: %w", path, err)
		}

		var d2 doc
		if ext == ".json" {
			err = json.Unmarshal(data, &d2)
		} else {
			err = yaml.Unmarshal(data, &d2)
		}
		if err != nil {
			return fmt.Errorf("resource: parsing %s: %w", path, err)
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		resID := ids.ResID(d2.ID)
		if !resID.Valid() {
			resID = ids.ResID(name)
		}

		cache.Put(&ResObj{
			ResID:   resID,
			Name:    name,
			Stage:   d2.Stage,
			Skill:   d2.Skill,
			Command: d2.Command,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cache, nil
}
