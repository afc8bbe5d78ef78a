package resource

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/embervale/actioncore/geom"
	"github.com/embervale/actioncore/ids"
	"github.com/embervale/actioncore/script"
	"github.com/embervale/actioncore/script/ast"
	"github.com/embervale/actioncore/script/vm"
)

const (
	shapeDedupSize   = 256
	programDedupSize = 256
)

// Cache restores and serves ResObj values: a monotonic ResID->FastResID
// table (grounded on the same incrementing-id-allocator idiom the engine's
// own FastObjIDGenerator uses), an LRU dedup cache for compiled shapes
// keyed by their structural definition, and an LRU dedup cache for
// compiled scripts keyed by a content hash of (context class, source) —
// two resources with identical script text share one vm.Program instead
// of compiling twice.
type Cache struct {
	idGen ids.FastResIDGenerator

	objs    map[ids.ResID]*ResObj
	order   []ids.ResID
	shapes  *lru.Cache
	scripts *lru.Cache

	// PersistDir, if non-empty, is checked before compiling a script and
	// written through to after: a directory of snappy-compressed compiled
	// programs that survives process restarts (spec.md §4.6's "optional
	// persistence" note). Nil/empty disables persistence entirely.
	PersistDir string
}

// NewCache constructs an empty resource cache.
func NewCache() *Cache {
	shapes, err := lru.New(shapeDedupSize)
	if err != nil {
		panic(err) // only fails for a non-positive size, which shapeDedupSize never is
	}
	scripts, err := lru.New(programDedupSize)
	if err != nil {
		panic(err)
	}
	return &Cache{
		objs:    make(map[ids.ResID]*ResObj),
		shapes:  shapes,
		scripts: scripts,
	}
}

// Put registers obj under its ResID, assigning a FastResID in insertion
// order if this is the first time that ResID has been seen. Re-registering
// the same ResID (e.g. a hot-reload) keeps its original FastResID.
func (c *Cache) Put(obj *ResObj) {
	if existing, ok := c.objs[obj.ResID]; ok {
		obj.FastResID = existing.FastResID
	} else {
		obj.FastResID = c.idGen.Next()
		c.order = append(c.order, obj.ResID)
	}
	c.objs[obj.ResID] = obj
}

// Get looks up a resource by its user-facing ResID.
func (c *Cache) Get(id ids.ResID) (*ResObj, bool) {
	obj, ok := c.objs[id]
	return obj, ok
}

// Order returns every registered ResID in first-seen order, for callers
// that need deterministic iteration (spec.md §8).
func (c *Cache) Order() []ids.ResID {
	out := make([]ids.ResID, len(c.order))
	copy(out, c.order)
	return out
}

// BuildShape restores def's geom.Shape, reusing a cached value for any
// structurally identical definition seen before.
func (c *Cache) BuildShape(def ShapeDef) (geom.Shape, error) {
	key := def.hashKey()
	if v, ok := c.shapes.Get(key); ok {
		return v.(geom.Shape), nil
	}
	shape, err := def.Build()
	if err != nil {
		return nil, err
	}
	c.shapes.Add(key, shape)
	return shape, nil
}

// CompileScript compiles src against ctx, reusing a cached vm.Program for
// any (ctx.CtxID, src) pair already compiled — in memory first, then, if
// PersistDir is set, from the on-disk cache (spec.md §4.6, §4.8).
func (c *Cache) CompileScript(src string, ctx ast.ContextSpec) (*vm.Program, error) {
	key := scriptCacheKey(ctx.CtxID, src)
	if v, ok := c.scripts.Get(key); ok {
		return v.(*vm.Program), nil
	}

	if c.PersistDir != "" {
		if p, err := loadProgram(c.PersistDir, key); err == nil {
			c.scripts.Add(key, p)
			return p, nil
		}
	}

	program, err := script.Compile(src, ctx)
	if err != nil {
		return nil, fmt.Errorf("resource: compiling script: %w", err)
	}
	c.scripts.Add(key, program)

	if c.PersistDir != "" {
		if err := saveProgram(c.PersistDir, key, program); err != nil {
			return program, fmt.Errorf("resource: persisting compiled script: %w", err)
		}
	}
	return program, nil
}
