package engine

import (
	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/geom"
	"github.com/embervale/actioncore/ids"
)

// stageHalfExtents bounds the default stage floor used until a resource-
// driven shape (CmdNewStageGeneral) replaces it.
var stageHalfExtents = fx.V3(fx.FromInt(50), fx.FromInt(1), fx.FromInt(50))

// StageState is the per-tick state record payload for the stage (spec.md
// §3.6); written to the StatePool under ids.ClassStageGeneral.
type StageState struct {
	ResID ids.ResID
}

// Stage is the engine's singleton ground object.
type Stage struct {
	FastObjID ids.FastObjID
	Handle    objHandle
	ResID     ids.ResID

	justCreated bool
}

func newStage(fobjID ids.FastObjID, w *collisionWorld) (*Stage, objHandle) {
	iso := fx.IsometryIdentity
	shape := geom.Box{HalfExtents: stageHalfExtents}
	data := objData{Kind: objKindStage, FastObjID: fobjID}
	h := w.Add(classStatic, iso, shape, defaultStageGroups(), contactQuery(), data)
	return &Stage{FastObjID: fobjID, Handle: h, justCreated: true}, h
}
