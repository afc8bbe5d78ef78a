package engine

import (
	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/geom"
	"github.com/embervale/actioncore/ids"
)

var (
	characterRadius   = fx.FromRatio(1, 2)
	gravity           = fx.FromInt(20)
	jumpSpeed         = fx.FromInt(8)
	groundRayDistance = fx.FromInt(1000)
)

// CharacterState is the per-tick state record payload for a character
// (spec.md §3.6); written to the StatePool under ids.ClassCharaHuman.
type CharacterState struct {
	Position  fx.Vec3
	Direction fx.Vec2
	IsMoving  bool
	Grounded  bool
}

// CollideContext carries the pair an interference event was raised for,
// in the order (self, other), to Character.Collide (spec.md §4.5 step 3).
// A character's own collide hook is a no-op; skill on_hit scripts for the
// pair run separately from the tick's collide step (dispatchCollide).
type CollideContext struct {
	Self, Other ids.FastObjID
	Started     bool
}

// Character is a player- or AI-controlled actor in the world.
type Character struct {
	FastObjID ids.FastObjID
	Handle    objHandle
	IsMain    bool

	Direction fx.Vec2
	Speed     fx.Fx
	IsMoving  bool

	VerticalVelocity fx.Fx
	Grounded         bool

	ResID ids.ResID

	justCreated bool
}

func newCharacter(fobjID ids.FastObjID, w *collisionWorld, pos fx.Vec3, dir fx.Vec2, speed fx.Fx, isMain bool) (*Character, objHandle) {
	iso := fx.Isometry{Position: pos, Rotation: fx.QuatIdentity}
	shape := geom.Sphere{Radius: characterRadius}
	data := objData{Kind: objKindCharacter, FastObjID: fobjID}
	h := w.Add(classMove, iso, shape, defaultCharacterGroups(), contactQuery(), data)
	return &Character{
		FastObjID:   fobjID,
		Handle:      h,
		IsMain:      isMain,
		Direction:   dir,
		Speed:       speed,
		justCreated: true,
	}, h
}

// Collide is invoked once per narrow-phase event touching this character.
// It is a no-op; on_hit scripts of skills attached via CmdNewSkill run
// from dispatchCollide, not through this hook.
func (c *Character) Collide(ctx CollideContext) {}

// step advances the character one tick: horizontal motion from its
// direction/speed, gravity integration, and a ground constraint found by
// ray-casting straight down against the stage (spec.md §4.5 step 4).
func (c *Character) step(dt fx.Fx, w *collisionWorld) fx.Isometry {
	cur := w.Object(c.Handle).Isometry

	next := cur
	if c.IsMoving && !c.Direction.IsZero() {
		d := c.Direction.Normalized()
		disp := fx.V3(d.X, 0, d.Y).Scale(c.Speed.Mul(dt))
		next.Position = next.Position.Add(disp)
	}

	if !c.Grounded {
		c.VerticalVelocity = c.VerticalVelocity.Sub(gravity.Mul(dt))
	}
	next.Position.Y = next.Position.Y.Add(c.VerticalVelocity.Mul(dt))

	down := fx.V3(0, fx.One.Neg(), 0)
	if toi, hit := w.FirstImpactWithObj(c.Handle, down, groundRayDistance); hit {
		groundY := cur.Position.Y.Sub(toi)
		if next.Position.Y <= groundY {
			next.Position.Y = groundY
			c.VerticalVelocity = 0
			c.Grounded = true
		} else {
			c.Grounded = false
		}
	} else {
		c.Grounded = false
	}

	return next
}

// jump sets the character airborne with an upward impulse if it is
// currently grounded; a jump requested mid-air is ignored.
func (c *Character) jump() {
	if !c.Grounded {
		return
	}
	c.VerticalVelocity = jumpSpeed
	c.Grounded = false
}
