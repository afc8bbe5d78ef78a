package world

// Groups is the branch-free membership/whitelist bitmask pair that gates
// whether two collision objects are even allowed to interfere (spec.md
// §4.4): a team dimension and a role dimension, each carrying a
// membership mask and a whitelist mask.
type Groups struct {
	TeamMembership uint16
	TeamWhitelist  uint16
	RoleMembership uint16
	RoleWhitelist  uint16
}

// CanInteractWith reports whether a and b are allowed to interfere: all
// four pairwise membership/whitelist intersections must be non-zero.
func CanInteractWith(a, b Groups) bool {
	return a.TeamMembership&b.TeamWhitelist != 0 &&
		b.TeamMembership&a.TeamWhitelist != 0 &&
		a.RoleMembership&b.RoleWhitelist != 0 &&
		b.RoleMembership&a.RoleWhitelist != 0
}

// Team membership bits. Stage geometry belongs to no team and every
// team's whitelist must include it explicitly.
const (
	TeamStage uint16 = 1 << iota
	Team1
	Team2
	Team3
	Team4
)

// TeamAll whitelists every team plus the stage, the default for neutral
// hazards that should interact with all combatants.
const TeamAll = TeamStage | Team1 | Team2 | Team3 | Team4

// Role membership bits distinguish what kind of volume a proxy represents
// within a team: its normal bounding volume (used for movement/ground
// contact against the stage) versus its damage-dealing, health-receiving,
// and defense-absorbing hit volumes.
const (
	RoleNormalBounding uint16 = 1 << iota
	RoleDamage
	RoleHealth
	RoleDefense
)

// RoleGiantBounding, RoleGiantVolume, and RoleTarget round out the role
// taxonomy with the three roles original_source/core/src/physic/class.rs
// names (GROUPS_GIANT_BOUNDING, GROUPS_GIANT_VOLUME, GROUPS_TARGET
// respectively) that the earlier cut of this taxonomy dropped: a heavier
// character class gets its own bounding role distinct from
// RoleNormalBounding (so giants and normal movers can be tuned against the
// stage separately), its footprint gets a distinct occupancy-volume role,
// and every targetable body carries a Target role that damage/health
// volumes key off of rather than whitelisting bounding volumes directly.
const (
	RoleGiantBounding uint16 = 1 << (iota + 4)
	RoleGiantVolume
	RoleTarget
)

// RoleMovement is the whitelist a Move-class proxy uses against the stage:
// it only needs to resolve ground/wall contact, not combat volumes.
const RoleMovement = RoleNormalBounding

// RoleGiantMovement mirrors RoleMovement for the giant-bounding class:
// original_source's groups_giant_bounding whitelists only GROUPS_STAGE, so
// unlike RoleNormalBounding it does not also resolve against giant-volume
// occupancy.
const RoleGiantMovement = RoleGiantBounding

// RoleOccupancy is the whitelist a giant's occupancy volume uses:
// original_source's groups_giant_volume whitelists GROUPS_STAGE and
// GROUPS_NORMAL_BOUNDING, letting a giant's footprint push normal-sized
// movers without the two bounding classes colliding with each other
// directly.
const RoleOccupancy = RoleNormalBounding

// RoleTargetable is the whitelist a character's Target volume uses:
// original_source's groups_target whitelists GROUPS_DAMAGE and
// GROUPS_HEALTH.
const RoleTargetable = RoleDamage | RoleHealth

// RoleCombat is the whitelist a damage volume uses against the rest of the
// cast: damage interacts with health and defense, never with normal
// bounding or other damage volumes directly.
const RoleCombat = RoleHealth | RoleDefense
