package engine

import (
	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/statepool"
)

// Agent is the sync agent (spec.md §4.5, §6): it owns the engine on the
// caller's thread and runs each Tick synchronously, with no suspension
// points inside a tick (spec.md §5). This is the external API most callers
// should reach for; see AsyncAgent for the worker-thread variant.
type Agent struct {
	eng *Engine
	bus *statepool.StateBus
}

// NewAgent constructs a sync agent with the given fixed tick duration.
func NewAgent(tickDuration fx.Fx) *Agent {
	return &Agent{eng: New(tickDuration), bus: statepool.NewStateBus()}
}

// Operate buffers a player operation; it takes effect during the next Tick.
func (a *Agent) Operate(op Op) { a.eng.Operate(op) }

// Command buffers an engine command; it takes effect during the next Tick.
func (a *Agent) Command(cmd Command) { a.eng.Command(cmd) }

// Tick runs one simulation step and dispatches its snapshot to the bus.
func (a *Agent) Tick() error {
	pool, err := a.eng.Tick()
	if err != nil {
		return err
	}
	a.bus.Dispatch(pool)
	return nil
}

// Bus returns the state bus consumers register StateRefs against.
func (a *Agent) Bus() *statepool.StateBus { return a.bus }

// Engine exposes the underlying engine for callers that need direct access
// (tests, tooling); ordinary consumers should only need Operate/Command/Tick.
func (a *Agent) Engine() *Engine { return a.eng }
