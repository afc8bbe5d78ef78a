package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/statepool"
)

// inputBatch carries one tick's buffered operations/commands from the
// caller thread to the worker (spec.md §4.5, §5). A nil batch is the
// cancellation sentinel: the worker drains nothing further and exits.
type inputBatch struct {
	ops  []Op
	cmds []Command
}

// asyncResult carries one tick's outcome back to the caller thread.
type asyncResult struct {
	pool *statepool.StatePool
	err  error
}

// AsyncAgent hosts the engine on exactly one dedicated worker goroutine
// (spec.md §4.5, §5). Two unbuffered channels carry input batches one way
// and results the other; no engine state ever crosses the boundary except
// through them. The caller thread only ever buffers ops/cmds locally and,
// on Tick, blocks until the worker returns the next pool.
type AsyncAgent struct {
	bus *statepool.StateBus

	pendingOps  []Op
	pendingCmds []Command

	inputCh  chan *inputBatch
	outputCh chan asyncResult

	limiter *rate.Limiter

	g      *errgroup.Group
	cancel context.CancelFunc
}

// NewAsyncAgent starts the worker goroutine and returns a ready agent.
// opsPerSecond/burst bound how fast the caller may push Tick calls, giving
// the async agent's input path backpressure independent of the worker's own
// pace (a misbehaving caller cannot queue unbounded work against it, since
// both channels are unbuffered and Tick blocks on them directly).
func NewAsyncAgent(tickDuration fx.Fx, opsPerSecond rate.Limit, burst int) *AsyncAgent {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	a := &AsyncAgent{
		bus:      statepool.NewStateBus(),
		inputCh:  make(chan *inputBatch),
		outputCh: make(chan asyncResult),
		limiter:  rate.NewLimiter(opsPerSecond, burst),
		g:        g,
		cancel:   cancel,
	}
	g.Go(func() error { return a.run(gctx, tickDuration) })
	return a
}

// run is the worker loop: it owns the only Engine instance for this agent's
// lifetime and never shares it outside this goroutine.
func (a *AsyncAgent) run(ctx context.Context, tickDuration fx.Fx) error {
	eng := New(tickDuration)
	for {
		select {
		case batch := <-a.inputCh:
			if batch == nil {
				return nil
			}
			for _, op := range batch.ops {
				eng.Operate(op)
			}
			for _, cmd := range batch.cmds {
				eng.Command(cmd)
			}
			pool, err := eng.Tick()
			select {
			case a.outputCh <- asyncResult{pool: pool, err: err}:
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Operate buffers a player operation locally; it is shipped to the worker
// on the next Tick call, not before.
func (a *AsyncAgent) Operate(op Op) { a.pendingOps = append(a.pendingOps, op) }

// Command buffers an engine command locally, analogous to Operate.
func (a *AsyncAgent) Command(cmd Command) { a.pendingCmds = append(a.pendingCmds, cmd) }

// Tick ships the buffered batch to the worker, blocks for its result, and
// dispatches the returned pool to the bus. Unlike the source this port
// returns the worker's error from this same Tick call rather than
// discarding it (spec.md §9 open question).
func (a *AsyncAgent) Tick(ctx context.Context) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}

	batch := &inputBatch{ops: a.pendingOps, cmds: a.pendingCmds}
	a.pendingOps = nil
	a.pendingCmds = nil

	select {
	case a.inputCh <- batch:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case res := <-a.outputCh:
		if res.err != nil {
			return res.err
		}
		a.bus.Dispatch(res.pool)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Bus returns the state bus consumers register StateRefs against.
func (a *AsyncAgent) Bus() *statepool.StateBus { return a.bus }

// Close sends the cancellation sentinel and waits for the worker to exit.
// Per spec.md §5, dropping/closing the agent closes both channels and
// terminates the worker within one tick of the next call; since Go lacks
// implicit channel-close-on-drop, Close is the explicit equivalent.
func (a *AsyncAgent) Close() error {
	select {
	case a.inputCh <- nil:
	default:
		a.cancel()
	}
	return a.g.Wait()
}
