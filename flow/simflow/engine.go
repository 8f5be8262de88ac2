package simflow

import (
	"log"
	"sync"

	"github.com/flownetlab/flownet/flow"
)

type endpointState struct {
	stb     bool
	ack     bool
	payload flow.Token
}

// An Engine executes a set of cycle actors in lock step over a discrete
// clock. Each cycle it settles all combinational outputs to a fixpoint,
// samples and checks the handshake signals, and then commits the clock
// edge on every actor. Execution is single-threaded and cooperative; there
// is no actor-level parallelism.
type Engine struct {
	flow.HookableBase

	cycle  int64
	actors []flow.CycleActor

	checkProtocol bool
	prev          map[*flow.Endpoint]endpointState

	pauseLock     sync.Mutex
	isPaused      bool
	isPausedLock  sync.Mutex
	singleRunLock sync.Mutex
}

// NewEngine creates an engine with runtime handshake checking enabled.
func NewEngine() *Engine {
	return &Engine{
		checkProtocol: true,
		prev:          make(map[*flow.Endpoint]endpointState),
	}
}

// WithoutProtocolChecks disables the runtime handshake assertions.
func (e *Engine) WithoutProtocolChecks() *Engine {
	e.checkProtocol = false
	return e
}

// Register adds an actor to be executed by the engine.
func (e *Engine) Register(a flow.CycleActor) {
	e.actors = append(e.actors, a)
}

// Graph is the part of the network graph the engine consumes.
type Graph interface {
	IsAbstract() bool
	Actors() []flow.Actor
}

// RegisterGraph registers every actor of a physical graph. Registering an
// abstract graph is an error, as is a graph holding actors that cannot be
// cycle-stepped.
func (e *Engine) RegisterGraph(g Graph) error {
	if g.IsAbstract() {
		return flow.NewError(flow.ErrAbstractGraph,
			"cannot simulate an abstract graph, elaborate it first")
	}

	for _, a := range g.Actors() {
		ca, ok := a.(flow.CycleActor)
		if !ok {
			return flow.NewError(flow.ErrProtocolViolation,
				"actor %s cannot be cycle-stepped", a.Name())
		}

		e.Register(ca)
	}

	return nil
}

// CurrentCycle returns the number of completed cycles.
func (e *Engine) CurrentCycle() int64 {
	return e.cycle
}

// Run advances the simulation by the given number of cycles.
func (e *Engine) Run(cycles int) {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for i := 0; i < cycles; i++ {
		e.pauseLock.Lock()
		e.step()
		e.pauseLock.Unlock()
	}
}

// RunUntil advances the simulation until the condition holds at a cycle
// boundary, or until the limit is reached. It reports whether the
// condition was met.
func (e *Engine) RunUntil(cond func() bool, limit int) bool {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for i := 0; i < limit; i++ {
		if cond() {
			return true
		}

		e.pauseLock.Lock()
		e.step()
		e.pauseLock.Unlock()
	}

	return cond()
}

// Pause prevents the engine from advancing until Continue is called.
func (e *Engine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows a paused engine to advance again.
func (e *Engine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

// step executes one cycle: combinational fixpoint, observation, commit.
func (e *Engine) step() {
	e.settle()
	e.observe()

	for _, a := range e.actors {
		a.Commit()
	}

	e.cycle++
}

// settle recomputes all combinational outputs until no signal changes. The
// stb/ack acyclicity rule bounds the number of passes; exceeding it means
// a combinational loop was wired.
func (e *Engine) settle() {
	limit := len(e.actors) + 4

	for i := 0; ; i++ {
		changed := false
		for _, a := range e.actors {
			changed = a.Sync() || changed
		}

		if !changed {
			return
		}

		if i >= limit {
			log.Panic("combinational signals do not settle, " +
				"the network contains a combinational loop")
		}
	}
}

// observe samples every source endpoint once per cycle, invoking the
// sample and transfer hooks and enforcing the runtime handshake rules.
func (e *Engine) observe() {
	for _, a := range e.actors {
		for _, ep := range a.Endpoints() {
			if ep.Dir() != flow.Source {
				continue
			}

			sample := flow.EndpointSample{Stb: ep.Stb(), Ack: ep.Ack()}

			if e.checkProtocol {
				e.checkStallHold(a, ep, sample)
			}

			if ep.NumHooks() > 0 {
				ep.InvokeHook(flow.HookCtx{
					Domain: ep,
					Pos:    flow.HookPosEndpointSample,
					Item:   sample,
				})

				if sample.Stb && sample.Ack {
					ep.InvokeHook(flow.HookCtx{
						Domain: ep,
						Pos:    flow.HookPosEndpointTransfer,
						Item:   ep.Payload(),
					})
				}
			}
		}
	}
}

// checkStallHold asserts the stall-holds-value law: a source that strobed
// without being acknowledged must hold stb and payload unchanged until
// accepted.
func (e *Engine) checkStallHold(
	a flow.Actor,
	ep *flow.Endpoint,
	sample flow.EndpointSample,
) {
	prev, seen := e.prev[ep]

	if seen && prev.stb && !prev.ack {
		if !sample.Stb {
			panic(flow.NewError(flow.ErrProtocolViolation,
				"%s.%s dropped stb while stalled", a.Name(), ep.Name()))
		}

		if !prev.payload.Equal(ep.Payload()) {
			panic(flow.NewError(flow.ErrProtocolViolation,
				"%s.%s changed payload while stalled", a.Name(), ep.Name()))
		}
	}

	state := endpointState{stb: sample.Stb, ack: sample.Ack}
	if sample.Stb && !sample.Ack {
		state.payload = ep.Payload().Clone()
	}
	e.prev[ep] = state
}
