package flow

import (
	"fmt"
	"os"
)

// An Actor is a unit with a set of named endpoints and one busy status bit.
// Busy is 1 iff the actor's internal state guarantees eventual completion
// of a pending output transmission; combinatorial actors are always 0.
type Actor interface {
	Named

	Endpoints() []*Endpoint
	Endpoint(name string) *Endpoint
	Busy() bool
}

// A Cycler is stepped by the simulation engine once per cycle, in two
// phases. Sync recomputes the combinational outputs from the registered
// state and the current, already-settled inputs and reports whether any
// output changed; the engine repeats Sync over all actors until no output
// changes. Commit then applies the clock edge: registers update and
// completed transfers are consumed.
type Cycler interface {
	Sync() (changed bool)
	Commit()
}

// A CycleActor is an actor that can be executed by the simulation engine.
type CycleActor interface {
	Actor
	Cycler
}

// SignalKind identifies one of the two handshake control signals.
type SignalKind int

// The handshake control signals.
const (
	SigStb SignalKind = iota
	SigAck
)

// A SignalRef names one control signal of one endpoint of the actor
// declaring the reference.
type SignalRef struct {
	Endpoint string
	Signal   SignalKind
}

// A SignalDep declares that the actor combinationally derives the Out
// signal from the In signals, all read or driven through its own
// endpoints. In refs on the opposite side of an endpoint refer to the
// connected peer's driver.
type SignalDep struct {
	Out SignalRef
	In  []SignalRef
}

// CombDependent is implemented by actors whose handshake signals are
// combinationally derived from other handshake signals. The declared
// dependencies let the compile step check statically that no stb is ever
// derived from an ack.
type CombDependent interface {
	CombDeps() []SignalDep
}

// ActorBase provides endpoint bookkeeping for actor implementations.
type ActorBase struct {
	HookableBase

	name      string
	endpoints []*Endpoint
	byName    map[string]*Endpoint
}

// NewActorBase creates a new ActorBase.
func NewActorBase(name string) *ActorBase {
	NameMustBeValid(name)

	return &ActorBase{
		name:   name,
		byName: make(map[string]*Endpoint),
	}
}

// Name returns the name of the actor.
func (a *ActorBase) Name() string {
	return a.name
}

// AddEndpoint creates an endpoint on the actor. Endpoint names are unique
// within the actor; reusing one is a construction error.
func (a *ActorBase) AddEndpoint(
	owner Actor,
	dir Direction,
	layout Layout,
	name string,
) *Endpoint {
	if _, taken := a.byName[name]; taken {
		panic(fmt.Sprintf(
			"endpoint %s already exists on actor %s", name, a.name))
	}

	ep := NewEndpoint(owner, dir, layout, name)
	a.endpoints = append(a.endpoints, ep)
	a.byName[name] = ep

	return ep
}

// Endpoints returns all endpoints of the actor in declaration order.
func (a *ActorBase) Endpoints() []*Endpoint {
	return a.endpoints
}

// Endpoint returns the endpoint with the given name.
func (a *ActorBase) Endpoint(name string) *Endpoint {
	ep, found := a.byName[name]
	if !found {
		errMsg := fmt.Sprintf(
			"Endpoint %s is not available on actor %s.\n", name, a.name)
		errMsg += "Available endpoints include:\n"
		for n := range a.byName {
			errMsg += fmt.Sprintf("\t%s\n", n)
		}
		fmt.Fprint(os.Stderr, errMsg)

		panic("endpoint not found")
	}

	return ep
}

// Sources returns the source endpoints of the actor.
func (a *ActorBase) Sources() []*Endpoint {
	return a.byDir(Source)
}

// Sinks returns the sink endpoints of the actor.
func (a *ActorBase) Sinks() []*Endpoint {
	return a.byDir(Sink)
}

func (a *ActorBase) byDir(dir Direction) []*Endpoint {
	var eps []*Endpoint
	for _, ep := range a.endpoints {
		if ep.dir == dir {
			eps = append(eps, ep)
		}
	}

	return eps
}
