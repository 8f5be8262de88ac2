package network

import "github.com/flownetlab/flownet/flow"

// fixedActor is a do-nothing physical actor with a fixed endpoint set,
// used to anchor graph edges in tests.
type fixedActor struct {
	*flow.ActorBase
}

func (a *fixedActor) Busy() bool {
	return false
}

func (a *fixedActor) Sync() bool {
	return false
}

func (a *fixedActor) Commit() {
}

func newSourceActor(name string, layout flow.Layout) *fixedActor {
	a := &fixedActor{ActorBase: flow.NewActorBase(name)}
	a.AddEndpoint(a, flow.Source, layout, "source")

	return a
}

func newSinkActor(name string, layout flow.Layout) *fixedActor {
	a := &fixedActor{ActorBase: flow.NewActorBase(name)}
	a.AddEndpoint(a, flow.Sink, layout, "sink")

	return a
}

// identityTemplate is an actor template with fully templated endpoint
// layouts; it instantiates into an identity Combinatorial.
type identityTemplate struct{}

func (identityTemplate) EndpointDescriptors(
	_ Params,
) []flow.EndpointDescriptor {
	return []flow.EndpointDescriptor{
		{Name: "sink", Dir: flow.Sink},
		{Name: "source", Dir: flow.Source},
	}
}

func (identityTemplate) Instantiate(
	name string,
	_ Params,
	layouts map[string]flow.Layout,
) (flow.Actor, error) {
	return flow.NewCombinatorial(
		name, layouts["sink"], layouts["source"],
		func(in flow.Token) flow.Token { return in },
	), nil
}
