package plumbing

import "github.com/flownetlab/flownet/flow"

// probe is a signal-less actor owning the far side of a connection in
// tests. Its endpoint signals are driven manually.
type probe struct {
	*flow.ActorBase
}

func newProbe(name string) *probe {
	return &probe{ActorBase: flow.NewActorBase(name)}
}

func (p *probe) Busy() bool {
	return false
}

func driveInto(snk *flow.Endpoint) *flow.Endpoint {
	p := newProbe("Up" + snk.Owner().Name() + snk.Name())
	src := p.AddEndpoint(p, flow.Source, snk.Layout(), "out")

	err := flow.Connect(src, snk)
	if err != nil {
		panic(err)
	}

	return src
}

func drainFrom(src *flow.Endpoint) *flow.Endpoint {
	p := newProbe("Down" + src.Owner().Name() + src.Name())
	snk := p.AddEndpoint(p, flow.Sink, src.Layout(), "in")

	err := flow.Connect(src, snk)
	if err != nil {
		panic(err)
	}

	return snk
}

// stepCycle settles the actors and applies the clock edge.
func stepCycle(actors ...flow.CycleActor) {
	settleAll(actors...)

	for _, a := range actors {
		a.Commit()
	}
}

func settleAll(actors ...flow.CycleActor) {
	for i := 0; i < len(actors)+4; i++ {
		changed := false
		for _, a := range actors {
			changed = a.Sync() || changed
		}

		if !changed {
			return
		}
	}

	panic("signals do not settle")
}
