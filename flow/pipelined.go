package flow

import "log"

type pipeSlot struct {
	valid bool
	tok   Token
}

// A Pipelined actor is a fixed-latency unit with one slot per stage. The
// derived enable PipeCE is 1 exactly when the whole pipeline may advance
// one stage this cycle; every register gates on it, so a downstream stall
// freezes all in-flight tokens and no token is ever dropped. An input
// accepted at cycle t yields an output at t+N under uninterrupted PipeCE;
// holding PipeCE low for k cycles delays the output by exactly k.
type Pipelined struct {
	*ActorBase

	sink   *Endpoint
	source *Endpoint
	depth  int
	f      DatapathFunc

	stages []pipeSlot
	ce     bool
}

// NewPipelined creates a pipelined actor with the given number of stages.
func NewPipelined(
	name string,
	sinkLayout, sourceLayout Layout,
	depth int,
	f DatapathFunc,
) *Pipelined {
	if depth < 1 {
		log.Panic("pipeline depth must be at least 1")
	}

	p := &Pipelined{
		ActorBase: NewActorBase(name),
		depth:     depth,
		f:         f,
	}

	p.sink = p.AddEndpoint(p, Sink, sinkLayout, SinkName)
	p.source = p.AddEndpoint(p, Source, sourceLayout, SourceName)
	p.stages = make([]pipeSlot, depth)

	return p
}

// Busy is 1 iff at least one pipeline slot holds valid in-flight data.
func (p *Pipelined) Busy() bool {
	for _, s := range p.stages {
		if s.valid {
			return true
		}
	}

	return false
}

// PipeCE reports the derived pipeline enable of the current cycle.
func (p *Pipelined) PipeCE() bool {
	return p.ce
}

// Sync presents the output stage and derives the pipeline enable.
func (p *Pipelined) Sync() bool {
	out := p.stages[p.depth-1]

	changed := p.source.SetStb(out.valid)
	if out.valid {
		changed = p.source.SetPayload(out.tok) || changed
	}

	p.ce = !out.valid || p.source.Ack()
	changed = p.sink.SetAck(p.ce) || changed

	return changed
}

// Commit advances the pipeline by one stage when the enable is high.
func (p *Pipelined) Commit() {
	if !p.ce {
		return
	}

	for i := p.depth - 1; i > 0; i-- {
		p.stages[i] = p.stages[i-1]
	}

	if p.sink.Fired() {
		p.stages[0] = pipeSlot{valid: true, tok: p.f(p.sink.Payload())}
	} else {
		p.stages[0] = pipeSlot{}
	}
}

// CombDeps declares that the sink acknowledge follows the source
// acknowledge through the pipeline enable. The source strobe comes from
// registered state.
func (p *Pipelined) CombDeps() []SignalDep {
	return []SignalDep{
		{
			Out: SignalRef{Endpoint: SinkName, Signal: SigAck},
			In:  []SignalRef{{Endpoint: SourceName, Signal: SigAck}},
		},
	}
}
