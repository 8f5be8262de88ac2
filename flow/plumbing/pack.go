package plumbing

import "github.com/flownetlab/flownet/flow"

// A Pack is the inverse of Unpack: it consumes k successive tokens of
// layout L, buffering them, and on the k-th produces one token with fields
// chunk0..chunk<k-1> populated in arrival order.
type Pack struct {
	*flow.ActorBase

	sink   *flow.Endpoint
	source *flow.Endpoint
	k      int

	chunks []flow.Token
	count  int
}

// NewPack creates a packer assembling k tokens of the chunk layout into
// one.
func NewPack(name string, chunk flow.Layout, k int) *Pack {
	p := &Pack{
		ActorBase: flow.NewActorBase(name),
		k:         k,
		chunks:    make([]flow.Token, k),
	}

	p.sink = p.AddEndpoint(p, flow.Sink, chunk, "sink")
	p.source = p.AddEndpoint(p, flow.Source, ChunkLayout(chunk, k), "source")

	return p
}

// Busy is 1 while a partially or fully assembled token is pending.
func (p *Pack) Busy() bool {
	return p.count > 0
}

// Sync collects chunks while incomplete and presents the assembled token.
func (p *Pack) Sync() bool {
	full := p.count == p.k

	changed := p.sink.SetAck(!full)
	changed = p.source.SetStb(full) || changed

	if full {
		out := make(flow.Token, p.k)
		for i, c := range p.chunks {
			out[chunkName(i)] = c
		}
		changed = p.source.SetPayload(out) || changed
	}

	return changed
}

// Commit applies the clock edge.
func (p *Pack) Commit() {
	switch {
	case p.count < p.k && p.sink.Fired():
		p.chunks[p.count] = p.sink.Payload().Clone()
		p.count++
	case p.count == p.k && p.source.Fired():
		p.count = 0
	}
}

// CombDeps declares no derivations: both handshake outputs come from
// registered state.
func (p *Pack) CombDeps() []flow.SignalDep {
	return nil
}
