package flow

// SinkName and SourceName are the endpoint names of the scheduling-model
// actors. All three models expose exactly one sink and one source.
const (
	SinkName   = "sink"
	SourceName = "source"
)

// A DatapathFunc computes one output token from one input token. It must be
// a pure function; the scheduling models decide when it is evaluated and
// when its result is presented.
type DatapathFunc func(in Token) Token

// A Combinatorial actor recomputes its output from its input every cycle
// and holds no state. The source strobe and payload are pure functions of
// the sink strobe and payload; the sink acknowledge passes the downstream
// acknowledge through. A transfer occurs whenever both sides assert in the
// same cycle. Busy is constantly 0.
type Combinatorial struct {
	*ActorBase

	sink   *Endpoint
	source *Endpoint
	f      DatapathFunc
}

// NewCombinatorial creates a combinatorial actor with the given datapath.
func NewCombinatorial(
	name string,
	sinkLayout, sourceLayout Layout,
	f DatapathFunc,
) *Combinatorial {
	c := &Combinatorial{
		ActorBase: NewActorBase(name),
		f:         f,
	}

	c.sink = c.AddEndpoint(c, Sink, sinkLayout, SinkName)
	c.source = c.AddEndpoint(c, Source, sourceLayout, SourceName)

	return c
}

// Busy is always false for a combinatorial actor.
func (c *Combinatorial) Busy() bool {
	return false
}

// Sync recomputes the pass-through handshake and the datapath.
func (c *Combinatorial) Sync() bool {
	changed := c.source.SetStb(c.sink.Stb())

	if c.sink.Stb() {
		changed = c.source.SetPayload(c.f(c.sink.Payload())) || changed
	}

	changed = c.sink.SetAck(c.source.Ack()) || changed

	return changed
}

// Commit does nothing; a combinatorial actor has no registers.
func (c *Combinatorial) Commit() {
}

// CombDeps declares the pass-through derivations: the source strobe follows
// the sink strobe, and the sink acknowledge follows the source acknowledge.
func (c *Combinatorial) CombDeps() []SignalDep {
	return []SignalDep{
		{
			Out: SignalRef{Endpoint: SourceName, Signal: SigStb},
			In:  []SignalRef{{Endpoint: SinkName, Signal: SigStb}},
		},
		{
			Out: SignalRef{Endpoint: SinkName, Signal: SigAck},
			In:  []SignalRef{{Endpoint: SourceName, Signal: SigAck}},
		},
	}
}
