package plumbing

import "github.com/flownetlab/flownet/flow"

// A Cast is a zero-resource bit reinterpretation. It concatenates the sink
// fields in layout order into a flat bit vector and reinterprets it as the
// source's flat bit vector; the handshake passes through combinationally.
// The two layouts must have the same total bit width.
type Cast struct {
	*flow.ActorBase

	sink   *flow.Endpoint
	source *flow.Endpoint
}

// NewCast creates a cast between two equally-wide layouts.
func NewCast(
	name string,
	sinkLayout, sourceLayout flow.Layout,
) (*Cast, error) {
	if sinkLayout.BitWidth() != sourceLayout.BitWidth() {
		return nil, flow.NewError(flow.ErrLayoutMismatch,
			"cannot cast %d bits %s into %d bits %s",
			sinkLayout.BitWidth(), sinkLayout,
			sourceLayout.BitWidth(), sourceLayout)
	}

	c := &Cast{ActorBase: flow.NewActorBase(name)}
	c.sink = c.AddEndpoint(c, flow.Sink, sinkLayout, "sink")
	c.source = c.AddEndpoint(c, flow.Source, sourceLayout, "source")

	return c, nil
}

// Busy is always false; the cast holds no state.
func (c *Cast) Busy() bool {
	return false
}

// Sync passes the handshake through and reinterprets the payload bits.
func (c *Cast) Sync() bool {
	changed := c.source.SetStb(c.sink.Stb())

	if c.sink.Stb() {
		bits, err := c.sink.Payload().PackBits(c.sink.Layout())
		if err != nil {
			panic(err)
		}

		out := flow.UnpackBits(bits, c.source.Layout())
		changed = c.source.SetPayload(out) || changed
	}

	changed = c.sink.SetAck(c.source.Ack()) || changed

	return changed
}

// Commit does nothing; the cast is purely combinational.
func (c *Cast) Commit() {
}

// CombDeps declares the pass-through derivations of the cast.
func (c *Cast) CombDeps() []flow.SignalDep {
	return []flow.SignalDep{
		{
			Out: flow.SignalRef{Endpoint: "source", Signal: flow.SigStb},
			In:  []flow.SignalRef{{Endpoint: "sink", Signal: flow.SigStb}},
		},
		{
			Out: flow.SignalRef{Endpoint: "sink", Signal: flow.SigAck},
			In: []flow.SignalRef{
				{Endpoint: "source", Signal: flow.SigAck},
			},
		},
	}
}
