package plumbing

import (
	"fmt"

	"github.com/flownetlab/flownet/flow"
)

// A Combinator joins N sinks into one source. It accepts a token from each
// sink concurrently, and only when all sinks assert their strobes in the
// same cycle; the source token's fields are the union of the sink payloads
// per the configured field-to-sink mapping. All sinks are back-pressured
// uniformly: none is acknowledged until every one of them strobes and the
// downstream accepts.
type Combinator struct {
	*flow.ActorBase

	sinks  []*flow.Endpoint
	source *flow.Endpoint
	fields [][]string
}

// NewCombinator creates a combinator producing tokens of the given source
// layout. Each entry of subrecords names the fields of the source layout
// that one sink contributes; sink i is named "sink<i>".
func NewCombinator(
	name string,
	sourceLayout flow.Layout,
	subrecords [][]string,
) (*Combinator, error) {
	c := &Combinator{
		ActorBase: flow.NewActorBase(name),
		fields:    make([][]string, len(subrecords)),
	}

	for i, fieldNames := range subrecords {
		sinkLayout, err := sourceLayout.Project(fieldNames)
		if err != nil {
			return nil, err
		}

		if fieldNames == nil {
			fieldNames = sourceLayout.FieldNames()
		}
		c.fields[i] = fieldNames

		ep := c.AddEndpoint(
			c, flow.Sink, sinkLayout, fmt.Sprintf("sink%d", i))
		c.sinks = append(c.sinks, ep)
	}

	c.source = c.AddEndpoint(c, flow.Source, sourceLayout, "source")

	return c, nil
}

// Busy is always false; the combinator holds no state.
func (c *Combinator) Busy() bool {
	return false
}

// Sync derives the all-or-nothing handshake and assembles the union token.
func (c *Combinator) Sync() bool {
	all := true
	for _, snk := range c.sinks {
		if !snk.Stb() {
			all = false
			break
		}
	}

	changed := c.source.SetStb(all)

	if all {
		union := make(flow.Token)
		for i, snk := range c.sinks {
			payload := snk.Payload()
			for _, f := range c.fields[i] {
				union[f] = payload[f]
			}
		}
		changed = c.source.SetPayload(union) || changed
	}

	accept := all && c.source.Ack()
	for _, snk := range c.sinks {
		changed = snk.SetAck(accept) || changed
	}

	return changed
}

// Commit does nothing; the combinator is purely combinational.
func (c *Combinator) Commit() {
}

// CombDeps declares that the source strobe is derived from all sink
// strobes, and each sink acknowledge from all sink strobes plus the source
// acknowledge.
func (c *Combinator) CombDeps() []flow.SignalDep {
	stbRefs := make([]flow.SignalRef, 0, len(c.sinks))
	for _, snk := range c.sinks {
		stbRefs = append(stbRefs, flow.SignalRef{
			Endpoint: snk.Name(),
			Signal:   flow.SigStb,
		})
	}

	deps := []flow.SignalDep{
		{
			Out: flow.SignalRef{Endpoint: "source", Signal: flow.SigStb},
			In:  stbRefs,
		},
	}

	ackIn := append([]flow.SignalRef{}, stbRefs...)
	ackIn = append(ackIn, flow.SignalRef{
		Endpoint: "source",
		Signal:   flow.SigAck,
	})

	for _, snk := range c.sinks {
		deps = append(deps, flow.SignalDep{
			Out: flow.SignalRef{Endpoint: snk.Name(), Signal: flow.SigAck},
			In:  ackIn,
		})
	}

	return deps
}
