// Package actors provides library actors built on the dataflow core: the
// integer sequence generator and the bus-master reader and writer.
package actors

import (
	"github.com/flownetlab/flownet/flow"
	"github.com/flownetlab/flownet/flow/simflow"
)

const (
	intSeqAwaitingParams = iota
	intSeqEmitting
)

type intSequenceBehavior struct {
	offsetBits int

	state int
	next  int64
	end   int64
}

func (b *intSequenceBehavior) Resume(
	completed []*simflow.TokenRequest,
) []*simflow.TokenRequest {
	switch b.state {
	case intSeqAwaitingParams:
		if len(completed) == 0 {
			return []*simflow.TokenRequest{simflow.Receive("sink")}
		}

		params := completed[0].Payload
		if b.offsetBits > 0 {
			b.next = params["offset"].(int64)
			b.end = b.next + params["count"].(int64)
		} else {
			b.next = 0
			b.end = params["max"].(int64)
		}

		if b.next >= b.end {
			return []*simflow.TokenRequest{simflow.Receive("sink")}
		}

		b.state = intSeqEmitting
		return b.emit()
	case intSeqEmitting:
		b.next++
		if b.next < b.end {
			return b.emit()
		}

		b.state = intSeqAwaitingParams
		return []*simflow.TokenRequest{simflow.Receive("sink")}
	}

	return nil
}

func (b *intSequenceBehavior) emit() []*simflow.TokenRequest {
	return []*simflow.TokenRequest{
		simflow.Send("source", flow.Token{"value": b.next}),
	}
}

// IntSequenceSinkLayout returns the parameter layout of the integer
// sequence generator: {max} when offsetBits is zero, {count, offset}
// otherwise.
func IntSequenceSinkLayout(maxBits, offsetBits int) flow.Layout {
	if offsetBits > 0 {
		return flow.NewLayout(
			flow.Scalar("count", flow.Unsigned(maxBits)),
			flow.Scalar("offset", flow.Unsigned(offsetBits)),
		)
	}

	return flow.NewLayout(flow.Scalar("max", flow.Unsigned(maxBits)))
}

// IntSequenceSourceLayout returns the output layout of the integer
// sequence generator.
func IntSequenceSourceLayout(maxBits int) flow.Layout {
	return flow.NewLayout(flow.Scalar("value", flow.Unsigned(maxBits)))
}

// NewIntSequence creates the integer sequence generator actor. After
// accepting one parameter token it emits one token per integer of the
// requested range in ascending order, then returns to accepting a new
// parameter token.
func NewIntSequence(name string, maxBits, offsetBits int) *simflow.Agent {
	return simflow.MakeAgentBuilder().
		WithSink("sink", IntSequenceSinkLayout(maxBits, offsetBits)).
		WithSource("source", IntSequenceSourceLayout(maxBits)).
		WithBehavior(&intSequenceBehavior{offsetBits: offsetBits}).
		Build(name)
}
