package flow

import "log"

// A Sequential actor is a non-pipelined, fixed-latency unit. Accepting an
// input token raises a one-cycle trigger pulse and commits the actor to
// producing exactly one output token N cycles later, held stable on the
// source payload until the downstream acknowledge completes the transfer.
// The sink acknowledge is held low and no new input is accepted while busy.
type Sequential struct {
	*ActorBase

	sink    *Endpoint
	source  *Endpoint
	latency int
	f       DatapathFunc

	busy      bool
	countdown int
	result    Token
	trigger   bool
}

// NewSequential creates a fixed-latency sequential actor. The latency must
// be at least one cycle.
func NewSequential(
	name string,
	sinkLayout, sourceLayout Layout,
	latency int,
	f DatapathFunc,
) *Sequential {
	if latency < 1 {
		log.Panic("sequential latency must be at least 1")
	}

	s := &Sequential{
		ActorBase: NewActorBase(name),
		latency:   latency,
		f:         f,
	}

	s.sink = s.AddEndpoint(s, Sink, sinkLayout, SinkName)
	s.source = s.AddEndpoint(s, Source, sourceLayout, SourceName)

	return s
}

// Busy is asserted from the trigger cycle until the output transfer
// completes.
func (s *Sequential) Busy() bool {
	return s.busy
}

// Trigger reports the derived trigger pulse: 1 exactly in the cycle an
// input token is accepted.
func (s *Sequential) Trigger() bool {
	return s.trigger
}

// Sync drives the handshake from the registered state only.
func (s *Sequential) Sync() bool {
	changed := s.sink.SetAck(!s.busy)

	ready := s.busy && s.countdown == 0
	changed = s.source.SetStb(ready) || changed
	if ready {
		changed = s.source.SetPayload(s.result) || changed
	}

	return changed
}

// Commit applies the clock edge.
func (s *Sequential) Commit() {
	s.trigger = false

	switch {
	case !s.busy && s.sink.Fired():
		s.trigger = true
		s.busy = true
		s.countdown = s.latency - 1
		s.result = s.f(s.sink.Payload())
	case s.busy && s.countdown > 0:
		s.countdown--
	case s.busy && s.source.Fired():
		s.busy = false
	}
}

// CombDeps declares no derivations: both handshake outputs of a sequential
// actor come from registered state.
func (s *Sequential) CombDeps() []SignalDep {
	return nil
}
