package plumbing

import (
	"fmt"

	"github.com/flownetlab/flownet/flow"
)

// A Splitter duplicates each received token to K sources, each optionally
// projected to a subrecord of the sink's layout. Every downstream sees
// exactly one copy of each token even when the sources accept at different
// cycles; the sink is only acknowledged once all copies have been
// accepted.
type Splitter struct {
	*flow.ActorBase

	sink    *flow.Endpoint
	sources []*flow.Endpoint
	fields  [][]string
	done    []bool
}

// NewSplitter creates a splitter consuming tokens of the given sink layout.
// Each entry of subrecords names the fields one source carries; nil selects
// the whole record. Source i is named "source<i>".
func NewSplitter(
	name string,
	sinkLayout flow.Layout,
	subrecords [][]string,
) (*Splitter, error) {
	s := &Splitter{
		ActorBase: flow.NewActorBase(name),
		fields:    subrecords,
		done:      make([]bool, len(subrecords)),
	}

	s.sink = s.AddEndpoint(s, flow.Sink, sinkLayout, "sink")

	for i, fieldNames := range subrecords {
		srcLayout, err := sinkLayout.Project(fieldNames)
		if err != nil {
			return nil, err
		}

		ep := s.AddEndpoint(
			s, flow.Source, srcLayout, fmt.Sprintf("source%d", i))
		s.sources = append(s.sources, ep)
	}

	return s, nil
}

// Busy is 1 while some copies of the current token are still undelivered.
func (s *Splitter) Busy() bool {
	for _, d := range s.done {
		if d {
			return true
		}
	}

	return false
}

// Sync presents the pending copies and derives the sink acknowledge.
func (s *Splitter) Sync() bool {
	stb := s.sink.Stb()
	changed := false

	for i, src := range s.sources {
		changed = src.SetStb(stb && !s.done[i]) || changed
		if stb {
			payload := s.sink.Payload().Project(s.fields[i])
			changed = src.SetPayload(payload) || changed
		}
	}

	// The sink transfer completes in the cycle the last copy is taken,
	// counting copies accepted this very cycle.
	all := stb
	for i, src := range s.sources {
		if !s.done[i] && !src.Fired() {
			all = false
			break
		}
	}
	changed = s.sink.SetAck(all) || changed

	return changed
}

// Commit records which copies were accepted this cycle.
func (s *Splitter) Commit() {
	if !s.sink.Stb() {
		return
	}

	for i, src := range s.sources {
		if src.Fired() {
			s.done[i] = true
		}
	}

	if s.sink.Fired() {
		for i := range s.done {
			s.done[i] = false
		}
	}
}

// CombDeps declares that each source strobe follows the sink strobe, and
// that the sink acknowledge is derived from the sink strobe and all source
// acknowledges.
func (s *Splitter) CombDeps() []flow.SignalDep {
	sinkStb := flow.SignalRef{Endpoint: "sink", Signal: flow.SigStb}

	deps := make([]flow.SignalDep, 0, len(s.sources)+1)
	for _, src := range s.sources {
		deps = append(deps, flow.SignalDep{
			Out: flow.SignalRef{Endpoint: src.Name(), Signal: flow.SigStb},
			In:  []flow.SignalRef{sinkStb},
		})
	}

	ackIn := []flow.SignalRef{sinkStb}
	for _, src := range s.sources {
		ackIn = append(ackIn, flow.SignalRef{
			Endpoint: src.Name(),
			Signal:   flow.SigAck,
		})
	}

	deps = append(deps, flow.SignalDep{
		Out: flow.SignalRef{Endpoint: "sink", Signal: flow.SigAck},
		In:  ackIn,
	})

	return deps
}
