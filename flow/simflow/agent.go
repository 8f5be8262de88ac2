package simflow

import "github.com/flownetlab/flownet/flow"

// AgentBuilder can build agents.
type AgentBuilder struct {
	behavior Behavior
	descs    []flow.EndpointDescriptor
}

// MakeAgentBuilder creates a default AgentBuilder.
func MakeAgentBuilder() AgentBuilder {
	return AgentBuilder{}
}

// WithBehavior sets the behavior of the agent.
func (b AgentBuilder) WithBehavior(behavior Behavior) AgentBuilder {
	b.behavior = behavior
	return b
}

// WithSink declares a sink endpoint on the agent.
func (b AgentBuilder) WithSink(
	name string,
	layout flow.Layout,
) AgentBuilder {
	b.descs = append(b.descs, flow.EndpointDescriptor{
		Name:   name,
		Dir:    flow.Sink,
		Layout: layout,
	})
	return b
}

// WithSource declares a source endpoint on the agent.
func (b AgentBuilder) WithSource(
	name string,
	layout flow.Layout,
) AgentBuilder {
	b.descs = append(b.descs, flow.EndpointDescriptor{
		Name:   name,
		Dir:    flow.Source,
		Layout: layout,
	})
	return b
}

// Build builds an agent.
func (b AgentBuilder) Build(name string) *Agent {
	if b.behavior == nil {
		panic("an agent requires a behavior")
	}

	a := &Agent{
		ActorBase: flow.NewActorBase(name),
		behavior:  b.behavior,
	}

	for _, d := range b.descs {
		a.AddEndpoint(a, d.Dir, d.Layout, d.Name)
	}

	return a
}

// An Agent is an actor whose token traffic is produced by a Behavior. The
// engine advances the behavior one scheduling decision per tick: it
// drives strobes and payloads for pending source requests, acknowledges
// for pending sink requests, and resumes the behavior only once the whole
// pending batch has completed.
type Agent struct {
	*flow.ActorBase

	behavior Behavior
	pending  []*TokenRequest
	started  bool
}

// Busy is 1 while a source request is committed but not yet delivered.
func (a *Agent) Busy() bool {
	for _, r := range a.pending {
		if r.done {
			continue
		}

		if a.Endpoint(r.Endpoint).Dir() == flow.Source {
			return true
		}
	}

	return false
}

// Sync drives the handshake signals of all pending requests. A stalled
// source holds strobe and payload unchanged until accepted.
func (a *Agent) Sync() bool {
	changed := false

	for _, ep := range a.Endpoints() {
		req := a.pendingOn(ep.Name())

		if ep.Dir() == flow.Source {
			active := req != nil && !req.done
			changed = ep.SetStb(active) || changed
			if active {
				changed = ep.SetPayload(req.Payload) || changed
			}
		} else {
			active := req != nil && !req.done
			changed = ep.SetAck(active) || changed
		}
	}

	return changed
}

// Commit records completed transfers and resumes the behavior once every
// request of the pending batch is fulfilled.
func (a *Agent) Commit() {
	for _, r := range a.pending {
		if r.done {
			continue
		}

		ep := a.Endpoint(r.Endpoint)
		if !ep.Fired() {
			continue
		}

		r.done = true
		if ep.Dir() == flow.Sink {
			// the payload must be captured now, the source is not
			// obligated to hold it next cycle
			r.Payload = ep.Payload().Clone()
		}
	}

	if a.started && !a.allDone() {
		return
	}

	completed := a.pending
	a.pending = a.behavior.Resume(completed)
	a.started = true
}

func (a *Agent) allDone() bool {
	for _, r := range a.pending {
		if !r.done {
			return false
		}
	}

	return true
}

func (a *Agent) pendingOn(epName string) *TokenRequest {
	for _, r := range a.pending {
		if r.Endpoint == epName {
			return r
		}
	}

	return nil
}
