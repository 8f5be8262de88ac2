package flow

import "fmt"

// Direction tells whether an endpoint produces or consumes tokens.
type Direction int

// The two endpoint directions.
const (
	// Source endpoints emit tokens. The owning actor drives stb and
	// payload.
	Source Direction = iota

	// Sink endpoints absorb tokens. The owning actor drives ack.
	Sink
)

func (d Direction) String() string {
	if d == Source {
		return "source"
	}

	return "sink"
}

// An EndpointSample is a snapshot of the handshake signals of an endpoint at
// one cycle. It is the Item of HookPosEndpointSample hook invocations.
type EndpointSample struct {
	Stb bool
	Ack bool
}

// An EndpointDescriptor declares one endpoint of an actor type: its name,
// its direction, and its token layout. A nil layout marks an endpoint whose
// layout is templated on what is attached to it and only fixed at
// elaboration time.
type EndpointDescriptor struct {
	Name   string
	Dir    Direction
	Layout Layout
}

// An Endpoint is a directioned port of an actor carrying one token stream.
// It owns the handshake signals its side of the protocol drives: a source
// drives stb and payload, a sink drives ack. Reading the opposite signal
// reads the connected peer.
type Endpoint struct {
	HookableBase

	name   string
	dir    Direction
	layout Layout
	owner  Actor
	peer   *Endpoint

	stb     bool
	ack     bool
	payload Token
}

// NewEndpoint creates an endpoint owned by the given actor.
func NewEndpoint(
	owner Actor,
	dir Direction,
	layout Layout,
	name string,
) *Endpoint {
	NameMustBeValid(name)

	return &Endpoint{
		name:   name,
		dir:    dir,
		layout: layout,
		owner:  owner,
	}
}

// Name returns the name of the endpoint. It is unique within the owning
// actor.
func (e *Endpoint) Name() string {
	return e.name
}

// Dir returns the direction of the endpoint.
func (e *Endpoint) Dir() Direction {
	return e.dir
}

// Layout returns the token layout of the endpoint.
func (e *Endpoint) Layout() Layout {
	return e.layout
}

// Owner returns the actor that owns the endpoint.
func (e *Endpoint) Owner() Actor {
	return e.owner
}

// Peer returns the endpoint this endpoint is connected to, or nil.
func (e *Endpoint) Peer() *Endpoint {
	return e.peer
}

// Stb reads the strobe signal of the handshake. On a sink it reads the
// connected source's strobe; an unconnected sink reads 0.
func (e *Endpoint) Stb() bool {
	if e.dir == Sink {
		if e.peer == nil {
			return false
		}
		return e.peer.stb
	}

	return e.stb
}

// Ack reads the acknowledge signal of the handshake. On a source it reads
// the connected sink's acknowledge; an unconnected source reads 0.
func (e *Endpoint) Ack() bool {
	if e.dir == Source {
		if e.peer == nil {
			return false
		}
		return e.peer.ack
	}

	return e.ack
}

// Payload reads the payload lines. On a sink it reads the connected
// source's payload.
func (e *Endpoint) Payload() Token {
	if e.dir == Sink {
		if e.peer == nil {
			return nil
		}
		return e.peer.payload
	}

	return e.payload
}

// Fired reports whether a transfer completes on this endpoint in the
// current cycle, that is, stb and ack are both asserted.
func (e *Endpoint) Fired() bool {
	return e.Stb() && e.Ack()
}

// SetStb drives the strobe signal. Only the source side owns stb; calling
// this on a sink endpoint is a construction error. It reports whether the
// signal value changed.
func (e *Endpoint) SetStb(v bool) bool {
	if e.dir != Source {
		panic(fmt.Sprintf("stb of %s is driven by the source side", e.name))
	}

	changed := e.stb != v
	e.stb = v

	return changed
}

// SetPayload drives the payload lines. Only the source side owns the
// payload. It reports whether the payload changed.
func (e *Endpoint) SetPayload(t Token) bool {
	if e.dir != Source {
		panic(fmt.Sprintf(
			"payload of %s is driven by the source side", e.name))
	}

	changed := !e.payload.Equal(t)
	e.payload = t

	return changed
}

// SetAck drives the acknowledge signal. Only the sink side owns ack. It
// reports whether the signal value changed.
func (e *Endpoint) SetAck(v bool) bool {
	if e.dir != Sink {
		panic(fmt.Sprintf("ack of %s is driven by the sink side", e.name))
	}

	changed := e.ack != v
	e.ack = v

	return changed
}

// Connect wires a source endpoint to a sink endpoint. The two layouts must
// be bit-identical. Each endpoint can be connected once; a second
// connection is a construction error.
func Connect(src, snk *Endpoint) error {
	if src.dir != Source || snk.dir != Sink {
		return NewError(ErrProtocolViolation,
			"connection must run from a source to a sink, got %s to %s",
			src.dir, snk.dir)
	}

	if src.peer != nil || snk.peer != nil {
		return NewError(ErrProtocolViolation,
			"endpoint %s or %s is already connected", src.name, snk.name)
	}

	if !src.layout.BitIdentical(snk.layout) {
		return NewError(ErrLayoutMismatch,
			"cannot connect %s %s to %s %s",
			src.name, src.layout, snk.name, snk.layout)
	}

	src.peer = snk
	snk.peer = src

	return nil
}
