package actors

import "github.com/flownetlab/flownet/flow"

// A Bus is the external memory bus a bus-master actor drives. The core
// does not implement the bus protocol; a simulation supplies a model and
// a hardware backend supplies the real master.
type Bus interface {
	Read(address int64) int64
	Write(address, data int64)
}

// A StallingBus is a Bus that can refuse new transactions. A bus master
// consults it every cycle and withholds its acknowledge while the bus
// stalls, so the bus stall is the master's only throughput limiter.
// The stall state must be stable within a cycle.
type StallingBus interface {
	Bus
	Stalled() bool
}

// BusReaderSinkLayout returns the request layout of a DMA reader.
func BusReaderSinkLayout() flow.Layout {
	return flow.NewLayout(flow.Scalar("address", flow.Unsigned(30)))
}

// BusReaderSourceLayout returns the completion layout of a DMA reader.
func BusReaderSourceLayout() flow.Layout {
	return flow.NewLayout(flow.Scalar("data", flow.Unsigned(32)))
}

// BusWriterSinkLayout returns the request layout of a DMA writer.
func BusWriterSinkLayout() flow.Layout {
	return flow.NewLayout(
		flow.Scalar("address", flow.Unsigned(30)),
		flow.Scalar("data", flow.Unsigned(32)),
	)
}

// NewBusReader creates a pipelined DMA reader actor: one address token in,
// one data token out, with the given bus latency. Its only throughput
// limiter is the downstream stall, matching the bus-master contract.
func NewBusReader(name string, bus Bus, latency int) *flow.Pipelined {
	return flow.NewPipelined(
		name,
		BusReaderSinkLayout(),
		BusReaderSourceLayout(),
		latency,
		func(in flow.Token) flow.Token {
			return flow.Token{"data": bus.Read(in["address"].(int64))}
		},
	)
}

// A BusWriter consumes address/data tokens and issues bus writes. It has
// no source endpoint.
type BusWriter struct {
	*flow.ActorBase

	sink *flow.Endpoint
	bus  Bus
}

// NewBusWriter creates a DMA writer actor.
func NewBusWriter(name string, bus Bus) *BusWriter {
	w := &BusWriter{
		ActorBase: flow.NewActorBase(name),
		bus:       bus,
	}

	w.sink = w.AddEndpoint(w, flow.Sink, BusWriterSinkLayout(), "sink")

	return w
}

// Busy is always false; an accepted write retires in the accepting
// cycle.
func (w *BusWriter) Busy() bool {
	return false
}

// Sync accepts a request whenever the bus does, holding the upstream
// source stalled while the bus stalls.
func (w *BusWriter) Sync() bool {
	return w.sink.SetAck(!w.stalled())
}

func (w *BusWriter) stalled() bool {
	if b, ok := w.bus.(StallingBus); ok {
		return b.Stalled()
	}

	return false
}

// Commit issues the bus write of an accepted request.
func (w *BusWriter) Commit() {
	if w.sink.Fired() {
		payload := w.sink.Payload()
		w.bus.Write(payload["address"].(int64), payload["data"].(int64))
	}
}

// A MapBus is a sparse memory model backing bus-master actors in
// simulation.
type MapBus struct {
	mem map[int64]int64
}

// NewMapBus creates an empty memory model.
func NewMapBus() *MapBus {
	return &MapBus{mem: make(map[int64]int64)}
}

// Read returns the word at the address, zero if never written.
func (b *MapBus) Read(address int64) int64 {
	return b.mem[address]
}

// Write stores a word at the address.
func (b *MapBus) Write(address, data int64) {
	b.mem[address] = data
}
