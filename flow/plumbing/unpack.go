package plumbing

import (
	"fmt"

	"github.com/flownetlab/flownet/flow"
)

// ChunkLayout builds the wide-side layout of Pack and Unpack: fields
// chunk0..chunk<k-1>, each a nested record of the chunk layout.
func ChunkLayout(chunk flow.Layout, k int) flow.Layout {
	fields := make([]flow.Field, 0, k)
	for i := 0; i < k; i++ {
		fields = append(fields, flow.Record(chunkName(i), chunk))
	}

	return flow.NewLayout(fields...)
}

func chunkName(i int) string {
	return fmt.Sprintf("chunk%d", i)
}

// An Unpack consumes one token whose fields are chunk0..chunk<k-1>, each of
// layout L, and produces k successive tokens of layout L in ascending chunk
// order, one per accepted output transfer.
type Unpack struct {
	*flow.ActorBase

	sink   *flow.Endpoint
	source *flow.Endpoint
	k      int

	holding bool
	tok     flow.Token
	idx     int
}

// NewUnpack creates an unpacker emitting k tokens of the chunk layout per
// input token.
func NewUnpack(name string, chunk flow.Layout, k int) *Unpack {
	u := &Unpack{
		ActorBase: flow.NewActorBase(name),
		k:         k,
	}

	u.sink = u.AddEndpoint(u, flow.Sink, ChunkLayout(chunk, k), "sink")
	u.source = u.AddEndpoint(u, flow.Source, chunk, "source")

	return u
}

// Busy is 1 while chunks of a consumed token remain to be emitted.
func (u *Unpack) Busy() bool {
	return u.holding
}

// Sync accepts a new token when idle and presents the current chunk.
func (u *Unpack) Sync() bool {
	changed := u.sink.SetAck(!u.holding)
	changed = u.source.SetStb(u.holding) || changed

	if u.holding {
		chunk := u.tok[chunkName(u.idx)].(flow.Token)
		changed = u.source.SetPayload(chunk) || changed
	}

	return changed
}

// Commit applies the clock edge.
func (u *Unpack) Commit() {
	switch {
	case !u.holding && u.sink.Fired():
		u.holding = true
		u.tok = u.sink.Payload().Clone()
		u.idx = 0
	case u.holding && u.source.Fired():
		u.idx++
		if u.idx == u.k {
			u.holding = false
		}
	}
}

// CombDeps declares no derivations: both handshake outputs come from
// registered state.
func (u *Unpack) CombDeps() []flow.SignalDep {
	return nil
}
