// Package plumbing provides the fixed adapter actors that elaboration
// inserts to reconcile record shapes and fan-in/fan-out: Buffer,
// Combinator, Splitter, Cast, Pack, and Unpack.
package plumbing

import "github.com/flownetlab/flownet/flow"

// A Buffer is a single store-and-forward pipeline stage. It is used to
// break long combinational paths without changing the token stream.
type Buffer struct {
	*flow.Pipelined
}

// NewBuffer creates a buffer for tokens of the given layout.
func NewBuffer(name string, layout flow.Layout) *Buffer {
	return &Buffer{
		Pipelined: flow.NewPipelined(
			name, layout, layout, 1,
			func(in flow.Token) flow.Token { return in.Clone() },
		),
	}
}
