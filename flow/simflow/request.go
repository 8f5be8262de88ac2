// Package simflow provides the cycle-stepped simulation engine that
// executes actor behaviors expressed as resumable token-request state
// machines, driving and observing the handshake signals on their behalf.
package simflow

import "github.com/flownetlab/flownet/flow"

// A TokenRequest asks the engine to complete one transfer on one endpoint
// of the requesting actor. A source request carries the payload to
// transmit; a sink request is filled with the received payload when its
// transfer completes.
type TokenRequest struct {
	ID       string
	Endpoint string
	Payload  flow.Token

	done bool
}

// Send creates a source request transmitting the given token.
func Send(endpoint string, payload flow.Token) *TokenRequest {
	return &TokenRequest{
		ID:       flow.GetIDGenerator().Generate(),
		Endpoint: endpoint,
		Payload:  payload,
	}
}

// Receive creates a sink request awaiting one token.
func Receive(endpoint string) *TokenRequest {
	return &TokenRequest{
		ID:       flow.GetIDGenerator().Generate(),
		Endpoint: endpoint,
	}
}

// Completed reports whether the request's transfer has completed.
func (r *TokenRequest) Completed() bool {
	return r.done
}

// A Behavior is the suspendable procedure of a simulated actor, modeled as
// an explicit state machine. Resume is called with the previously returned
// requests once every one of them has completed; the requests of one batch
// are synchronized, so an actor can require several simultaneous external
// transfers as one atomic unit of progress. Returning an empty batch
// yields the cycle without requesting a transfer.
type Behavior interface {
	Resume(completed []*TokenRequest) []*TokenRequest
}

// BehaviorFunc adapts a plain function to the Behavior interface.
type BehaviorFunc func(completed []*TokenRequest) []*TokenRequest

// Resume calls the function.
func (f BehaviorFunc) Resume(completed []*TokenRequest) []*TokenRequest {
	return f(completed)
}
