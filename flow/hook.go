package flow

// A HookPos names a place in the simulation where hooks can fire.
// Positions are compared by identity, so each one is a package-level
// variable.
type HookPos struct {
	Name string
}

// Endpoint hook positions. Sample fires once per cycle on every observed
// source endpoint with an EndpointSample; Transfer fires in the cycles
// where the handshake completes, with the transferred Token.
var (
	HookPosEndpointSample   = &HookPos{Name: "Endpoint Sample"}
	HookPosEndpointTransfer = &HookPos{Name: "Endpoint Transfer"}
)

// HookCtx carries the information about one hook invocation.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
}

// A Hook is a piece of instrumentation invoked by a Hookable.
type Hook interface {
	Func(ctx HookCtx)
}

// Hookable is anything hooks can attach to.
type Hookable interface {
	AcceptHook(hook Hook)
}

// HookableBase implements Hookable by keeping the hook list. Types embed
// it and call InvokeHook at their hook positions.
type HookableBase struct {
	Hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// NumHooks returns the number of registered hooks. Invokers use it to
// skip building hook contexts when nobody listens.
func (h *HookableBase) NumHooks() int {
	return len(h.Hooks)
}

// InvokeHook calls every registered hook with the given context.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
