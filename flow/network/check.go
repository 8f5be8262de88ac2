package network

import "github.com/flownetlab/flownet/flow"

type sigVertex struct {
	node NodeID
	ep   string
	sig  flow.SignalKind
}

// CheckHandshake statically verifies the handshake acyclicity rule over a
// physical graph: an acknowledge may be a pure function of strobes and
// other acknowledges, but no strobe may be combinationally derived,
// directly or transitively, from any acknowledge. Actors declare their
// derivations through flow.CombDependent; actors whose strobes come from
// registered state need not declare anything.
func (g *Graph) CheckHandshake() error {
	if g.IsAbstract() {
		return flow.NewError(flow.ErrAbstractGraph,
			"cannot check the handshake of an abstract graph")
	}

	deps := g.collectSignalDeps()

	for out := range deps {
		if out.sig != flow.SigStb {
			continue
		}

		if bad, found := findAckDependency(out, deps); found {
			return flow.NewError(flow.ErrProtocolViolation,
				"stb of %s.%s is combinationally derived from ack of %s.%s",
				g.nodes[out.node].name, out.ep,
				g.nodes[bad.node].name, bad.ep)
		}
	}

	return nil
}

// collectSignalDeps builds the combinational dependency graph over
// canonical signal vertices. A vertex is the signal as driven by its
// owner; reading the opposite side of an endpoint resolves to the peer's
// driver through the graph's edges.
func (g *Graph) collectSignalDeps() map[sigVertex][]sigVertex {
	deps := make(map[sigVertex][]sigVertex)

	for id, n := range g.nodes {
		cd, ok := n.physical.(flow.CombDependent)
		if !ok {
			continue
		}

		for _, dep := range cd.CombDeps() {
			out := sigVertex{NodeID(id), dep.Out.Endpoint, dep.Out.Signal}

			for _, in := range dep.In {
				inV, found := g.canonicalVertex(NodeID(id), in)
				if !found {
					// unconnected endpoint, the input is constant
					continue
				}

				deps[out] = append(deps[out], inV)
			}

			if _, present := deps[out]; !present {
				deps[out] = nil
			}
		}
	}

	return deps
}

func (g *Graph) canonicalVertex(
	id NodeID,
	ref flow.SignalRef,
) (sigVertex, bool) {
	dir := g.endpointDir(id, ref.Endpoint)

	ownDriven := (ref.Signal == flow.SigStb && dir == flow.Source) ||
		(ref.Signal == flow.SigAck && dir == flow.Sink)
	if ownDriven {
		return sigVertex{id, ref.Endpoint, ref.Signal}, true
	}

	for _, e := range g.edges {
		if ref.Signal == flow.SigStb &&
			e.To == id && e.ToEP == ref.Endpoint {
			return sigVertex{e.From, e.FromEP, flow.SigStb}, true
		}

		if ref.Signal == flow.SigAck &&
			e.From == id && e.FromEP == ref.Endpoint {
			return sigVertex{e.To, e.ToEP, flow.SigAck}, true
		}
	}

	return sigVertex{}, false
}

func (g *Graph) endpointDir(id NodeID, epName string) flow.Direction {
	return g.nodes[id].physical.Endpoint(epName).Dir()
}

func findAckDependency(
	from sigVertex,
	deps map[sigVertex][]sigVertex,
) (sigVertex, bool) {
	visited := make(map[sigVertex]bool)
	stack := []sigVertex{from}

	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[v] {
			continue
		}
		visited[v] = true

		if v.sig == flow.SigAck {
			return v, true
		}

		stack = append(stack, deps[v]...)
	}

	return sigVertex{}, false
}
