package network

import (
	"github.com/flownetlab/flownet/flow"
	"github.com/flownetlab/flownet/flow/plumbing"
)

// A Pass is a pluggable graph-optimization step run between elaboration
// fixpoint iterations. Passes operate through the same node and edge
// insertion and replacement primitives as elaboration itself. The core
// ships none.
type Pass func(g *Graph) error

// RegisterPass adds an optimization pass to run during elaboration.
func (g *Graph) RegisterPass(p Pass) {
	g.passes = append(g.passes, p)
}

// Elaborate rewrites the graph in place until it is physical. Per
// iteration it first resolves, to a fixpoint, fan-in through Combinators
// and fan-out or subrecord projection through Splitters, and only then
// instantiates abstract actors, whose true endpoint layouts may only be
// determined by the connections they participate in.
func (g *Graph) Elaborate() error {
	for {
		changed := false

		for {
			fanIn, err := g.resolveFanIn()
			if err != nil {
				return err
			}

			fanOut, err := g.resolveFanOut()
			if err != nil {
				return err
			}

			if !fanIn && !fanOut {
				break
			}
			changed = true
		}

		instantiated, err := g.instantiateAbstract()
		if err != nil {
			return err
		}
		changed = changed || instantiated

		for _, p := range g.passes {
			if err := p(g); err != nil {
				return err
			}
		}

		if !changed {
			break
		}
	}

	if g.IsAbstract() {
		return flow.NewError(flow.ErrUnresolvedAbstractActor,
			"graph cannot be made physical, "+
				"an abstract actor's endpoint layouts remain unresolved")
	}

	return g.checkEdgeLayouts()
}

// resolveFanIn replaces every group of edges driving one sink endpoint,
// whether whole-record or by distinct subrecords, with one Combinator.
func (g *Graph) resolveFanIn() (bool, error) {
	groups := make(map[sinkKey][]*Edge)
	var order []sinkKey

	for _, e := range g.edges {
		k := sinkKey{e.To, e.ToEP}
		if len(groups[k]) == 0 {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e)
	}

	for _, k := range order {
		group := groups[k]
		if len(group) < 2 {
			continue
		}

		done, err := g.insertCombinator(k, group)
		if err != nil {
			return false, err
		}

		if done {
			return true, nil
		}
	}

	return false, nil
}

func (g *Graph) insertCombinator(
	k sinkKey,
	group []*Edge,
) (bool, error) {
	sinkLayout, known := g.layoutOf(k.node, k.ep)
	if !known {
		return false, nil
	}

	subrecords := make([][]string, 0, len(group))
	for _, e := range group {
		fields, known := g.contributedFields(e)
		if !known {
			return false, nil
		}
		subrecords = append(subrecords, fields)
	}

	comb, err := plumbing.NewCombinator(
		g.autoName("Combinator"), sinkLayout, subrecords)
	if err != nil {
		return false, err
	}

	combID := g.AddActor(comb)

	kept := g.edgesExcept(group)
	for i, e := range group {
		kept = append(kept, &Edge{
			From:    e.From,
			FromEP:  e.FromEP,
			FromSub: e.FromSub,
			To:      combID,
			ToEP:    comb.Sinks()[i].Name(),
		})
	}

	kept = append(kept, &Edge{
		From:   combID,
		FromEP: "source",
		To:     k.node,
		ToEP:   k.ep,
	})

	g.edges = kept

	return true, nil
}

// contributedFields returns the field names an edge contributes to its
// sink: the sink projection if given, else the source projection, else all
// fields of the source layout.
func (g *Graph) contributedFields(e *Edge) ([]string, bool) {
	if e.ToSub != nil {
		return e.ToSub, true
	}

	if e.FromSub != nil {
		return e.FromSub, true
	}

	srcLayout, known := g.layoutOf(e.From, e.FromEP)
	if !known {
		return nil, false
	}

	return srcLayout.FieldNames(), true
}

// resolveFanOut replaces every source endpoint that drives more than one
// edge, or drives a sink through a subrecord projection, with one
// Splitter.
func (g *Graph) resolveFanOut() (bool, error) {
	groups := make(map[sourceKey][]*Edge)
	var order []sourceKey

	for _, e := range g.edges {
		k := sourceKey{e.From, e.FromEP}
		if len(groups[k]) == 0 {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e)
	}

	for _, k := range order {
		group := groups[k]
		if !needsSplitter(group) {
			continue
		}

		done, err := g.insertSplitter(k, group)
		if err != nil {
			return false, err
		}

		if done {
			return true, nil
		}
	}

	return false, nil
}

func needsSplitter(group []*Edge) bool {
	if len(group) > 1 {
		return true
	}

	e := group[0]

	return e.FromSub != nil || e.ToSub != nil
}

func (g *Graph) insertSplitter(
	k sourceKey,
	group []*Edge,
) (bool, error) {
	srcLayout, known := g.layoutOf(k.node, k.ep)
	if !known {
		return false, nil
	}

	subrecords := make([][]string, 0, len(group))
	for _, e := range group {
		fields := e.FromSub
		if fields == nil {
			fields = e.ToSub
		}
		subrecords = append(subrecords, fields)
	}

	split, err := plumbing.NewSplitter(
		g.autoName("Splitter"), srcLayout, subrecords)
	if err != nil {
		return false, err
	}

	splitID := g.AddActor(split)

	kept := g.edgesExcept(group)
	kept = append(kept, &Edge{
		From:   k.node,
		FromEP: k.ep,
		To:     splitID,
		ToEP:   "sink",
	})

	for i, e := range group {
		kept = append(kept, &Edge{
			From:   splitID,
			FromEP: split.Sources()[i].Name(),
			To:     e.To,
			ToEP:   e.ToEP,
		})
	}

	g.edges = kept

	return true, nil
}

// instantiateAbstract replaces every abstract node whose endpoint layouts
// are now determined by a physical actor. Incident edges keep their node
// IDs and need no rebinding.
func (g *Graph) instantiateAbstract() (bool, error) {
	changed := false

	for id, n := range g.nodes {
		if !n.IsAbstract() {
			continue
		}

		layouts, resolved := g.resolveTemplateLayouts(NodeID(id), n)
		if !resolved {
			continue
		}

		actor, err := n.abstract.template.Instantiate(
			n.name, n.abstract.params, layouts)
		if err != nil {
			return false, flow.NewError(flow.ErrUnresolvedAbstractActor,
				"cannot instantiate %s: %v", n.name, err)
		}

		n.physical = actor
		n.abstract = nil
		changed = true
	}

	return changed, nil
}

func (g *Graph) resolveTemplateLayouts(
	id NodeID,
	n *Node,
) (map[string]flow.Layout, bool) {
	descs := n.abstract.template.EndpointDescriptors(n.abstract.params)
	layouts := make(map[string]flow.Layout, len(descs))

	for _, d := range descs {
		if d.Layout != nil {
			layouts[d.Name] = d.Layout
			continue
		}

		layout, found := g.peerLayout(id, d)
		if !found {
			return nil, false
		}

		layouts[d.Name] = layout
	}

	return layouts, true
}

// peerLayout derives a templated endpoint's layout from the connection it
// participates in.
func (g *Graph) peerLayout(
	id NodeID,
	d flow.EndpointDescriptor,
) (flow.Layout, bool) {
	for _, e := range g.edges {
		if d.Dir == flow.Sink && e.To == id && e.ToEP == d.Name {
			srcLayout, known := g.layoutOf(e.From, e.FromEP)
			if !known {
				return nil, false
			}

			layout, err := srcLayout.Project(e.FromSub)
			if err != nil {
				return nil, false
			}

			return layout, true
		}

		if d.Dir == flow.Source && e.From == id && e.FromEP == d.Name {
			snkLayout, known := g.layoutOf(e.To, e.ToEP)
			if !known {
				return nil, false
			}

			layout, err := snkLayout.Project(e.ToSub)
			if err != nil {
				return nil, false
			}

			return layout, true
		}
	}

	return nil, false
}

// checkEdgeLayouts verifies that every edge connects bit-identical
// layouts after adapter insertion.
func (g *Graph) checkEdgeLayouts() error {
	for _, e := range g.edges {
		srcLayout, _ := g.layoutOf(e.From, e.FromEP)
		snkLayout, _ := g.layoutOf(e.To, e.ToEP)

		srcProj, err := srcLayout.Project(e.FromSub)
		if err != nil {
			return err
		}

		snkProj, err := snkLayout.Project(e.ToSub)
		if err != nil {
			return err
		}

		if !srcProj.BitIdentical(snkProj) {
			return flow.NewError(flow.ErrLayoutMismatch,
				"edge %s.%s %s -> %s.%s %s connects non-identical layouts",
				g.nodes[e.From].name, e.FromEP, srcProj,
				g.nodes[e.To].name, e.ToEP, snkProj)
		}
	}

	return nil
}

func (g *Graph) edgesExcept(drop []*Edge) []*Edge {
	dropSet := make(map[*Edge]bool, len(drop))
	for _, e := range drop {
		dropSet[e] = true
	}

	kept := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		if !dropSet[e] {
			kept = append(kept, e)
		}
	}

	return kept
}
