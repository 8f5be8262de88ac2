// Package network provides the actor-network graph representation and the
// elaboration engine that rewrites an abstract graph into a physical one by
// inserting plumbing actors.
package network

import (
	"fmt"

	"github.com/flownetlab/flownet/flow"
)

// A NodeID is a stable index of a node in a graph. Inserting nodes never
// invalidates existing IDs.
type NodeID int

// Params carries the constructor parameters of an abstract actor.
type Params map[string]interface{}

// An ActorTemplate describes an actor class that can be instantiated
// during elaboration. The endpoint descriptors it declares may carry nil
// layouts for endpoints whose layout is only determined by what is
// attached to them.
type ActorTemplate interface {
	EndpointDescriptors(params Params) []flow.EndpointDescriptor

	// Instantiate builds a physical actor once all endpoint layouts are
	// known. The layouts map holds one resolved layout per declared
	// endpoint.
	Instantiate(
		name string,
		params Params,
		layouts map[string]flow.Layout,
	) (flow.Actor, error)
}

type abstractSpec struct {
	template ActorTemplate
	params   Params
}

// A Node of the graph is either a physical actor or an abstract actor
// reference awaiting instantiation.
type Node struct {
	name     string
	physical flow.Actor
	abstract *abstractSpec
}

// Name returns the name of the node.
func (n *Node) Name() string {
	return n.name
}

// IsAbstract reports whether the node still awaits instantiation.
func (n *Node) IsAbstract() bool {
	return n.abstract != nil
}

// Actor returns the physical actor of the node, or nil while the node is
// abstract.
func (n *Node) Actor() flow.Actor {
	return n.physical
}

// A Connection describes one edge to add to a graph. The endpoint names
// are optional when the actor has exactly one endpoint of the respective
// direction. The field lists project the connection to a named subset of
// the record; nil selects all fields.
type Connection struct {
	From, To                 NodeID
	FromEndpoint, ToEndpoint string
	FromFields, ToFields     []string
}

// An Edge is one typed connection of the graph. Self-loops and parallel
// edges are permitted.
type Edge struct {
	From, To       NodeID
	FromEP, ToEP   string
	FromSub, ToSub []string
}

// A Graph is a directed multigraph of actors. It is built incrementally,
// elaborated in place, and then either realized by a backend or executed
// by the simulation engine. A graph is exclusively owned by its builder;
// it must not be mutated concurrently.
type Graph struct {
	nodes  []*Node
	edges  []*Edge
	passes []Pass

	autoID int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{}
}

// AddActor adds a physical actor node and returns its ID.
func (g *Graph) AddActor(a flow.Actor) NodeID {
	g.nodes = append(g.nodes, &Node{name: a.Name(), physical: a})
	return NodeID(len(g.nodes) - 1)
}

// AddAbstract adds an abstract actor node holding an actor template and
// its constructor parameters, and returns its ID.
func (g *Graph) AddAbstract(
	name string,
	template ActorTemplate,
	params Params,
) NodeID {
	flow.NameMustBeValid(name)

	g.nodes = append(g.nodes, &Node{
		name:     name,
		abstract: &abstractSpec{template: template, params: params},
	})

	return NodeID(len(g.nodes) - 1)
}

// Node returns the node with the given ID.
func (g *Graph) Node(id NodeID) *Node {
	return g.nodes[id]
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Edges returns all edges of the graph.
func (g *Graph) Edges() []*Edge {
	return g.edges
}

// Connect adds a plain whole-record connection between two nodes with
// unambiguous endpoints.
func (g *Graph) Connect(from, to NodeID) error {
	return g.AddConnection(Connection{From: from, To: to})
}

// AddConnection adds an edge to the graph. Omitted endpoint names are
// resolved when the actor has exactly one endpoint of that direction and
// rejected otherwise.
func (g *Graph) AddConnection(c Connection) error {
	fromEP, err := g.resolveEndpoint(c.From, c.FromEndpoint, flow.Source)
	if err != nil {
		return err
	}

	toEP, err := g.resolveEndpoint(c.To, c.ToEndpoint, flow.Sink)
	if err != nil {
		return err
	}

	g.edges = append(g.edges, &Edge{
		From:    c.From,
		To:      c.To,
		FromEP:  fromEP,
		ToEP:    toEP,
		FromSub: c.FromFields,
		ToSub:   c.ToFields,
	})

	return nil
}

// IsAbstract reports whether the graph still needs elaboration: it holds
// an abstract node, an edge with a subrecord projection, or a source
// endpoint feeding more than one sink endpoint.
func (g *Graph) IsAbstract() bool {
	for _, n := range g.nodes {
		if n.IsAbstract() {
			return true
		}
	}

	fanOut := make(map[sourceKey]int)
	for _, e := range g.edges {
		if e.FromSub != nil || e.ToSub != nil {
			return true
		}

		k := sourceKey{e.From, e.FromEP}
		fanOut[k]++
		if fanOut[k] > 1 {
			return true
		}
	}

	return false
}

type sourceKey struct {
	node NodeID
	ep   string
}

type sinkKey struct {
	node NodeID
	ep   string
}

func (g *Graph) resolveEndpoint(
	id NodeID,
	name string,
	dir flow.Direction,
) (string, error) {
	descs := g.descriptors(id)

	if name != "" {
		for _, d := range descs {
			if d.Name == name && d.Dir == dir {
				return name, nil
			}
		}

		return "", flow.NewError(flow.ErrAmbiguousEndpoint,
			"node %s has no %s endpoint named %s",
			g.nodes[id].name, dir, name)
	}

	var candidates []string
	for _, d := range descs {
		if d.Dir == dir {
			candidates = append(candidates, d.Name)
		}
	}

	if len(candidates) != 1 {
		return "", flow.NewError(flow.ErrAmbiguousEndpoint,
			"node %s has %d %s endpoints, the connection must name one",
			g.nodes[id].name, len(candidates), dir)
	}

	return candidates[0], nil
}

func (g *Graph) descriptors(id NodeID) []flow.EndpointDescriptor {
	n := g.nodes[id]

	if n.IsAbstract() {
		return n.abstract.template.EndpointDescriptors(n.abstract.params)
	}

	eps := n.physical.Endpoints()
	descs := make([]flow.EndpointDescriptor, 0, len(eps))
	for _, ep := range eps {
		descs = append(descs, flow.EndpointDescriptor{
			Name:   ep.Name(),
			Dir:    ep.Dir(),
			Layout: ep.Layout(),
		})
	}

	return descs
}

// layoutOf returns the layout of an endpoint, or false while it cannot be
// determined yet.
func (g *Graph) layoutOf(id NodeID, epName string) (flow.Layout, bool) {
	for _, d := range g.descriptors(id) {
		if d.Name == epName {
			return d.Layout, d.Layout != nil
		}
	}

	return nil, false
}

func (g *Graph) autoName(kind string) string {
	g.autoID++
	return fmt.Sprintf("%s%d", kind, g.autoID)
}

// Bind wires the endpoints of a physical graph together so the simulation
// engine can execute it. Binding an abstract graph is an error.
func (g *Graph) Bind() error {
	if g.IsAbstract() {
		return flow.NewError(flow.ErrAbstractGraph,
			"cannot bind an abstract graph, elaborate it first")
	}

	for _, e := range g.edges {
		src := g.nodes[e.From].physical.Endpoint(e.FromEP)
		snk := g.nodes[e.To].physical.Endpoint(e.ToEP)

		if err := flow.Connect(src, snk); err != nil {
			return err
		}
	}

	return nil
}

// Actors returns the physical actors of the graph. It must only be called
// on a physical graph.
func (g *Graph) Actors() []flow.Actor {
	actors := make([]flow.Actor, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n.physical != nil {
			actors = append(actors, n.physical)
		}
	}

	return actors
}
