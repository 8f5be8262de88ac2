package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flownetlab/flownet/flow"
	"github.com/flownetlab/flownet/flow/network"
)

// An EdgeKey identifies one edge of the report by the names of the nodes
// it connects.
type EdgeKey struct {
	From string
	To   string
}

// A Report holds the counters of every monitored edge, keyed by the
// connected node pair and then by the source endpoint name.
type Report map[EdgeKey]map[string]Counters

// A NetworkReporter attaches one EndpointAnalyzer to the source endpoint
// of every edge of a physical graph.
type NetworkReporter struct {
	analyzers map[EdgeKey]map[string]*EndpointAnalyzer
}

// NewNetworkReporter creates a reporter monitoring the whole graph.
// Monitoring an abstract graph is an error.
func NewNetworkReporter(
	g *network.Graph,
	perfLogger PerfLogger,
) (*NetworkReporter, error) {
	if g.IsAbstract() {
		return nil, flow.NewError(flow.ErrAbstractGraph,
			"cannot monitor an abstract graph, elaborate it first")
	}

	r := &NetworkReporter{
		analyzers: make(map[EdgeKey]map[string]*EndpointAnalyzer),
	}

	for _, e := range g.Edges() {
		key := EdgeKey{
			From: g.Node(e.From).Name(),
			To:   g.Node(e.To).Name(),
		}

		ep := g.Node(e.From).Actor().Endpoint(e.FromEP)

		analyzer := MakeEndpointAnalyzerBuilder().
			WithPerfLogger(perfLogger).
			WithEndpoint(ep).
			Build()

		if r.analyzers[key] == nil {
			r.analyzers[key] = make(map[string]*EndpointAnalyzer)
		}
		r.analyzers[key][e.FromEP] = analyzer
	}

	return r, nil
}

// Report returns the counters accumulated so far.
func (r *NetworkReporter) Report() Report {
	report := make(Report, len(r.analyzers))

	for key, byEP := range r.analyzers {
		report[key] = make(map[string]Counters, len(byEP))
		for epName, analyzer := range byEP {
			report[key][epName] = analyzer.Counters()
		}
	}

	return report
}

// String renders the report as a table, one line per monitored endpoint,
// sorted by edge.
func (r Report) String() string {
	var keys []EdgeKey
	for key := range r {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].From != keys[j].From {
			return keys[i].From < keys[j].From
		}
		return keys[i].To < keys[j].To
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%-40s %10s %10s %10s\n", "edge", "CPT", "IPT", "NPT")

	for _, key := range keys {
		var epNames []string
		for epName := range r[key] {
			epNames = append(epNames, epName)
		}
		sort.Strings(epNames)

		for _, epName := range epNames {
			c := r[key][epName]
			fmt.Fprintf(&b, "%-40s %10.3f %10.3f %10.3f\n",
				fmt.Sprintf("%s -> %s (%s)", key.From, key.To, epName),
				c.CPT(), c.IPT(), c.NPT())
		}
	}

	return b.String()
}
