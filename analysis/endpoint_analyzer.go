package analysis

import (
	"math"

	"github.com/flownetlab/flownet/flow"
	"github.com/tebeka/atexit"
)

// Counters accumulates the handshake statistics of one endpoint over a
// simulation run.
type Counters struct {
	Cycles      int64
	Transfers   int64
	IdleCycles  int64
	StallCycles int64
}

// CPT returns the cycles-per-token ratio, infinite when no token
// transferred.
func (c Counters) CPT() float64 {
	if c.Transfers == 0 {
		return math.Inf(1)
	}

	return float64(c.Cycles) / float64(c.Transfers)
}

// IPT returns the inactivity-cycles-per-token ratio: cycles with the
// strobe low per transferred token.
func (c Counters) IPT() float64 {
	if c.Transfers == 0 {
		return math.Inf(1)
	}

	return float64(c.IdleCycles) / float64(c.Transfers)
}

// NPT returns the stall-cycles-per-token ratio: cycles with the strobe
// high but unacknowledged per transferred token.
func (c Counters) NPT() float64 {
	if c.Transfers == 0 {
		return math.Inf(1)
	}

	return float64(c.StallCycles) / float64(c.Transfers)
}

// An EndpointAnalyzer is a hook that accumulates handshake statistics of
// the endpoint it is attached to, one sample per cycle.
type EndpointAnalyzer struct {
	PerfLogger

	where    string
	counters Counters
}

// Func counts one cycle sample.
func (a *EndpointAnalyzer) Func(ctx flow.HookCtx) {
	if ctx.Pos != flow.HookPosEndpointSample {
		return
	}

	sample := ctx.Item.(flow.EndpointSample)

	a.counters.Cycles++

	switch {
	case sample.Stb && sample.Ack:
		a.counters.Transfers++
	case sample.Stb:
		a.counters.StallCycles++
	default:
		a.counters.IdleCycles++
	}
}

// Counters returns the statistics accumulated so far.
func (a *EndpointAnalyzer) Counters() Counters {
	return a.counters
}

// Summarize writes the metrics to the perf logger, if one is configured.
// An endpoint without a completed transfer has no per-token ratios, so
// nothing is recorded for it and neither sink ever sees a non-finite
// value.
func (a *EndpointAnalyzer) Summarize() {
	if a.PerfLogger == nil {
		return
	}

	c := a.counters
	if c.Transfers == 0 {
		return
	}

	a.AddDataEntry(PerfEntry{
		Where: a.where, What: "CPT", Value: c.CPT(), Unit: "Cycle/Token",
	})
	a.AddDataEntry(PerfEntry{
		Where: a.where, What: "IPT", Value: c.IPT(), Unit: "Cycle/Token",
	})
	a.AddDataEntry(PerfEntry{
		Where: a.where, What: "NPT", Value: c.NPT(), Unit: "Cycle/Token",
	})
}

// EndpointAnalyzerBuilder can build an EndpointAnalyzer.
type EndpointAnalyzerBuilder struct {
	perfLogger PerfLogger
	endpoint   *flow.Endpoint
}

// MakeEndpointAnalyzerBuilder creates an EndpointAnalyzerBuilder.
func MakeEndpointAnalyzerBuilder() EndpointAnalyzerBuilder {
	return EndpointAnalyzerBuilder{}
}

// WithPerfLogger sets the logger the analyzer summarizes to at exit.
func (b EndpointAnalyzerBuilder) WithPerfLogger(
	l PerfLogger,
) EndpointAnalyzerBuilder {
	b.perfLogger = l
	return b
}

// WithEndpoint sets the endpoint to be observed.
func (b EndpointAnalyzerBuilder) WithEndpoint(
	ep *flow.Endpoint,
) EndpointAnalyzerBuilder {
	b.endpoint = ep
	return b
}

// Build creates an EndpointAnalyzer and attaches it to the endpoint.
func (b EndpointAnalyzerBuilder) Build() *EndpointAnalyzer {
	if b.endpoint == nil {
		panic("EndpointAnalyzer requires an endpoint")
	}

	a := &EndpointAnalyzer{
		PerfLogger: b.perfLogger,
		where:      b.endpoint.Owner().Name() + "." + b.endpoint.Name(),
	}

	b.endpoint.AcceptHook(a)

	if b.perfLogger != nil {
		atexit.Register(func() { a.Summarize() })
	}

	return a
}
