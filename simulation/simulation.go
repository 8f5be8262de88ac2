// Package simulation bundles the parts of one simulation run: the cycle
// engine, the data recorder, the throughput reporter, and the monitor.
package simulation

import (
	"github.com/flownetlab/flownet/analysis"
	"github.com/flownetlab/flownet/datarecording"
	"github.com/flownetlab/flownet/flow/network"
	"github.com/flownetlab/flownet/flow/simflow"
	"github.com/flownetlab/flownet/monitoring"
)

// A Simulation provides the service requires to define a simulation.
type Simulation struct {
	id string

	engine       *simflow.Engine
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	reporter     *analysis.NetworkReporter
}

// ID returns the unique ID of the simulation run.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the cycle engine of the simulation.
func (s *Simulation) GetEngine() *simflow.Engine {
	return s.engine
}

// GetDataRecorder returns the data recorder used by the simulation.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor of the simulation, nil when monitoring
// is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// GetReporter returns the network throughput reporter, nil before a
// network is registered.
func (s *Simulation) GetReporter() *analysis.NetworkReporter {
	return s.reporter
}

// RegisterNetwork binds a physical graph, registers its actors with the
// engine, and attaches the throughput reporter to all its edges.
func (s *Simulation) RegisterNetwork(g *network.Graph) error {
	if err := g.Bind(); err != nil {
		return err
	}

	if err := s.engine.RegisterGraph(g); err != nil {
		return err
	}

	reporter, err := analysis.NewNetworkReporter(
		g, analysis.NewDBPerfLogger(s.dataRecorder))
	if err != nil {
		return err
	}

	s.reporter = reporter
	if s.monitor != nil {
		s.monitor.RegisterReporter(reporter)
	}

	return nil
}

// Terminate flushes all the recorded data. It must be called at the end
// of the simulation.
func (s *Simulation) Terminate() {
	s.dataRecorder.Flush()
}
