package cmd

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/flownetlab/flownet/flow"
	"github.com/flownetlab/flownet/flow/actors"
	"github.com/flownetlab/flownet/flow/network"
	"github.com/flownetlab/flownet/flow/plumbing"
	"github.com/flownetlab/flownet/flow/simflow"
	"github.com/flownetlab/flownet/simulation"
)

const demoValueBits = 16

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a small dataflow network and print its throughput report.",
	Long: "`demo --count [N]` generates N integers through a buffered " +
		"pipeline and reports cycles, idle cycles, and stall cycles per " +
		"token on every edge.",
	Run: func(cmd *cobra.Command, _ []string) {
		count, _ := cmd.Flags().GetInt64("count")
		withMonitor, _ := cmd.Flags().GetBool("monitor")

		runDemo(count, withMonitor)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().Int64("count", 16, "Number of integers to generate")
	demoCmd.Flags().Bool("monitor", false, "Start the monitoring server")
}

// demoDriver sends one parameter token and retires.
type demoDriver struct {
	max  int64
	sent bool
}

func (d *demoDriver) Resume(
	_ []*simflow.TokenRequest,
) []*simflow.TokenRequest {
	if d.sent {
		return nil
	}

	d.sent = true
	return []*simflow.TokenRequest{
		simflow.Send("source", flow.Token{"max": d.max}),
	}
}

// demoCollector receives tokens forever and remembers their values.
type demoCollector struct {
	values []int64
}

func (c *demoCollector) Resume(
	completed []*simflow.TokenRequest,
) []*simflow.TokenRequest {
	for _, r := range completed {
		c.values = append(c.values, r.Payload["value"].(int64))
	}

	return []*simflow.TokenRequest{simflow.Receive("sink")}
}

func runDemo(count int64, withMonitor bool) {
	if count <= 0 || count >= 1<<demoValueBits {
		log.Fatalf("Error: count must be between 1 and %d.",
			1<<demoValueBits-1)
	}

	builder := simulation.MakeBuilder().
		WithOutputFileName("flownet_demo")
	if !withMonitor {
		builder = builder.WithoutMonitoring()
	} else if portStr := os.Getenv("FLOWNET_MONITOR_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			log.Fatalf("Error: invalid FLOWNET_MONITOR_PORT %q.", portStr)
		}
		builder = builder.WithMonitorPort(port)
	}
	s := builder.Build()
	defer s.Terminate()

	driverBehavior := &demoDriver{max: count}
	driver := simflow.MakeAgentBuilder().
		WithSource("source",
			actors.IntSequenceSinkLayout(demoValueBits, 0)).
		WithBehavior(driverBehavior).
		Build("Driver")

	gen := actors.NewIntSequence("Generator", demoValueBits, 0)
	buf := plumbing.NewBuffer("Buffer",
		actors.IntSequenceSourceLayout(demoValueBits))

	collectorBehavior := &demoCollector{}
	collector := simflow.MakeAgentBuilder().
		WithSink("sink", actors.IntSequenceSourceLayout(demoValueBits)).
		WithBehavior(collectorBehavior).
		Build("Collector")

	g := network.New()
	driverID := g.AddActor(driver)
	genID := g.AddActor(gen)
	bufID := g.AddActor(buf)
	collectorID := g.AddActor(collector)

	mustConnect(g, driverID, genID)
	mustConnect(g, genID, bufID)
	mustConnect(g, bufID, collectorID)

	err := s.RegisterNetwork(g)
	if err != nil {
		log.Fatalf("Error registering network: %v", err)
	}

	engine := s.GetEngine()
	done := engine.RunUntil(func() bool {
		return int64(len(collectorBehavior.values)) >= count
	}, int(count)*10+100)
	if !done {
		log.Fatalf("Error: network did not drain all tokens.")
	}

	fmt.Printf("Received %d tokens in %d cycles.\n",
		len(collectorBehavior.values), engine.CurrentCycle())
	fmt.Print(s.GetReporter().Report().String())
}

func mustConnect(g *network.Graph, from, to network.NodeID) {
	err := g.Connect(from, to)
	if err != nil {
		log.Fatalf("Error connecting network: %v", err)
	}
}
