// Package monitoring turns a running simulation into a small web server
// that reports progress, throughput counters, and resource usage.
package monitoring

import (
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"

	"github.com/flownetlab/flownet/analysis"
	"github.com/flownetlab/flownet/flow/simflow"
)

// Monitor can turn a simulation into a server and allows external
// monitoring of the simulation.
type Monitor struct {
	engine     *simflow.Engine
	reporter   *analysis.NetworkReporter
	portNumber int
	url        string

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e *simflow.Engine) {
	m.engine = e
}

// RegisterReporter sets the throughput reporter served by the monitor.
func (m *Monitor) RegisterReporter(r *analysis.NetworkReporter) {
	m.reporter = r
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars)-1)
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// StartServer starts the monitor as a web server with a custom port if
// wanted.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()
	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/cycle", m.cycle)
	r.HandleFunc("/api/report", m.report)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	port := listener.Addr().(*net.TCPAddr).Port
	m.url = "http://localhost:" + strconv.Itoa(port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", m.url)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

// OpenDashboard opens the monitoring page in the default browser.
func (m *Monitor) OpenDashboard() {
	if m.url == "" {
		return
	}

	_ = browser.OpenURL(m.url)
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) cycle(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"cycle\":%d}", m.engine.CurrentCycle())
}

func (m *Monitor) report(w http.ResponseWriter, _ *http.Request) {
	if m.reporter == nil {
		http.Error(w, "no reporter registered", http.StatusNotFound)
		return
	}

	type line struct {
		From     string   `json:"from"`
		To       string   `json:"to"`
		Endpoint string   `json:"endpoint"`
		CPT      *float64 `json:"cpt"`
		IPT      *float64 `json:"ipt"`
		NPT      *float64 `json:"npt"`
	}

	var lines []line
	for key, byEP := range m.reporter.Report() {
		for epName, c := range byEP {
			lines = append(lines, line{
				From:     key.From,
				To:       key.To,
				Endpoint: epName,
				CPT:      finiteOrNull(c.CPT()),
				IPT:      finiteOrNull(c.IPT()),
				NPT:      finiteOrNull(c.NPT()),
			})
		}
	}

	writeJSON(w, lines)
}

// finiteOrNull maps the infinite ratios of edges without transfers to
// JSON null, which encoding/json cannot do for a bare float64.
func finiteOrNull(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}

	return &v
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	writeJSON(w, m.progressBars)
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memInfo, err := p.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"cpu_percent": cpuPercent,
		"memory_rss":  memInfo.RSS,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(v)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
