package telemetry

import (
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/beanload/output"
)

// TimingCollector records wall-clock durations. It is safe for concurrent
// use; timers started from different goroutines each get their own branch.
type TimingCollector struct {
	mu    sync.Mutex
	roots []*timerNode
}

type timerNode struct {
	name     string
	start    time.Time
	end      time.Time
	children []*timerNode
}

// NewTimingCollector creates an empty collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{}
}

// Start begins a top-level timer.
func (c *TimingCollector) Start(name string) Timer {
	node := &timerNode{name: name, start: time.Now()}

	c.mu.Lock()
	c.roots = append(c.roots, node)
	c.mu.Unlock()

	return &timingTimer{collector: c, node: node}
}

// Stage is one finished timer, flattened. Depth is 0 for top-level timers.
type Stage struct {
	Name     string        `json:"name"`
	Depth    int           `json:"depth"`
	Duration time.Duration `json:"duration"`
}

// Stages returns every timer in depth-first order. Timers still running
// report the time elapsed so far.
func (c *TimingCollector) Stages() []Stage {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stages []Stage
	var walk func(n *timerNode, depth int)
	walk = func(n *timerNode, depth int) {
		stages = append(stages, Stage{Name: n.name, Depth: depth, Duration: n.duration()})
		for _, child := range n.children {
			walk(child, depth+1)
		}
	}
	for _, root := range c.roots {
		walk(root, 0)
	}
	return stages
}

// Report writes one tree per top-level timer.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, root := range c.roots {
		formatTimingTree(w, root, styles)
	}
}

func (n *timerNode) duration() time.Duration {
	if n.end.IsZero() {
		return time.Since(n.start)
	}
	return n.end.Sub(n.start)
}

type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
}

func (t *timingTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	if t.node.end.IsZero() {
		t.node.end = time.Now()
	}
}

func (t *timingTimer) Child(name string) Timer {
	node := &timerNode{name: name, start: time.Now()}

	t.collector.mu.Lock()
	t.node.children = append(t.node.children, node)
	t.collector.mu.Unlock()

	return &timingTimer{collector: t.collector, node: node}
}
