package status

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

// Gauge is an atomic float64, zero value ready to use
type Gauge struct {
	bits atomic.Uint64
}

func (g *Gauge) Set(v float64) { g.bits.Store(math.Float64bits(v)) }
func (g *Gauge) Get() float64  { return math.Float64frombits(g.bits.Load()) }

// Registry holds named counters and gauges
// Registration takes the mutex; callers cache the returned pointers and write atomics directly
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*atomic.Int64
	gauges   map[string]*Gauge
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]*atomic.Int64),
		gauges:   make(map[string]*Gauge),
	}
}

// Counter returns the counter for name, creating it on first use
func (r *Registry) Counter(name string) *atomic.Int64 {
	return lookup(&r.mu, r.counters, name)
}

// Gauge returns the gauge for name, creating it on first use
func (r *Registry) Gauge(name string) *Gauge {
	return lookup(&r.mu, r.gauges, name)
}

func lookup[T any](mu *sync.RWMutex, m map[string]*T, name string) *T {
	mu.RLock()
	ptr, ok := m[name]
	mu.RUnlock()
	if ok {
		return ptr
	}

	mu.Lock()
	defer mu.Unlock()
	if ptr, ok := m[name]; ok {
		return ptr
	}
	ptr = new(T)
	m[name] = ptr
	return ptr
}

// Sample is one metric value in a snapshot
type Sample struct {
	Name  string
	Value float64
}

// Snapshot returns all metrics sorted by name
func (r *Registry) Snapshot() []Sample {
	r.mu.RLock()
	out := make([]Sample, 0, len(r.counters)+len(r.gauges))
	for name, c := range r.counters {
		out = append(out, Sample{Name: name, Value: float64(c.Load())})
	}
	for name, g := range r.gauges {
		out = append(out, Sample{Name: name, Value: g.Get()})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Reset zeroes every metric without dropping cached pointers
func (r *Registry) Reset() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.counters {
		c.Store(0)
	}
	for _, g := range r.gauges {
		g.Set(0)
	}
}
