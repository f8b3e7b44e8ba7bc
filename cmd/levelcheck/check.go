package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/sushi-merge/board"
	"github.com/lixenwraith/sushi-merge/catalog"
	"github.com/lixenwraith/sushi-merge/engine"
	"github.com/lixenwraith/sushi-merge/event"
	"github.com/lixenwraith/sushi-merge/item"
	"github.com/lixenwraith/sushi-merge/level"
	"github.com/lixenwraith/sushi-merge/status"
)

// metrics are the exported sweep series, all labelled by level name
type metrics struct {
	boards     *prometheus.CounterVec
	warnings   *prometheus.CounterVec
	violations *prometheus.CounterVec
	shuffles   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	depth      *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		boards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sushi_levelcheck_boards_total",
			Help: "Boards generated per level.",
		}, []string{"level"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sushi_levelcheck_warnings_total",
			Help: "Clamping warnings raised while generating.",
		}, []string{"level"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sushi_levelcheck_violations_total",
			Help: "Invariant violations found in generated boards.",
		}, []string{"level", "stage"}),
		shuffles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sushi_levelcheck_shuffle_retries_total",
			Help: "Shuffler permutations rejected before a valid one.",
		}, []string{"level"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sushi_levelcheck_generate_seconds",
			Help:    "Time to generate one board.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}, []string{"level"}),
		depth: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sushi_levelcheck_reserve_layers",
			Help:    "Reserve layers per plate.",
			Buckets: prometheus.LinearBuckets(0, 1, 8),
		}, []string{"level"}),
	}
	reg.MustRegister(m.boards, m.warnings, m.violations, m.shuffles, m.duration, m.depth)
	return m
}

// levelReport aggregates one level's sweep
type levelReport struct {
	Name       string
	Boards     int
	Warnings   int
	Violations int
	Failed     []uint64 // Seeds with any violation, ascending
}

type checker struct {
	cat     catalog.Catalog
	metrics *metrics

	mu      sync.Mutex
	reports map[string]*levelReport
}

func newChecker(cat catalog.Catalog, m *metrics) *checker {
	return &checker{cat: cat, metrics: m, reports: make(map[string]*levelReport)}
}

// sweep generates every level for seeds base..base+n-1 on up to workers goroutines
func (c *checker) sweep(ctx context.Context, specs []level.Spec, base uint64, n, workers int) ([]levelReport, error) {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for _, spec := range specs {
		c.report(spec.Name)
		for i := 0; i < n; i++ {
			seed := base + uint64(i)
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				c.check(spec, seed)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	out := make([]levelReport, 0, len(specs))
	for _, spec := range specs {
		r := c.reports[spec.Name]
		sort.Slice(r.Failed, func(i, j int) bool { return r.Failed[i] < r.Failed[j] })
		out = append(out, *r)
	}
	return out, nil
}

func (c *checker) report(name string) *levelReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.reports[name]
	if !ok {
		r = &levelReport{Name: name}
		c.reports[name] = r
	}
	return r
}

// check generates one board, verifies it, then loads it and verifies a shuffle of it
func (c *checker) check(spec level.Spec, seed uint64) {
	rng := engine.NewRand(seed)
	start := time.Now()
	res := level.NewGenerator(nil).Generate(spec, rng, c.cat)
	c.metrics.duration.WithLabelValues(spec.Name).Observe(time.Since(start).Seconds())

	violations := len(res.Violations)
	c.metrics.violations.WithLabelValues(spec.Name, "generate").Add(float64(len(res.Violations)))
	for _, p := range res.Plates {
		c.metrics.depth.WithLabelValues(spec.Name).Observe(float64(len(p.Reserve)))
	}

	q := event.NewEventQueue()
	reg := status.NewRegistry()
	b := board.New(res.Plates, board.Options{Queue: q, Status: reg})
	loaded := len(b.CheckInvariants(nil))

	engineRng := rand.New(rand.NewPCG(seed, ^seed))
	items := item.New(item.Options{Board: b, Rand: engineRng, Queue: q, Status: reg})
	shuffled := 0
	if items.UseShuffler() {
		shuffled = len(board.VerifyTriples(b.Snapshot()))
		items.Settle()
		shuffled += len(b.CheckInvariants(nil))
		c.metrics.shuffles.WithLabelValues(spec.Name).Add(float64(reg.Counter(status.ShuffleRetries).Load()))
	}
	c.metrics.violations.WithLabelValues(spec.Name, "load").Add(float64(loaded))
	c.metrics.violations.WithLabelValues(spec.Name, "shuffle").Add(float64(shuffled))
	violations += loaded + shuffled

	c.metrics.boards.WithLabelValues(spec.Name).Inc()
	c.metrics.warnings.WithLabelValues(spec.Name).Add(float64(len(res.Warnings)))

	r := c.report(spec.Name)
	c.mu.Lock()
	defer c.mu.Unlock()
	r.Boards++
	r.Warnings += len(res.Warnings)
	r.Violations += violations
	if violations > 0 {
		r.Failed = append(r.Failed, seed)
	}
}
