package engine

import (
	"errors"
	"io"
	"log"
	"math/rand/v2"
	"time"

	"github.com/lixenwraith/sushi-merge/board"
	"github.com/lixenwraith/sushi-merge/catalog"
	"github.com/lixenwraith/sushi-merge/event"
	"github.com/lixenwraith/sushi-merge/item"
	"github.com/lixenwraith/sushi-merge/level"
	"github.com/lixenwraith/sushi-merge/status"
)

// ErrNoLevel is returned by Restart before any level was started
var ErrNoLevel = errors.New("no level started")

// State is the session outcome
type State int

const (
	StateIdle State = iota
	StatePlaying
	StateWon
	StateLost
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateWon:
		return "won"
	case StateLost:
		return "lost"
	default:
		return "unknown"
	}
}

// Config wires a Game's collaborators, zero values pick defaults
type Config struct {
	Catalog        catalog.Catalog
	Clock          TimeProvider
	Status         *status.Registry
	Logger         *log.Logger
	HintDelay      time.Duration
	FreezeDuration time.Duration
}

// Game is one play session: it owns the board, power-ups, timer and hints of the current level
// All methods run on the caller's goroutine; only the event queue is safe to share
type Game struct {
	cfg    Config
	log    *log.Logger
	status *status.Registry
	gen    *level.Generator
	queue  *event.EventQueue
	router *event.Router[*Game]

	spec     level.Spec
	seed     uint64
	result   level.Result
	loaded   bool
	prepared bool // Started from fixed plates rather than generated

	rng   *rand.Rand
	board *board.Board
	items *item.Engine
	timer *Timer
	hints *HintTracker
	state State

	remaining *status.Gauge
}

// New creates a session with no level loaded
func New(cfg Config) *Game {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = NewMonotonicTimeProvider()
	}
	if cfg.Status == nil {
		cfg.Status = status.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}

	queue := event.NewEventQueue()
	g := &Game{
		cfg:       cfg,
		log:       cfg.Logger,
		status:    cfg.Status,
		gen:       level.NewGenerator(cfg.Logger),
		queue:     queue,
		router:    event.NewRouter[*Game](queue),
		remaining: cfg.Status.Gauge(status.TimeRemaining),
	}
	g.router.Register(stateChecker{})
	return g
}

// Register adds a handler that sees every dispatched event, across levels
func (g *Game) Register(h event.Handler[*Game]) {
	g.router.Register(h)
}

// NewRand returns the generator stream for a level seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
}

// Start generates and begins a level
func (g *Game) Start(spec level.Spec, seed uint64) level.Result {
	rng := NewRand(seed)
	res := g.gen.Generate(spec, rng, g.cfg.Catalog)
	g.load(res.Effective, seed, res, rng)
	g.prepared = false
	g.log.Printf("[game] started %s seed %d with %d warnings", res.Effective, seed, len(res.Warnings))
	return res
}

// StartPlates begins a level on a prepared board
func (g *Game) StartPlates(spec level.Spec, seed uint64, plates []board.PlateState) {
	res := level.Result{Plates: plates, Effective: spec, Violations: board.VerifyStates(plates)}
	g.load(spec, seed, res, NewRand(seed))
	g.prepared = true
}

// Restart replays the current level from its seed
func (g *Game) Restart() error {
	if !g.loaded {
		return ErrNoLevel
	}
	if g.prepared {
		g.StartPlates(g.spec, g.seed, g.result.Plates)
		return nil
	}
	g.Start(g.spec, g.seed)
	return nil
}

func (g *Game) load(spec level.Spec, seed uint64, res level.Result, rng *rand.Rand) {
	g.queue.Consume()
	g.status.Reset()

	g.spec = spec
	g.seed = seed
	g.result = res
	g.rng = rng
	g.board = board.New(res.Plates, board.Options{Queue: g.queue, Status: g.status, Logger: g.log})
	g.timer = NewTimer(g.cfg.Clock, spec.TimeLimit())
	g.items = item.New(item.Options{
		Board:          g.board,
		Rand:           rng,
		Queue:          g.queue,
		Freezer:        g.timer,
		FreezeDuration: g.cfg.FreezeDuration,
		Status:         g.status,
		Logger:         g.log,
	})
	g.hints = NewHintTracker(g.cfg.Clock, g.cfg.HintDelay)
	g.state = StatePlaying
	g.loaded = true

	g.timer.Start()
	g.remaining.Set(g.timer.Remaining().Seconds())
}

// Update advances the timer and hints, then dispatches pending events to handlers
// Returns the dispatched events for rendering
func (g *Game) Update() []event.GameEvent {
	if !g.loaded {
		return nil
	}
	if g.state == StatePlaying {
		if g.timer.Tick() {
			g.state = StateLost
			g.log.Printf("[game] time expired")
			g.queue.Emit(event.EventTimeExpired, nil)
		}
		g.remaining.Set(g.timer.Remaining().Seconds())

		if !g.items.Busy() && !g.items.Awaiting() {
			if hint, ok := g.hints.Poll(g.board, g.rng); ok {
				g.queue.Emit(event.EventHint, hint)
			}
		}
	}
	return g.router.DispatchAll(g)
}

func (g *Game) act() bool {
	if !g.loaded || g.state != StatePlaying {
		return false
	}
	g.hints.Touch()
	return true
}

// Move moves an item between plates
func (g *Game) Move(from, to board.PlateID, h board.Handle, slot int) bool {
	return g.act() && g.board.MoveItem(from, to, h, slot)
}

// UseRandomSetRemover removes a random available set
func (g *Game) UseRandomSetRemover() bool {
	return g.act() && g.items.UseRandomSetRemover()
}

// UseTargetSetRemover enters target selection
func (g *Game) UseTargetSetRemover() bool {
	return g.act() && g.items.UseTargetSetRemover()
}

// SelectTarget picks the item whose type the target remover clears
func (g *Game) SelectTarget(h board.Handle) bool {
	return g.act() && g.items.SelectTarget(h)
}

// CancelTarget leaves target selection
func (g *Game) CancelTarget() bool {
	return g.act() && g.items.CancelTarget()
}

// UseShuffler reshuffles the board types
func (g *Game) UseShuffler() bool {
	return g.act() && g.items.UseShuffler()
}

// UseTimeFreezer freezes the countdown
func (g *Game) UseTimeFreezer() bool {
	return g.act() && g.items.UseTimeFreezer()
}

// Settle is the completion signal of the running power-up animation
// Accepted after the level ends so in-flight items are always released
func (g *Game) Settle() bool {
	return g.loaded && g.items.Settle()
}

// AdCompleted opens an ad-locked plate
func (g *Game) AdCompleted(p board.PlateID) bool {
	return g.act() && g.board.UnlockAdPlate(p)
}

// Pause stops the countdown
func (g *Game) Pause() {
	if g.loaded {
		g.timer.Pause()
	}
}

// Resume continues the countdown and restarts the idle period
func (g *Game) Resume() {
	if g.loaded {
		g.timer.Resume()
		g.hints.Touch()
	}
}

// Board returns the live board, nil before Start
func (g *Game) Board() *board.Board { return g.board }

// Items returns the power-up engine
func (g *Game) Items() *item.Engine { return g.items }

// Timer returns the level countdown
func (g *Game) Timer() *Timer { return g.timer }

// Hints returns the idle hint tracker
func (g *Game) Hints() *HintTracker { return g.hints }

// State returns the session outcome
func (g *Game) State() State { return g.state }

// Spec returns the effective spec of the current level
func (g *Game) Spec() level.Spec { return g.spec }

// Seed returns the current level seed
func (g *Game) Seed() uint64 { return g.seed }

// Result returns the generator output of the current level
func (g *Game) Result() level.Result { return g.result }

// Status returns the session metric registry
func (g *Game) Status() *status.Registry { return g.status }

// Catalog returns the type catalog
func (g *Game) Catalog() catalog.Catalog { return g.cfg.Catalog }

// stateChecker declares the win once the board is empty and no power-up is in flight
type stateChecker struct{}

func (stateChecker) EventTypes() []event.EventType {
	return []event.EventType{event.EventMerge, event.EventItemEffectSettled}
}

func (stateChecker) HandleEvent(g *Game, _ event.GameEvent) {
	if g.state != StatePlaying || g.items.Busy() || !g.board.AllEmpty() {
		return
	}
	g.state = StateWon
	g.timer.Pause()
	g.log.Printf("[game] board cleared with %v left", g.timer.Remaining())
	g.queue.Emit(event.EventBoardEmpty, nil)
}
