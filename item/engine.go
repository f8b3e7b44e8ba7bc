package item

import (
	"io"
	"log"
	"sort"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/sushi-merge/board"
	"github.com/lixenwraith/sushi-merge/catalog"
	"github.com/lixenwraith/sushi-merge/event"
	"github.com/lixenwraith/sushi-merge/status"
)

// DefaultFreezeDuration is how long a TimeFreezer suspends the countdown
const DefaultFreezeDuration = 10 * time.Second

// Freezer suspends the level countdown, a new Freeze supersedes the previous one
type Freezer interface {
	Freeze(d time.Duration) uint64
}

// Options wires the engine's collaborators
type Options struct {
	Board          *board.Board      // Required
	Rand           board.Rand        // Required
	Queue          *event.EventQueue // Required
	Freezer        Freezer           // nil disables TimeFreezer
	FreezeDuration time.Duration     // Zero uses DefaultFreezeDuration
	Status         *status.Registry
	Logger         *log.Logger
}

// Engine runs the four power-ups against a board
// Removers and the shuffler mutate the board in one step and stay busy until Settle
type Engine struct {
	board   *board.Board
	rng     board.Rand
	queue   *event.EventQueue
	freezer Freezer
	freeze  time.Duration
	log     *log.Logger

	busy     bool
	awaiting bool
	effect   event.Effect
	target   catalog.TypeID
	inFlight []board.Handle
	touched  []board.PlateID
	token    uint64

	statUsed    *atomic.Int64
	statBusy    *atomic.Int64
	statRetries *atomic.Int64
}

// New creates an engine for one level
func New(opts Options) *Engine {
	reg := opts.Status
	if reg == nil {
		reg = status.NewRegistry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	d := opts.FreezeDuration
	if d <= 0 {
		d = DefaultFreezeDuration
	}
	return &Engine{
		board:       opts.Board,
		rng:         opts.Rand,
		queue:       opts.Queue,
		freezer:     opts.Freezer,
		freeze:      d,
		log:         logger,
		statUsed:    reg.Counter(status.EffectsUsed),
		statBusy:    reg.Counter(status.EffectsBusy),
		statRetries: reg.Counter(status.ShuffleRetries),
	}
}

// Busy reports an effect waiting for Settle
func (e *Engine) Busy() bool {
	return e.busy
}

// Awaiting reports a TargetSetRemover waiting for SelectTarget
func (e *Engine) Awaiting() bool {
	return e.awaiting
}

// InFlight returns the detached handles of the pending effect
func (e *Engine) InFlight() []board.Handle {
	return append([]board.Handle(nil), e.inFlight...)
}

// FreezeToken returns the token of the last freeze request
func (e *Engine) FreezeToken() uint64 {
	return e.token
}

// accept gates every invocation on the busy flag
func (e *Engine) accept(effect event.Effect) bool {
	if e.busy || e.awaiting {
		e.statBusy.Add(1)
		e.log.Printf("[item] %s rejected, effect in progress", effect)
		return false
	}
	return true
}

// UseRandomSetRemover removes three units of a random type that has at least three outside ad-locked plates
func (e *Engine) UseRandomSetRemover() bool {
	if !e.accept(event.EffectRandomSetRemover) {
		return false
	}
	counts := e.board.CountTypes(true)
	var eligible []catalog.TypeID
	for t, n := range counts {
		if n >= 3 {
			eligible = append(eligible, t)
		}
	}
	if len(eligible) == 0 {
		return false
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i] < eligible[j] })

	t := eligible[e.rng.IntN(len(eligible))]
	return e.removeSet(event.EffectRandomSetRemover, t, board.NoItem)
}

// UseTargetSetRemover enters selection mode, the next SelectTarget picks the type
func (e *Engine) UseTargetSetRemover() bool {
	if !e.accept(event.EffectTargetSetRemover) {
		return false
	}
	e.awaiting = true
	return true
}

// SelectTarget removes three units of the selected item's type, preferring the item itself
// Selection mode ends whether or not the removal happens
func (e *Engine) SelectTarget(h board.Handle) bool {
	if !e.awaiting {
		return false
	}
	e.awaiting = false

	it, ok := e.board.Item(h)
	if !ok || it.Plate == board.NoPlate {
		return false
	}
	if c, _ := e.board.Class(it.Plate); c == board.LockedByAd {
		return false
	}
	if e.board.CountTypes(true)[it.Type] < 3 {
		return false
	}
	return e.removeSet(event.EffectTargetSetRemover, it.Type, h)
}

// CancelTarget leaves selection mode without using the power-up
func (e *Engine) CancelTarget() bool {
	if !e.awaiting {
		return false
	}
	e.awaiting = false
	return true
}

// removeSet detaches three units of t: selected first, then active items, then reserve entries
// Plates are scanned in order, ad-locked plates are skipped
func (e *Engine) removeSet(effect event.Effect, t catalog.TypeID, selected board.Handle) bool {
	var picked []board.Handle
	touched := make(map[board.PlateID]bool)

	take := func(h board.Handle) {
		if p, ok := e.board.Detach(h); ok {
			picked = append(picked, h)
			touched[p] = true
		}
	}

	if selected != board.NoItem {
		take(selected)
	}
	for p := board.PlateID(0); int(p) < e.board.Len() && len(picked) < 3; p++ {
		if c, _ := e.board.Class(p); c == board.LockedByAd {
			continue
		}
		for _, h := range e.board.Active(p) {
			if len(picked) == 3 {
				break
			}
			if it, ok := e.board.Item(h); ok && it.Type == t {
				take(h)
			}
		}
	}
	for p := board.PlateID(0); int(p) < e.board.Len() && len(picked) < 3; p++ {
		if c, _ := e.board.Class(p); c == board.LockedByAd {
			continue
		}
		for len(picked) < 3 {
			li, ei := findReserve(e.board.Reserve(p), t)
			if li < 0 {
				break
			}
			h, ok := e.board.DetachReserve(p, li, ei)
			if !ok {
				break
			}
			picked = append(picked, h)
			touched[p] = true
		}
	}

	if len(picked) < 3 {
		e.log.Printf("[item] %s found %d of type %d, expected 3", effect, len(picked), t)
	}
	if len(picked) == 0 {
		return false
	}

	plates := make([]board.PlateID, 0, len(touched))
	for p := range touched {
		plates = append(plates, p)
	}
	sort.Slice(plates, func(i, j int) bool { return plates[i] < plates[j] })

	e.begin(effect, t, picked, plates)
	return true
}

// findReserve locates the first entry of t, layers front to back and entries from the back of each layer
func findReserve(layers []board.Layer, t catalog.TypeID) (int, int) {
	for li, l := range layers {
		for ei := l.Len() - 1; ei >= 0; ei-- {
			if l.Type(ei) == t {
				return li, ei
			}
		}
	}
	return -1, -1
}

func (e *Engine) begin(effect event.Effect, t catalog.TypeID, picked []board.Handle, plates []board.PlateID) {
	e.busy = true
	e.effect = effect
	e.target = t
	e.inFlight = picked
	e.touched = plates
	e.statUsed.Add(1)
	e.queue.Emit(event.EventItemEffectStarted, &event.ItemEffectPayload{
		Effect:  effect,
		Type:    t,
		Removed: len(picked),
		Plates:  plateInts(plates),
	})
}

// Settle completes the pending effect: releases detached items, refills emptied plates and rechecks merges
func (e *Engine) Settle() bool {
	if !e.busy {
		return false
	}
	for _, h := range e.inFlight {
		if !e.board.Release(h) {
			e.log.Printf("[item] settle could not release item %d", h)
		}
	}
	for _, p := range e.touched {
		e.board.RefillIfEmpty(p)
	}
	for _, p := range e.touched {
		e.board.RecheckMerge(p)
	}

	e.queue.Emit(event.EventItemEffectSettled, &event.ItemEffectPayload{
		Effect:  e.effect,
		Type:    e.target,
		Removed: len(e.inFlight),
		Plates:  plateInts(e.touched),
	})
	e.busy = false
	e.inFlight = nil
	e.touched = nil
	e.target = catalog.NoType
	return true
}

// UseTimeFreezer asks the timer to stop counting for the freeze duration
func (e *Engine) UseTimeFreezer() bool {
	if e.freezer == nil || !e.accept(event.EffectTimeFreezer) {
		return false
	}
	e.token = e.freezer.Freeze(e.freeze)
	e.statUsed.Add(1)
	e.queue.Emit(event.EventTimeFrozen, &event.TimeFrozenPayload{Duration: e.freeze, Token: e.token})
	return true
}

func plateInts(ps []board.PlateID) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = int(p)
	}
	return out
}
