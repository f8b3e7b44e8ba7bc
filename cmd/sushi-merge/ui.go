package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/sushi-merge/board"
	"github.com/lixenwraith/sushi-merge/engine"
	"github.com/lixenwraith/sushi-merge/event"
	"github.com/lixenwraith/sushi-merge/level"
)

const plateColumns = 3

type uiOptions struct {
	SettleDelay time.Duration // Power-up animation length before Settle
	AdDelay     time.Duration // Simulated ad length
}

// ui owns the cursor and the pending animations of the terminal client
// Every method runs on the main loop goroutine
type ui struct {
	screen tcell.Screen
	game   *engine.Game
	pack   *level.Pack
	clock  engine.TimeProvider
	log    *log.Logger
	opts   uiOptions

	level  int
	cursor board.PlateID
	slot   int

	holding bool
	held    board.Handle
	heldAt  board.PlateID

	hint    map[board.Handle]bool
	message string

	settleAt time.Time
	adAt     time.Time
	adPlate  board.PlateID
}

func newUI(screen tcell.Screen, game *engine.Game, pack *level.Pack, clock engine.TimeProvider, logger *log.Logger, opts uiOptions) *ui {
	return &ui{screen: screen, game: game, pack: pack, clock: clock, log: logger, opts: opts}
}

// start generates pack level i, seed 0 draws a fresh one
func (u *ui) start(i int, seed uint64) {
	if seed == 0 {
		seed = engine.NewSeed()
	}
	u.level = i
	res := u.game.Start(u.pack.Levels[i], seed)
	for _, w := range res.Warnings {
		u.log.Printf("[client] level %s: %s", res.Effective.Name, w)
	}
	u.reset()
	u.message = fmt.Sprintf("%s, seed %d", res.Effective.Name, seed)
}

func (u *ui) reset() {
	u.cursor, u.slot = 0, 0
	u.holding = false
	u.hint = nil
	u.settleAt = time.Time{}
	u.adAt = time.Time{}
	u.message = ""
}

// do applies one action, false quits
func (u *ui) do(a action) bool {
	now := u.clock.Now()
	b := u.game.Board()
	n := board.PlateID(b.Len())

	switch a {
	case actQuit:
		return false
	case actLeft:
		u.cursor = (u.cursor + n - 1) % n
	case actRight:
		u.cursor = (u.cursor + 1) % n
	case actUp:
		if u.cursor >= plateColumns {
			u.cursor -= plateColumns
		}
	case actDown:
		if u.cursor+plateColumns < n {
			u.cursor += plateColumns
		}
	case actSlotNext:
		u.slot = (u.slot + 1) % board.SlotCount
	case actSlotPrev:
		u.slot = (u.slot + board.SlotCount - 1) % board.SlotCount
	case actSelect:
		u.selectAt(now)
	case actCancel:
		switch {
		case u.holding:
			u.holding = false
		case u.game.Items().Awaiting():
			u.game.CancelTarget()
			u.message = "target cancelled"
		}
	case actRandomRemover:
		u.power(u.game.UseRandomSetRemover(), now, "no type has three items left")
	case actTargetRemover:
		if u.game.UseTargetSetRemover() {
			u.holding = false
			u.message = "pick an item to clear its type"
		} else {
			u.message = "power-up busy"
		}
	case actShuffler:
		u.power(u.game.UseShuffler(), now, "nothing to shuffle")
	case actFreezer:
		if u.game.UseTimeFreezer() {
			u.message = "time frozen"
		} else {
			u.message = "power-up busy"
		}
	case actAd:
		u.watchAd(now)
	case actPause:
		if !u.adAt.IsZero() {
			break
		}
		if u.game.Timer().IsPaused() {
			u.game.Resume()
			u.message = ""
		} else {
			u.game.Pause()
			u.message = "paused"
		}
	case actRestart:
		if err := u.game.Restart(); err != nil {
			u.message = err.Error()
			break
		}
		u.reset()
		u.message = "restarted"
	case actNextLevel:
		u.start((u.level+1)%len(u.pack.Levels), 0)
	case actPrevLevel:
		u.start((u.level+len(u.pack.Levels)-1)%len(u.pack.Levels), 0)
	}
	return true
}

func (u *ui) power(ok bool, now time.Time, failed string) {
	if !ok {
		if u.game.Items().Busy() || u.game.Items().Awaiting() {
			failed = "power-up busy"
		}
		u.message = failed
		return
	}
	u.holding = false
	u.settleAt = now.Add(u.opts.SettleDelay)
}

// selectAt picks up, drops or targets the item under the cursor
func (u *ui) selectAt(now time.Time) {
	b := u.game.Board()
	h := b.Active(u.cursor)[u.slot]

	if u.game.Items().Awaiting() {
		if h == board.NoItem {
			u.message = "empty slot"
			return
		}
		if u.game.SelectTarget(h) {
			u.settleAt = now.Add(u.opts.SettleDelay)
			return
		}
		u.message = "that type has fewer than three items"
		return
	}

	if !u.holding {
		it, ok := b.Item(h)
		switch {
		case !ok:
			u.message = "empty slot"
		case it.Locked():
			u.message = fmt.Sprintf("locked for %d more merges", it.Lock)
		default:
			u.holding, u.held, u.heldAt = true, h, u.cursor
			u.message = ""
		}
		return
	}

	u.holding = false
	if u.cursor == u.heldAt {
		return
	}
	preferred := -1
	if h == board.NoItem {
		preferred = u.slot
	}
	if !u.game.Move(u.heldAt, u.cursor, u.held, preferred) {
		u.message = "can't place it there"
	}
}

func (u *ui) watchAd(now time.Time) {
	if !u.adAt.IsZero() {
		return
	}
	if c, _ := u.game.Board().Class(u.cursor); c != board.LockedByAd {
		u.message = "plate is not ad-locked"
		return
	}
	u.game.Pause()
	u.adAt = now.Add(u.opts.AdDelay)
	u.adPlate = u.cursor
	u.message = "watching ad..."
}

// tick completes due animations and drains game events
func (u *ui) tick() {
	now := u.clock.Now()
	if !u.settleAt.IsZero() && !now.Before(u.settleAt) {
		u.settleAt = time.Time{}
		u.game.Settle()
	}
	if !u.adAt.IsZero() && !now.Before(u.adAt) {
		u.adAt = time.Time{}
		u.game.Resume()
		if u.game.AdCompleted(u.adPlate) {
			u.message = fmt.Sprintf("plate %d opened", u.adPlate+1)
		}
	}
	u.observe(u.game.Update())

	if u.holding {
		if it, ok := u.game.Board().Item(u.held); !ok || it.Plate != u.heldAt {
			u.holding = false
		}
	}
	if !u.game.Hints().Shown() {
		u.hint = nil
	}
}

func (u *ui) observe(events []event.GameEvent) {
	for _, ev := range events {
		switch ev.Type {
		case event.EventHint:
			p := ev.Payload.(*event.HintPayload)
			u.hint = make(map[board.Handle]bool, len(p.Items))
			for _, h := range p.Items {
				u.hint[board.Handle(h)] = true
			}
		case event.EventMerge:
			p := ev.Payload.(*event.MergePayload)
			if m, ok := u.game.Catalog().Get(p.Type); ok {
				u.message = fmt.Sprintf("%s merged", m.Name)
			}
		case event.EventPlateUnlocked:
			p := ev.Payload.(*event.PlateUnlockedPayload)
			u.message = fmt.Sprintf("plate %d opened", p.Plate+1)
		case event.EventBoardEmpty:
			u.message = "board cleared! n: next level, r: replay"
		case event.EventTimeExpired:
			u.message = "time's up! r: retry, n: skip"
		}
	}
}
