package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/sushi-merge/board"
	"github.com/lixenwraith/sushi-merge/catalog"
	"github.com/lixenwraith/sushi-merge/status"
)

const (
	plateWidth  = 18
	plateHeight = 4
	boardTop    = 2
)

const helpLine = "arrows/hjkl plate  tab slot  space pick/drop  1 remove 2 target 3 shuffle 4 freeze  a ad  p pause  r restart  n/b level  q quit"

var (
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleLocked = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleTitle  = tcell.StyleDefault.Bold(true)
	styleAlert  = tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)
)

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) int {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// formatClock renders a countdown as m:ss, rounding up so 0:00 means expired
func formatClock(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func (u *ui) statusLine() string {
	tm := u.game.Timer()
	clock := "untimed"
	if tm.Limit() > 0 {
		clock = formatClock(tm.Remaining())
	}
	if tm.IsFrozen() {
		clock += fmt.Sprintf(" frozen %s", formatClock(tm.FrozenFor()))
	}
	if tm.IsPaused() {
		clock += " paused"
	}

	reg := u.game.Status()
	mode := u.game.State().String()
	switch {
	case u.game.Items().Awaiting():
		mode = "select target"
	case u.game.Items().Busy():
		mode = "power-up"
	}
	return fmt.Sprintf("%s  seed %d  %s  %s  merges %d  moves %d",
		u.game.Spec().Name, u.game.Seed(), clock, mode,
		reg.Counter(status.Merges).Load(), reg.Counter(status.Moves).Load())
}

// plateOrigin returns the top-left cell of plate p
func plateOrigin(p board.PlateID) (int, int) {
	return int(p%plateColumns)*plateWidth + 1, boardTop + int(p/plateColumns)*plateHeight
}

func (u *ui) draw() {
	s := u.screen
	s.Clear()

	drawText(s, 1, 0, styleTitle, u.statusLine())

	b := u.game.Board()
	for p := board.PlateID(0); int(p) < b.Len(); p++ {
		u.drawPlate(p)
	}

	rows := (b.Len() + plateColumns - 1) / plateColumns
	y := boardTop + rows*plateHeight
	drawText(s, 1, y, styleAlert, u.message)
	drawText(s, 1, y+1, styleDim, helpLine)
	s.Show()
}

func (u *ui) drawPlate(p board.PlateID) {
	s := u.screen
	b := u.game.Board()
	cat := u.game.Catalog()
	x, y := plateOrigin(p)

	label := fmt.Sprintf("#%d", p+1)
	class, required := b.Class(p)
	switch class {
	case board.LockedByAd:
		label += " [ad]"
	case board.LockedBySushi:
		label += fmt.Sprintf(" [needs %c]", glyph(cat, required))
	}
	labelStyle := tcell.StyleDefault
	if p == u.cursor {
		labelStyle = labelStyle.Reverse(true)
	}
	drawText(s, x, y, labelStyle, label)

	cx := x
	for i, h := range b.Active(p) {
		style := tcell.StyleDefault
		text := "[  ]"
		if it, ok := b.Item(h); ok {
			lock := ' '
			if it.Locked() {
				lock = rune('0' + it.Lock)
			}
			text = fmt.Sprintf("[%c%c]", glyph(cat, it.Type), lock)
			style = typeStyle(cat, it.Type)
			if it.Locked() || class != board.Normal {
				style = styleLocked
			}
			if u.hint[h] {
				style = style.Background(tcell.ColorOlive)
			}
			if u.holding && h == u.held {
				style = style.Bold(true).Underline(true)
			}
		}
		if p == u.cursor && i == u.slot {
			style = style.Reverse(true)
		}
		cx = drawText(s, cx, y+1, style, text)
	}

	if layers := b.Reserve(p); len(layers) > 0 {
		next := []rune("...")
		for e := 0; e < layers[0].Len(); e++ {
			next[layers[0].Slot(e)] = glyph(cat, layers[0].Type(e))
		}
		drawText(s, x, y+2, styleDim, fmt.Sprintf("+%d next %s", len(layers), string(next)))
	}
}

func glyph(cat catalog.Catalog, t catalog.TypeID) rune {
	if m, ok := cat.Get(t); ok && m.Glyph != 0 {
		return m.Glyph
	}
	return '?'
}

func typeStyle(cat catalog.Catalog, t catalog.TypeID) tcell.Style {
	if m, ok := cat.Get(t); ok {
		return tcell.StyleDefault.Foreground(tcell.NewHexColor(m.Color))
	}
	return tcell.StyleDefault
}

// clockTick is the loop cadence for timers, animations and redraws
const clockTick = 50 * time.Millisecond

// run polls input on its own goroutine and drives the game from the main loop
func (u *ui) run() {
	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := u.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(clockTick)
	defer ticker.Stop()

	u.draw()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !u.do(keyAction(ev)) {
					return
				}
			case *tcell.EventResize:
				u.screen.Sync()
			}
		case <-ticker.C:
		}
		u.tick()
		u.draw()
	}
}
