package main

import "github.com/gdamore/tcell/v2"

// action is one player intent, decoupled from the key that produced it
type action int

const (
	actNone action = iota
	actLeft
	actRight
	actUp
	actDown
	actSlotNext
	actSlotPrev
	actSelect
	actCancel
	actRandomRemover
	actTargetRemover
	actShuffler
	actFreezer
	actAd
	actPause
	actRestart
	actNextLevel
	actPrevLevel
	actQuit
)

var runeActions = map[rune]action{
	'h': actLeft,
	'l': actRight,
	'k': actUp,
	'j': actDown,
	']': actSlotNext,
	'[': actSlotPrev,
	' ': actSelect,
	'x': actCancel,
	'1': actRandomRemover,
	'2': actTargetRemover,
	'3': actShuffler,
	'4': actFreezer,
	'a': actAd,
	'p': actPause,
	'r': actRestart,
	'n': actNextLevel,
	'b': actPrevLevel,
	'q': actQuit,
}

func keyAction(ev *tcell.EventKey) action {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlQ:
		return actQuit
	case tcell.KeyLeft:
		return actLeft
	case tcell.KeyRight:
		return actRight
	case tcell.KeyUp:
		return actUp
	case tcell.KeyDown:
		return actDown
	case tcell.KeyTab:
		return actSlotNext
	case tcell.KeyBacktab:
		return actSlotPrev
	case tcell.KeyEnter:
		return actSelect
	case tcell.KeyEscape:
		return actCancel
	case tcell.KeyRune:
		return runeActions[ev.Rune()]
	}
	return actNone
}
