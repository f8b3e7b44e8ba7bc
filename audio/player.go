package audio

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/sushi-merge/event"
)

// Player mixes cues onto the speaker
// Without a device every Play is a silent no-op, the game runs unchanged
type Player struct {
	mu    sync.Mutex
	cfg   Config
	mixer *beep.Mixer
	log   *log.Logger

	ready  bool
	played [cueCount]int
}

// NewPlayer creates an uninitialized player, nil logger discards
func NewPlayer(cfg Config, logger *log.Logger) *Player {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultConfig().SampleRate
	}
	return &Player{cfg: cfg, mixer: &beep.Mixer{}, log: logger}
}

// Init opens the speaker, a no-op when disabled or already open
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready || !p.cfg.Enabled {
		return nil
	}

	rate := beep.SampleRate(p.cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(50*time.Millisecond)); err != nil {
		return fmt.Errorf("audio: init speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.ready = true
	p.log.Printf("[audio] speaker ready at %d Hz", p.cfg.SampleRate)
	return nil
}

// Close silences everything, the speaker itself stays owned by beep
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.ready = false
}

// Ready reports an open speaker
func (p *Player) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// Play queues c on the mixer, false when silent
func (p *Player) Play(c Cue) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return false
	}
	s := Stream(c, p.cfg)
	if s == nil {
		return false
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
	p.played[c]++
	return true
}

// Played returns how many times c reached the mixer
func (p *Player) Played(c Cue) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c < 0 || c >= cueCount {
		return 0
	}
	return p.played[c]
}

// CueFor maps a board event to its cue
func CueFor(ev event.GameEvent) (Cue, bool) {
	switch ev.Type {
	case event.EventMerge:
		return CueMerge, true
	case event.EventItemUnlocked, event.EventPlateUnlocked:
		return CueUnlock, true
	case event.EventItemEffectStarted:
		return CuePowerUp, true
	case event.EventTimeFrozen:
		return CueFreeze, true
	case event.EventBoardEmpty:
		return CueWin, true
	case event.EventTimeExpired:
		return CueLose, true
	case event.EventMoveRejected:
		return CueReject, true
	case event.EventHint:
		return CueHint, true
	}
	return 0, false
}

// Handler returns a router handler playing the cue of every mapped event
func Handler[T any](p *Player) event.HandlerFunc[T] {
	return event.HandlerFunc[T]{
		Types: []event.EventType{
			event.EventMerge,
			event.EventItemUnlocked,
			event.EventPlateUnlocked,
			event.EventItemEffectStarted,
			event.EventTimeFrozen,
			event.EventBoardEmpty,
			event.EventTimeExpired,
			event.EventMoveRejected,
			event.EventHint,
		},
		Fn: func(_ T, ev event.GameEvent) {
			if c, ok := CueFor(ev); ok {
				p.Play(c)
			}
		},
	}
}
