package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// Cue is a short sound tied to a board event
type Cue int

const (
	CueMerge Cue = iota
	CueUnlock
	CuePowerUp
	CueFreeze
	CueWin
	CueLose
	CueReject
	CueHint
	cueCount
)

var cueNames = [cueCount]string{"merge", "unlock", "powerup", "freeze", "win", "lose", "reject", "hint"}

func (c Cue) String() string {
	if c < 0 || c >= cueCount {
		return "unknown"
	}
	return cueNames[c]
}

// ParseCue maps a name back to its cue
func ParseCue(name string) (Cue, bool) {
	for i, n := range cueNames {
		if n == name {
			return Cue(i), true
		}
	}
	return 0, false
}

// Config holds mixer settings, volumes are linear 0..1
type Config struct {
	Enabled    bool
	Master     float64
	SampleRate int
	Volumes    map[Cue]float64
}

// DefaultConfig returns audio enabled at moderate volume
func DefaultConfig() Config {
	vols := make(map[Cue]float64, cueCount)
	for c := Cue(0); c < cueCount; c++ {
		vols[c] = 0.6
	}
	vols[CueReject] = 0.4
	vols[CueHint] = 0.3
	return Config{Enabled: true, Master: 0.5, SampleRate: 44100, Volumes: vols}
}

func (c Config) volume(cue Cue) float64 {
	v, ok := c.Volumes[cue]
	if !ok {
		v = 1
	}
	return v * c.Master
}

// note is one segment of a cue
type note struct {
	from, to float64
	d        time.Duration
	wave     Wave
	attack   time.Duration
	release  time.Duration
}

// cueNotes are played in sequence
var cueNotes = [cueCount][]note{
	CueMerge: {
		{from: 659.25, to: 659.25, d: 70 * time.Millisecond, wave: WaveSine, attack: 5 * time.Millisecond, release: 30 * time.Millisecond},
		{from: 987.77, to: 987.77, d: 140 * time.Millisecond, wave: WaveSine, attack: 5 * time.Millisecond, release: 100 * time.Millisecond},
	},
	CueUnlock: {
		{from: 440, to: 880, d: 180 * time.Millisecond, wave: WaveTriangle, attack: 10 * time.Millisecond, release: 60 * time.Millisecond},
	},
	CuePowerUp: {
		{from: 0, to: 0, d: 200 * time.Millisecond, wave: WaveNoise, attack: 20 * time.Millisecond, release: 150 * time.Millisecond},
	},
	CueFreeze: {
		{from: 1567.98, to: 1046.5, d: 250 * time.Millisecond, wave: WaveSine, attack: 5 * time.Millisecond, release: 200 * time.Millisecond},
	},
	CueWin: {
		{from: 523.25, to: 523.25, d: 100 * time.Millisecond, wave: WaveSquare, attack: 5 * time.Millisecond, release: 40 * time.Millisecond},
		{from: 659.25, to: 659.25, d: 100 * time.Millisecond, wave: WaveSquare, attack: 5 * time.Millisecond, release: 40 * time.Millisecond},
		{from: 783.99, to: 783.99, d: 100 * time.Millisecond, wave: WaveSquare, attack: 5 * time.Millisecond, release: 40 * time.Millisecond},
		{from: 1046.5, to: 1046.5, d: 250 * time.Millisecond, wave: WaveSquare, attack: 5 * time.Millisecond, release: 200 * time.Millisecond},
	},
	CueLose: {
		{from: 392, to: 196, d: 500 * time.Millisecond, wave: WaveTriangle, attack: 10 * time.Millisecond, release: 300 * time.Millisecond},
	},
	CueReject: {
		{from: 110, to: 100, d: 120 * time.Millisecond, wave: WaveSquare, attack: 5 * time.Millisecond, release: 60 * time.Millisecond},
	},
	CueHint: {
		{from: 1318.51, to: 1318.51, d: 60 * time.Millisecond, wave: WaveSine, attack: 5 * time.Millisecond, release: 40 * time.Millisecond},
	},
}

// Duration returns the length of a cue
func Duration(c Cue) time.Duration {
	if c < 0 || c >= cueCount {
		return 0
	}
	var d time.Duration
	for _, n := range cueNotes[c] {
		d += n.d
	}
	return d
}

// Stream builds a finite streamer for c, nil for an unknown cue
func Stream(c Cue, cfg Config) beep.Streamer {
	if c < 0 || c >= cueCount {
		return nil
	}
	rate := beep.SampleRate(cfg.SampleRate)
	parts := make([]beep.Streamer, 0, len(cueNotes[c]))
	for _, n := range cueNotes[c] {
		osc := NewTone(n.from, n.to, n.d, n.wave, rate)
		parts = append(parts, NewEnvelope(osc, n.d, n.attack, n.release, rate))
	}
	return withVolume(beep.Seq(parts...), cfg.volume(c))
}
