package event

import (
	"time"

	"github.com/lixenwraith/sushi-merge/catalog"
)

// MergePayload identifies the plate and type of a merge
type MergePayload struct {
	Plate int
	Type  catalog.TypeID
}

// RefillPayload describes a dequeued layer
type RefillPayload struct {
	Plate     int
	Count     int
	Remaining int // Layers left in the reserve
}

// ItemUnlockedPayload identifies an item whose lock reached zero
type ItemUnlockedPayload struct {
	Item  uint32
	Plate int
}

// UnlockReason tells why a plate unlocked
type UnlockReason int

const (
	UnlockByMerge UnlockReason = iota
	UnlockByAd
)

// PlateUnlockedPayload identifies an unlocked plate
type PlateUnlockedPayload struct {
	Plate  int
	Reason UnlockReason
}

// MoveRejectedPayload carries enough for the caller to snap the item back
type MoveRejectedPayload struct {
	From int
	To   int
	Item uint32
}

// Effect names a power-up
type Effect int

const (
	EffectRandomSetRemover Effect = iota
	EffectTargetSetRemover
	EffectShuffler
	EffectTimeFreezer
)

var effectNames = [...]string{"RandomSetRemover", "TargetSetRemover", "Shuffler", "TimeFreezer"}

func (e Effect) String() string {
	if int(e) < len(effectNames) {
		return effectNames[e]
	}
	return "Unknown"
}

// ItemEffectPayload describes a power-up removal
type ItemEffectPayload struct {
	Effect  Effect
	Type    catalog.TypeID
	Removed int
	Plates  []int
}

// TimeFrozenPayload describes the active freeze
type TimeFrozenPayload struct {
	Duration time.Duration
	Token    uint64
}

// HintPayload lists three items that can be merged
type HintPayload struct {
	Type  catalog.TypeID
	Items []uint32
}
