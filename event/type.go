package event

// EventType represents the type of board event
type EventType int

const (
	// EventMerge signals three same-typed items vanished from one plate
	// Trigger: Board merge execution
	// Consumer: StateChecker, audio, client | Payload: *MergePayload
	EventMerge EventType = iota + 1

	// EventRefill signals a reserve layer was dequeued into active slots
	// Trigger: Board refill | Payload: *RefillPayload
	EventRefill

	// EventItemUnlocked signals an item's lock stage reached zero
	// Trigger: LockCoordinator merge tick | Payload: *ItemUnlockedPayload
	EventItemUnlocked

	// EventPlateUnlocked signals a locked plate became Normal
	// Trigger: matching merge or ad completion | Payload: *PlateUnlockedPayload
	EventPlateUnlocked

	// EventMoveRejected signals a move that was refused and must snap back
	// Trigger: Board.MoveItem | Payload: *MoveRejectedPayload
	EventMoveRejected

	// EventItemEffectStarted signals a power-up detached items
	// Trigger: item engine step 1 | Payload: *ItemEffectPayload
	EventItemEffectStarted

	// EventItemEffectSettled signals the power-up completion was applied
	// Trigger: item engine step 2 | Payload: *ItemEffectPayload
	EventItemEffectSettled

	// EventBoardEmpty signals every plate is empty (win)
	// Trigger: StateChecker | Payload: nil
	EventBoardEmpty

	// EventTimeExpired signals the level timer ran out (lose)
	// Trigger: Timer tick | Payload: nil
	EventTimeExpired

	// EventTimeFrozen signals a freeze request replaced any previous one
	// Trigger: TimeFreezer | Payload: *TimeFrozenPayload
	EventTimeFrozen

	// EventHint carries a mergeable set after the idle delay
	// Trigger: HintTracker | Payload: *HintPayload
	EventHint
)

var eventNames = map[EventType]string{
	EventMerge:             "Merge",
	EventRefill:            "Refill",
	EventItemUnlocked:      "ItemUnlocked",
	EventPlateUnlocked:     "PlateUnlocked",
	EventMoveRejected:      "MoveRejected",
	EventItemEffectStarted: "ItemEffectStarted",
	EventItemEffectSettled: "ItemEffectSettled",
	EventBoardEmpty:        "BoardEmpty",
	EventTimeExpired:       "TimeExpired",
	EventTimeFrozen:        "TimeFrozen",
	EventHint:              "Hint",
}

// String returns the event name
func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return "Unknown"
}

// GameEvent is one entry in the queue
type GameEvent struct {
	Type    EventType
	Payload any
	Seq     uint64 // Assigned by the queue on push
}
