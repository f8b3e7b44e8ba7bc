package status

// Metric names shared by the board, item engine and client
const (
	Merges         = "board.merges"
	Refills        = "board.refills"
	Moves          = "board.moves"
	MovesRejected  = "board.moves_rejected"
	ItemsUnlocked  = "locks.items_unlocked"
	PlatesUnlocked = "locks.plates_unlocked"
	EffectsUsed    = "items.used"
	EffectsBusy    = "items.rejected_busy"
	ShuffleRetries = "items.shuffle_retries"
	TimeRemaining  = "timer.remaining_seconds"
)
