package core

// ErrorCode is the stable numeric code of a game error.
type ErrorCode uint32

const (
	CodeInvalidZombieID ErrorCode = iota
	CodeZombieNotReady
	CodeInvalidDNA
	CodeInvalidSelection
	CodeArmyFull
	CodeInsufficientXP
	CodeInvalidBattleOutcome
	CodeBattleInProgress
	CodeUnauthorized
	CodeArithmeticOverflow
	CodeNoEmptySlot
)

// GameError is a typed failure of a game operation.
type GameError struct {
	Code ErrorCode
	msg  string
}

func (e *GameError) Error() string {
	return e.msg
}

// Is treats NoEmptySlot as ArmyFull so callers can match either name.
func (e *GameError) Is(target error) bool {
	t, ok := target.(*GameError)
	if !ok {
		return false
	}
	if t.Code == e.Code {
		return true
	}
	return e.Code == CodeNoEmptySlot && t.Code == CodeArmyFull
}

var (
	ErrInvalidZombieID      = &GameError{CodeInvalidZombieID, "invalid zombie id"}
	ErrZombieNotReady       = &GameError{CodeZombieNotReady, "zombie is not ready to fight"}
	ErrInvalidDNA           = &GameError{CodeInvalidDNA, "invalid dna value"}
	ErrInvalidSelection     = &GameError{CodeInvalidSelection, "invalid selection"}
	ErrArmyFull             = &GameError{CodeArmyFull, "army is full"}
	ErrInsufficientXP       = &GameError{CodeInsufficientXP, "insufficient xp"}
	ErrInvalidBattleOutcome = &GameError{CodeInvalidBattleOutcome, "invalid battle outcome"}
	ErrBattleInProgress     = &GameError{CodeBattleInProgress, "battle already in progress"}
	ErrUnauthorized         = &GameError{CodeUnauthorized, "unauthorized access"}
	ErrArithmeticOverflow   = &GameError{CodeArithmeticOverflow, "arithmetic overflow"}
	ErrNoEmptySlot          = &GameError{CodeNoEmptySlot, "army limit reached, no empty slot"}
)
