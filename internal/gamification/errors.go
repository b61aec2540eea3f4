package gamification

import "errors"

var (
	ErrAlreadyClaimed   = errors.New("already claimed for this period")
	ErrNotEligible      = errors.New("not eligible yet")
	ErrInsufficientGold = errors.New("not enough gold")
	ErrUnknownTask      = errors.New("unknown task")
	ErrUnknownMonster   = errors.New("unknown monster")
	ErrUnknownJob       = errors.New("unknown job")
	ErrRebirthLocked    = errors.New("rebirth requires the deepest floor")
	ErrNotOwned         = errors.New("monster not owned")
	ErrSessionState     = errors.New("session not in a valid state")
	ErrUnknownItem      = errors.New("unknown shop item")
	ErrUnknownMission   = errors.New("unknown mission")
)
