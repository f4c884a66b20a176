package level

import "errors"

var (
	ErrUnknownLevel   = errors.New("unknown level")
	ErrRoundConcluded = errors.New("round is over, reset to play again")
	ErrShotInFlight   = errors.New("marbles are still moving")
	ErrNotSettled     = errors.New("marbles did not settle within the tick budget")
	ErrUnknownRegion  = errors.New("rule references an unknown region")
)
