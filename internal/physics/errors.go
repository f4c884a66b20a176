package physics

import "errors"

var (
	ErrInvalidFriction    = errors.New("friction must be in (0, 1)")
	ErrInvalidRestitution = errors.New("restitution must be in [0, 1]")
	ErrInvalidRadius      = errors.New("invalid radius")
	ErrInvalidMinSpeed    = errors.New("minimum speed must be positive")
	ErrInvalidHalfExtent  = errors.New("arena half extent must be positive")
	ErrInvalidLaunchScale = errors.New("launch scale must be positive")
	ErrCoincidentBodies   = errors.New("bodies start at the same position")
	ErrOutOfArena         = errors.New("body starts outside the arena")
	ErrDuplicateBody      = errors.New("duplicate body id")
	ErrInvalidShot        = errors.New("invalid shot")
	ErrUnknownBody        = errors.New("unknown body")
	ErrBodyRemoved        = errors.New("body has been removed")
)
