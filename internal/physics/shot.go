package physics

import (
	"fmt"
	"math"
)

// Shot is a one-off command that sets a shooter's velocity.
type Shot struct {
	Power     float64 `json:"power"`     // 0-1
	Direction Vec2    `json:"direction"` // unit vector
}

// NewShot validates power and normalizes direction.
func NewShot(power float64, direction Vec2) (Shot, error) {
	s := Shot{Power: power, Direction: direction.Normalize()}
	if err := s.Validate(); err != nil {
		return Shot{}, err
	}
	return s, nil
}

// Validate checks that power is within [0, 1] and the direction is usable.
func (s Shot) Validate() error {
	if math.IsNaN(s.Power) || s.Power < 0 || s.Power > 1 {
		return fmt.Errorf("%w: power %v outside [0, 1]", ErrInvalidShot, s.Power)
	}
	if !s.Direction.IsFinite() || s.Direction.IsZero() {
		return fmt.Errorf("%w: direction must be a non-zero vector", ErrInvalidShot)
	}
	return nil
}

// Velocity converts the shot to a launch velocity.
func (s Shot) Velocity(launchScale float64) Vec2 {
	return s.Direction.Normalize().Times(s.Power * launchScale)
}

// ShotFromDrag turns a pull-back gesture into a shot: the marble travels from
// the release point back toward the anchor, and the drag length sets the power.
// Drags no longer than MinDragDistance are not shots.
func ShotFromDrag(anchor, release Vec2) (Shot, bool) {
	pull := anchor.Minus(release)
	dist := pull.Magnitude()
	if dist <= MinDragDistance {
		return Shot{}, false
	}
	return Shot{
		Power:     math.Min(dist/DragFullPower, 1),
		Direction: pull.Normalize(),
	}, true
}
