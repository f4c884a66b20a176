package physics

import (
	"fmt"
	"math"
)

// Config holds the per-level physics constants.
type Config struct {
	HalfExtent           float64 `json:"half_extent"`
	Friction             float64 `json:"friction"`
	MinSpeed             float64 `json:"min_speed"`
	WallRestitution      float64 `json:"wall_restitution"`
	CollisionRestitution float64 `json:"collision_restitution"`
	LaunchScale          float64 `json:"launch_scale"`
}

// Validate rejects constants that would make the simulation diverge or
// produce NaNs.
func (c Config) Validate() error {
	if !(c.HalfExtent > 0) || math.IsInf(c.HalfExtent, 0) {
		return ErrInvalidHalfExtent
	}
	if !(c.Friction > 0 && c.Friction < 1) {
		return ErrInvalidFriction
	}
	if !(c.MinSpeed > 0) {
		return ErrInvalidMinSpeed
	}
	if !(c.WallRestitution >= 0 && c.WallRestitution <= 1) {
		return fmt.Errorf("wall: %w", ErrInvalidRestitution)
	}
	if !(c.CollisionRestitution >= 0 && c.CollisionRestitution <= 1) {
		return fmt.Errorf("collision: %w", ErrInvalidRestitution)
	}
	if !(c.LaunchScale > 0) {
		return ErrInvalidLaunchScale
	}
	return nil
}

// StepResult is what a single tick reports back to the host.
type StepResult struct {
	Tick      int     `json:"tick"`
	AllAtRest bool    `json:"all_at_rest"`
	Fell      []int   `json:"fell,omitempty"` // bodies removed by a hole this tick
	Events    []Event `json:"events,omitempty"`
}

// Simulation owns the marbles of one round. Bodies are stored by value and
// handed out as copies, so callers can never mutate physics state directly.
type Simulation struct {
	cfg    Config
	bodies []Body
	index  map[int]int // body ID -> slot
	holes  []Hole
	tick   int
}

// NewSimulation validates the configuration and the start layout and copies
// the bodies into a new arena.
func NewSimulation(cfg Config, bodies []Body, holes []Hole) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, h := range holes {
		if err := ValidateRegion(h); err != nil {
			return nil, fmt.Errorf("hole %q: %w", h.Label, err)
		}
	}

	s := &Simulation{
		cfg:    cfg,
		bodies: make([]Body, len(bodies)),
		index:  make(map[int]int, len(bodies)),
		holes:  append([]Hole(nil), holes...),
	}

	for i, b := range bodies {
		if !(b.Radius > 0) || math.IsInf(b.Radius, 0) {
			return nil, fmt.Errorf("body %d: %w", b.ID, ErrInvalidRadius)
		}
		if !b.Position.IsFinite() || !b.Velocity.IsFinite() {
			return nil, fmt.Errorf("body %d: %w", b.ID, ErrOutOfArena)
		}
		limit := cfg.HalfExtent - b.Radius
		if math.Abs(b.Position.X) > limit || math.Abs(b.Position.Z) > limit {
			return nil, fmt.Errorf("body %d: %w", b.ID, ErrOutOfArena)
		}
		if _, dup := s.index[b.ID]; dup {
			return nil, fmt.Errorf("body %d: %w", b.ID, ErrDuplicateBody)
		}
		if b.State == "" {
			b.State = BodyActive
		}
		b.AtRest = b.Velocity.IsZero()
		s.bodies[i] = b
		s.index[b.ID] = i
	}

	for i := range s.bodies {
		for j := i + 1; j < len(s.bodies); j++ {
			a, b := &s.bodies[i], &s.bodies[j]
			if a.Active() && b.Active() && a.Position == b.Position {
				return nil, fmt.Errorf("bodies %d and %d: %w", a.ID, b.ID, ErrCoincidentBodies)
			}
		}
	}

	return s, nil
}

func (s *Simulation) Config() Config { return s.cfg }

// Ticks returns the number of ticks run so far.
func (s *Simulation) Ticks() int { return s.tick }

// Holes returns a copy of the arena's holes.
func (s *Simulation) Holes() []Hole {
	return append([]Hole(nil), s.holes...)
}

// Bodies returns a snapshot of every body, removed ones included.
func (s *Simulation) Bodies() []Body {
	return append([]Body(nil), s.bodies...)
}

// Body returns a copy of the body with the given ID.
func (s *Simulation) Body(id int) (Body, bool) {
	i, ok := s.index[id]
	if !ok {
		return Body{}, false
	}
	return s.bodies[i], true
}

// Launch applies a shot to the given body.
func (s *Simulation) Launch(id int, shot Shot) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownBody, id)
	}
	if err := shot.Validate(); err != nil {
		return err
	}
	b := &s.bodies[i]
	if !b.Active() {
		return fmt.Errorf("%w: %d", ErrBodyRemoved, id)
	}
	b.Velocity = shot.Velocity(s.cfg.LaunchScale)
	b.AtRest = b.Velocity.IsZero()
	return nil
}

// AllAtRest reports whether every active body has zero velocity.
func (s *Simulation) AllAtRest() bool {
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.Active() && !b.Velocity.IsZero() {
			return false
		}
	}
	return true
}

// Halt stops every body immediately.
func (s *Simulation) Halt() {
	for i := range s.bodies {
		if s.bodies[i].Active() {
			s.bodies[i].stop()
		}
	}
}

// Step runs one tick: integrate, reflect off walls, resolve every unique pair
// of active bodies, then check hole entry.
func (s *Simulation) Step() StepResult {
	s.tick++
	res := StepResult{Tick: s.tick}

	for i := range s.bodies {
		Integrate(&s.bodies[i], s.cfg.Friction, s.cfg.MinSpeed)
	}

	for i := range s.bodies {
		b := &s.bodies[i]
		speed := b.Speed()
		if ReflectOffWalls(b, s.cfg.HalfExtent, s.cfg.WallRestitution) {
			res.Events = append(res.Events, Event{
				Tick:     s.tick,
				Type:     EventWall,
				BodyID:   b.ID,
				TargetID: -1,
				Speed:    speed,
			})
		}
	}

	for i := 0; i < len(s.bodies); i++ {
		for j := i + 1; j < len(s.bodies); j++ {
			a, b := &s.bodies[i], &s.bodies[j]
			relSpeed := a.Velocity.Minus(b.Velocity).Magnitude()
			if ResolvePair(a, b, s.cfg.CollisionRestitution) && relSpeed > 0 {
				res.Events = append(res.Events, Event{
					Tick:     s.tick,
					Type:     EventBody,
					BodyID:   a.ID,
					TargetID: b.ID,
					Speed:    relSpeed,
				})
			}
		}
	}

	for i := range s.bodies {
		b := &s.bodies[i]
		if !b.Active() {
			continue
		}
		for hi, h := range s.holes {
			if !h.Contains(b.Position) {
				continue
			}
			speed := b.Speed()
			b.State = BodyRemoved
			b.stop()
			res.Fell = append(res.Fell, b.ID)
			res.Events = append(res.Events, Event{
				Tick:     s.tick,
				Type:     EventHole,
				BodyID:   b.ID,
				TargetID: hi,
				Speed:    speed,
			})
			break
		}
	}

	res.AllAtRest = s.AllAtRest()
	return res
}

// Settle steps until every body is at rest or maxTicks have run, and returns
// all events seen on the way. settled is false if the budget ran out.
func (s *Simulation) Settle(maxTicks int) (events []Event, settled bool) {
	for n := 0; n < maxTicks; n++ {
		if s.AllAtRest() {
			return events, true
		}
		res := s.Step()
		events = append(events, res.Events...)
	}
	return events, s.AllAtRest()
}
