package level

import (
	"fmt"

	"github.com/playmatatu/marbles/internal/physics"
)

// Region names used by the built-in levels.
const (
	RegionHole     = "hole"
	RegionCapture  = "capture"
	RegionTriangle = "triangle"
	RegionCircle   = "circle"
	RegionCross    = "cross"
)

// Definition is everything that distinguishes one level from another. Levels
// share all code; only this data changes.
type Definition struct {
	Number  int            `json:"number"`
	Name    string         `json:"name"`
	Physics physics.Config `json:"physics"`

	Shooter      physics.Vec2   `json:"shooter"`
	Targets      []physics.Vec2 `json:"targets"`
	MarbleRadius float64        `json:"marble_radius"`

	Holes   []physics.Hole   `json:"holes"`
	Regions []physics.Region `json:"regions"`

	// TargetRegion is where a target still counts as worth shooting at. The
	// AI planner uses it as its containment predicate.
	TargetRegion string `json:"target_region"`

	// EndOnHoleEntry resolves the round on the tick any marble falls,
	// without waiting for the rest to settle.
	EndOnHoleEntry bool `json:"end_on_hole_entry"`

	Rules []Rule `json:"rules"`
}

// Region looks up a named region of the level.
func (d Definition) Region(name string) (physics.Region, bool) {
	for _, r := range d.Regions {
		if r.Name() == name {
			return r, true
		}
	}
	return nil, false
}

func (d Definition) regionMap() map[string]physics.Region {
	m := make(map[string]physics.Region, len(d.Regions))
	for _, r := range d.Regions {
		m[r.Name()] = r
	}
	return m
}

// Validate checks the level data before a round is built from it.
func (d Definition) Validate() error {
	if err := d.Physics.Validate(); err != nil {
		return err
	}
	for _, r := range d.Regions {
		if err := physics.ValidateRegion(r); err != nil {
			return fmt.Errorf("region %q: %w", r.Name(), err)
		}
	}
	regions := d.regionMap()
	if d.TargetRegion != "" {
		if _, ok := regions[d.TargetRegion]; !ok {
			return fmt.Errorf("target region %q: %w", d.TargetRegion, ErrUnknownRegion)
		}
	}
	return validateRules(d.Rules, regions)
}

// Bodies builds the start layout: the shooter gets ID 0 and targets follow in
// order.
func (d Definition) Bodies() []physics.Body {
	radius := d.MarbleRadius
	if radius == 0 {
		radius = physics.MarbleRadius
	}
	bodies := make([]physics.Body, 0, len(d.Targets)+1)
	bodies = append(bodies, physics.NewBody(0, physics.RoleShooter, d.Shooter, radius))
	for i, t := range d.Targets {
		bodies = append(bodies, physics.NewBody(i+1, physics.RoleTarget, t, radius))
	}
	return bodies
}

// arenaHalfExtent keeps a marble's centre 0.3 inside a ground plane of the
// given size, matching the visible walls.
func arenaHalfExtent(ground float64) float64 {
	return ground/2 - 0.1
}

// HoleChallenge is level 1: sink the shooter in the hole.
func HoleChallenge() Definition {
	center := physics.NewVec2(0, -2)
	const holeRadius = 0.5
	capture := holeRadius * 0.7

	return Definition{
		Number: 1,
		Name:   "Hole Challenge",
		Physics: physics.Config{
			HalfExtent:           arenaHalfExtent(12),
			Friction:             physics.SandFriction,
			MinSpeed:             physics.MinSpeed,
			WallRestitution:      physics.WallRestitution,
			CollisionRestitution: physics.MarbleRestitution,
			LaunchScale:          physics.LaunchScaleHole,
		},
		Shooter:      physics.NewVec2(0, 3),
		MarbleRadius: physics.MarbleRadius,
		Holes: []physics.Hole{
			{Label: RegionHole, Center: center, Radius: capture},
		},
		Regions: []physics.Region{
			physics.Circle{Label: RegionHole, Center: center, Radius: holeRadius},
			physics.Circle{Label: RegionCapture, Center: center, Radius: capture},
		},
		TargetRegion: RegionCapture,
		Rules: []Rule{
			{
				Result: ResultWin,
				All:    []Clause{ShooterFellInto(RegionCapture)},
				Delta:  1,
				Reason: "marble sunk in the hole",
			},
		},
	}
}

// TriangleFormation is level 2: knock every target out of the triangle
// without leaving the shooter inside it.
func TriangleFormation() Definition {
	tri := physics.Triangle{
		Label: RegionTriangle,
		V1:    physics.NewVec2(0, -2.5),
		V2:    physics.NewVec2(-2.165, 1.25),
		V3:    physics.NewVec2(2.165, 1.25),
	}

	return Definition{
		Number: 2,
		Name:   "Triangle Formation",
		Physics: physics.Config{
			HalfExtent:           arenaHalfExtent(14),
			Friction:             physics.SandFriction,
			MinSpeed:             physics.MinSpeed,
			WallRestitution:      physics.WallRestitution,
			CollisionRestitution: physics.MarbleRestitution,
			LaunchScale:          physics.LaunchScaleFormation,
		},
		Shooter: physics.NewVec2(0, 4),
		Targets: []physics.Vec2{
			physics.NewVec2(0, -2.2),
			physics.NewVec2(-1.865, 1.05),
			physics.NewVec2(1.865, 1.05),
		},
		MarbleRadius: physics.MarbleRadius,
		Regions:      []physics.Region{tri},
		TargetRegion: RegionTriangle,
		Rules: []Rule{
			{
				Result: ResultLoss,
				All:    []Clause{ShooterInside(RegionTriangle)},
				Delta:  -1,
				Reason: "shooter stopped inside the triangle",
			},
			{
				Result: ResultWin,
				All:    []Clause{AllTargetsOutside(RegionTriangle), ShooterOutside(RegionTriangle)},
				Delta:  3,
				Reason: "all marbles knocked out of the triangle",
			},
		},
	}
}

// CircleAndCross is level 3: clear the circle without touching the hole.
func CircleAndCross() Definition {
	origin := physics.NewVec2(0, 0)
	const circleRadius = 3.0

	return Definition{
		Number: 3,
		Name:   "Circle & Cross",
		Physics: physics.Config{
			HalfExtent:           arenaHalfExtent(14),
			Friction:             physics.SandFriction,
			MinSpeed:             physics.MinSpeed,
			WallRestitution:      physics.WallRestitution,
			CollisionRestitution: physics.MarbleRestitution,
			LaunchScale:          physics.LaunchScaleFormation,
		},
		Shooter: physics.NewVec2(0, 5),
		Targets: []physics.Vec2{
			physics.NewVec2(0, -1.8),
			physics.NewVec2(0, 1.8),
			physics.NewVec2(-1.8, 0),
			physics.NewVec2(1.8, 0),
		},
		MarbleRadius: physics.MarbleRadius,
		Holes: []physics.Hole{
			{Label: RegionHole, Center: origin, Radius: 0.4},
		},
		Regions: []physics.Region{
			physics.Circle{Label: RegionCircle, Center: origin, Radius: circleRadius},
			physics.Hole{Label: RegionHole, Center: origin, Radius: 0.4},
			physics.CrossBand{Label: RegionCross, Center: origin, HalfWidth: 0.25},
		},
		TargetRegion:   RegionCircle,
		EndOnHoleEntry: true,
		Rules: []Rule{
			{Result: ResultLoss, All: []Clause{ShooterFell()}, Delta: -1, Reason: "shooter fell in the hole"},
			{Result: ResultLoss, All: []Clause{AnyTargetFell()}, Delta: -1, Reason: "a target fell in the hole"},
			{Result: ResultLoss, All: []Clause{ShooterInside(RegionCircle)}, Delta: -1, Reason: "shooter stopped inside the circle"},
			{
				Result:           ResultWin,
				All:              []Clause{AllTargetsOutside(RegionCircle), ShooterOutside(RegionCircle)},
				PerTargetOutside: RegionCircle,
				Reason:           "circle cleared",
			},
		},
	}
}

// All returns the built-in levels in play order.
func All() []Definition {
	return []Definition{HoleChallenge(), TriangleFormation(), CircleAndCross()}
}

// Lookup returns the built-in level with the given number.
func Lookup(number int) (Definition, error) {
	switch number {
	case 1:
		return HoleChallenge(), nil
	case 2:
		return TriangleFormation(), nil
	case 3:
		return CircleAndCross(), nil
	}
	return Definition{}, fmt.Errorf("%w: %d", ErrUnknownLevel, number)
}
