package ai

import (
	"math"

	"github.com/playmatatu/marbles/internal/physics"
)

// Rand is the random source the planner draws from. *math/rand.Rand
// satisfies it; tests pass a seeded one for reproducible shots.
type Rand interface {
	Float64() float64
}

// PlanShot picks a shot for the given difficulty.
func PlanShot(d Difficulty, shooter physics.Vec2, targets []physics.Vec2, containment func(physics.Vec2) bool, rng Rand) (physics.Shot, error) {
	s, err := SettingsFor(d)
	if err != nil {
		return physics.Shot{}, err
	}
	return Plan(s, shooter, targets, containment, rng), nil
}

// Plan aims at the nearest target still satisfying containment.
//
// Random numbers are drawn in a fixed order so a seeded source always yields
// the same shot: with no valid target, power then direction; otherwise the
// miss roll, then either angle and power for a miss, or x noise, z noise and
// power noise for an aimed shot.
func Plan(s Settings, shooter physics.Vec2, targets []physics.Vec2, containment func(physics.Vec2) bool, rng Rand) physics.Shot {
	var valid []physics.Vec2
	for _, t := range targets {
		if containment == nil || containment(t) {
			valid = append(valid, t)
		}
	}

	// Nothing left to hit: a soft shot away from the play area.
	if len(valid) == 0 {
		power := 0.3 + rng.Float64()*s.PowerVariance
		dir := physics.NewVec2(rng.Float64()-0.5, -1).Normalize()
		return physics.Shot{Power: power, Direction: dir}
	}

	if rng.Float64() < s.MissChance {
		angle := rng.Float64() * math.Pi * 2
		power := 0.4 + rng.Float64()*0.3
		return physics.Shot{
			Power:     power,
			Direction: physics.NewVec2(math.Cos(angle), math.Sin(angle)),
		}
	}

	closest := valid[0]
	closestDist := shooter.DistanceTo(closest)
	for _, t := range valid[1:] {
		if d := shooter.DistanceTo(t); d < closestDist {
			closest, closestDist = t, d
		}
	}

	dir := closest.Minus(shooter).Normalize()
	if dir.IsZero() {
		dir = physics.NewVec2(0, -1)
	}
	noise := physics.NewVec2((rng.Float64()-0.5)*s.AccuracyVariance, (rng.Float64()-0.5)*s.AccuracyVariance)
	if s.AccuracyVariance != 0 {
		dir = dir.Plus(noise).Normalize()
		if dir.IsZero() {
			dir = physics.NewVec2(0, -1)
		}
	}

	ideal := math.Min(0.9, closestDist/5+0.3)
	power := ideal + (rng.Float64()-0.5)*s.PowerVariance

	return physics.Shot{Power: clampPower(power, 0.3, 1), Direction: dir}
}

func clampPower(p, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, p))
}
