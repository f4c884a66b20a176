package ai

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/playmatatu/marbles/internal/physics"
)

// fixedRand replays a scripted sequence of draws.
type fixedRand struct {
	values []float64
	i      int
}

func (f *fixedRand) Float64() float64 {
	v := f.values[f.i%len(f.values)]
	f.i++
	return v
}

func everywhere(physics.Vec2) bool { return true }

func TestZeroVarianceAimsExactlyAtNearestTarget(t *testing.T) {
	s := Settings{}
	shooter := physics.NewVec2(0, 4)
	targets := []physics.Vec2{
		physics.NewVec2(3, -3),
		physics.NewVec2(1, 1),
		physics.NewVec2(-2, -2),
	}

	shot := Plan(s, shooter, targets, everywhere, rand.New(rand.NewSource(1)))

	want := physics.NewVec2(1, 1).Minus(shooter).Normalize()
	if shot.Direction != want {
		t.Errorf("direction = %+v, want exactly %+v", shot.Direction, want)
	}
	wantPower := math.Min(0.9, shooter.DistanceTo(physics.NewVec2(1, 1))/5+0.3)
	if shot.Power != wantPower {
		t.Errorf("power = %v, want %v", shot.Power, wantPower)
	}
}

func TestContainmentFiltersTargets(t *testing.T) {
	shooter := physics.NewVec2(0, 4)
	near := physics.NewVec2(0, 3)
	far := physics.NewVec2(0, -2)
	onlyFar := func(p physics.Vec2) bool { return p == far }

	shot := Plan(Settings{}, shooter, []physics.Vec2{near, far}, onlyFar, rand.New(rand.NewSource(1)))

	if shot.Direction != physics.NewVec2(0, -1) {
		t.Errorf("direction = %+v, want straight at the far target", shot.Direction)
	}
	if shot.Power != 0.9 {
		t.Errorf("power = %v, want 0.9 cap for a distance of 6", shot.Power)
	}
}

func TestNoValidTargetsFallsBack(t *testing.T) {
	s := Settings{PowerVariance: 0.3}
	rng := &fixedRand{values: []float64{0.5, 0.5}}

	shot := Plan(s, physics.NewVec2(0, 0), nil, everywhere, rng)

	if math.Abs(shot.Power-0.45) > 1e-12 {
		t.Errorf("power = %v, want 0.45", shot.Power)
	}
	if shot.Direction != physics.NewVec2(0, -1) {
		t.Errorf("direction = %+v, want (0,-1)", shot.Direction)
	}
}

func TestMissIgnoresTargets(t *testing.T) {
	s := Settings{MissChance: 1}
	// miss roll, angle (a quarter turn), power
	rng := &fixedRand{values: []float64{0, 0.25, 1}}

	shot := Plan(s, physics.NewVec2(0, 0), []physics.Vec2{physics.NewVec2(5, 0)}, everywhere, rng)

	if math.Abs(shot.Direction.X) > 1e-12 || math.Abs(shot.Direction.Z-1) > 1e-12 {
		t.Errorf("direction = %+v, want (0,1)", shot.Direction)
	}
	if math.Abs(shot.Power-0.7) > 1e-12 {
		t.Errorf("power = %v, want 0.7", shot.Power)
	}
}

func TestPowerIsClamped(t *testing.T) {
	s := Settings{PowerVariance: 10}
	shooter := physics.NewVec2(0, 0)
	targets := []physics.Vec2{physics.NewVec2(0, -1)}

	low := Plan(s, shooter, targets, everywhere, &fixedRand{values: []float64{0.9, 0.5, 0.5, 0}})
	if low.Power != 0.3 {
		t.Errorf("low power = %v, want 0.3", low.Power)
	}
	high := Plan(s, shooter, targets, everywhere, &fixedRand{values: []float64{0.9, 0.5, 0.5, 1}})
	if high.Power != 1 {
		t.Errorf("high power = %v, want 1", high.Power)
	}
}

func TestSeededPlansAreReproducible(t *testing.T) {
	shooter := physics.NewVec2(0, 4)
	targets := []physics.Vec2{physics.NewVec2(0, -2.2), physics.NewVec2(-1.865, 1.05)}

	for _, d := range []Difficulty{Easy, Medium, Hard} {
		a, err := PlanShot(d, shooter, targets, everywhere, rand.New(rand.NewSource(99)))
		if err != nil {
			t.Fatal(err)
		}
		b, _ := PlanShot(d, shooter, targets, everywhere, rand.New(rand.NewSource(99)))
		if a != b {
			t.Errorf("%s: %+v != %+v", d, a, b)
		}
		if err := a.Validate(); err != nil {
			t.Errorf("%s: planned an invalid shot: %v", d, err)
		}
	}
}

func TestUnknownDifficulty(t *testing.T) {
	_, err := PlanShot("impossible", physics.Vec2{}, nil, everywhere, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrUnknownDifficulty) {
		t.Errorf("err = %v, want ErrUnknownDifficulty", err)
	}
	if _, err := ParseDifficulty(" HARD "); err != nil {
		t.Errorf("ParseDifficulty: %v", err)
	}
}

func TestDifficultySettings(t *testing.T) {
	easy, _ := SettingsFor(Easy)
	hard, _ := SettingsFor(Hard)
	if easy.MissChance <= hard.MissChance || easy.AccuracyVariance <= hard.AccuracyVariance {
		t.Error("easy should be sloppier than hard")
	}
	if easy.ThinkingTime != 2*time.Second {
		t.Errorf("easy thinking time = %v", easy.ThinkingTime)
	}
}
