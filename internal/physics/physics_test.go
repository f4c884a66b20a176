package physics

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-9

func kineticEnergy(bodies ...*Body) float64 {
	e := 0.0
	for _, b := range bodies {
		e += 0.5 * b.Velocity.MagnitudeSquared()
	}
	return e
}

func TestIntegrateEulerStepThenFriction(t *testing.T) {
	b := NewBody(0, RoleShooter, NewVec2(1, 2), MarbleRadius)
	b.Velocity = NewVec2(0.5, -0.25)

	Integrate(&b, 0.5, MinSpeed)

	if b.Position != NewVec2(1.5, 1.75) {
		t.Errorf("position = %+v, want (1.5, 1.75)", b.Position)
	}
	if b.Velocity != NewVec2(0.25, -0.125) {
		t.Errorf("velocity = %+v, want (0.25, -0.125)", b.Velocity)
	}
	if b.AtRest {
		t.Error("body moving at 0.28 should not be at rest")
	}
}

func TestIntegrateSnapsSlowBodiesToZero(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		b := NewBody(0, RoleTarget, NewVec2(0, 0), MarbleRadius)
		b.Velocity = NewVec2((rng.Float64()-0.5)*0.01, (rng.Float64()-0.5)*0.01)

		Integrate(&b, SandFriction, MinSpeed)

		if b.Velocity.Magnitude() < MinSpeed && !b.Velocity.IsZero() {
			t.Fatalf("velocity %+v below min speed was not zeroed", b.Velocity)
		}
		if b.Velocity.IsZero() != b.AtRest {
			t.Fatalf("at-rest flag %v disagrees with velocity %+v", b.AtRest, b.Velocity)
		}
	}
}

func TestIntegrateIgnoresRemovedBodies(t *testing.T) {
	b := NewBody(0, RoleTarget, NewVec2(1, 1), MarbleRadius)
	b.Velocity = NewVec2(1, 0)
	b.State = BodyRemoved

	Integrate(&b, SandFriction, MinSpeed)

	if b.Position != NewVec2(1, 1) || b.Velocity != NewVec2(1, 0) {
		t.Errorf("removed body changed: pos=%+v vel=%+v", b.Position, b.Velocity)
	}
}

func TestReflectOffUpperWall(t *testing.T) {
	halfExtent, restitution, v := 5.0, WallRestitution, 0.5
	b := NewBody(0, RoleShooter, NewVec2(halfExtent-MarbleRadius+0.05, 0), MarbleRadius)
	b.Velocity = NewVec2(v, 0)

	if !ReflectOffWalls(&b, halfExtent, restitution) {
		t.Fatal("expected a wall hit")
	}
	if b.Position.X != halfExtent-MarbleRadius {
		t.Errorf("x = %v, want %v", b.Position.X, halfExtent-MarbleRadius)
	}
	if b.Velocity.X != -v*restitution {
		t.Errorf("vx = %v, want %v", b.Velocity.X, -v*restitution)
	}
	if b.Velocity.Z != 0 {
		t.Errorf("vz = %v, want 0", b.Velocity.Z)
	}
}

func TestReflectOffWallsHandlesCorners(t *testing.T) {
	b := NewBody(0, RoleShooter, NewVec2(-10, -10), MarbleRadius)
	b.Velocity = NewVec2(-1, -2)

	ReflectOffWalls(&b, 5, 0.6)

	lo := -5 + MarbleRadius
	if b.Position.X != lo || b.Position.Z != lo {
		t.Errorf("position = %+v, want both axes clamped to %v", b.Position, lo)
	}
	if b.Velocity.X <= 0 || b.Velocity.Z <= 0 {
		t.Errorf("velocity = %+v, want both components reflected", b.Velocity)
	}
}

func TestReflectOffWallsLeavesInteriorBodiesAlone(t *testing.T) {
	b := NewBody(0, RoleShooter, NewVec2(1, -1), MarbleRadius)
	b.Velocity = NewVec2(0.1, 0.1)
	if ReflectOffWalls(&b, 5, 0.6) {
		t.Error("interior body reported a wall hit")
	}
	if b.Velocity != NewVec2(0.1, 0.1) {
		t.Errorf("velocity changed to %+v", b.Velocity)
	}
}

func TestResolvePairHeadOn(t *testing.T) {
	a := NewBody(0, RoleShooter, NewVec2(0, 0), MarbleRadius)
	b := NewBody(1, RoleTarget, NewVec2(0.3, 0), MarbleRadius)
	a.Velocity = NewVec2(0.2, 0)

	if !ResolvePair(&a, &b, MarbleRestitution) {
		t.Fatal("expected a collision")
	}
	if b.Velocity.X <= 0 {
		t.Errorf("target should move away from shooter, vx=%v", b.Velocity.X)
	}
	if a.Velocity.X >= 0.2 {
		t.Errorf("shooter should slow down, vx=%v", a.Velocity.X)
	}
	if math.Abs(a.Velocity.X+b.Velocity.X-0.2) > eps {
		t.Errorf("momentum not conserved: %v + %v", a.Velocity.X, b.Velocity.X)
	}
}

func TestResolvePairNeverAddsEnergyOrLeavesOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		a := NewBody(0, RoleShooter, NewVec2(rng.Float64()*0.3, rng.Float64()*0.3), MarbleRadius)
		b := NewBody(1, RoleTarget, NewVec2(rng.Float64()*0.3, rng.Float64()*0.3), MarbleRadius)
		a.Velocity = NewVec2(rng.Float64()-0.5, rng.Float64()-0.5)
		b.Velocity = NewVec2(rng.Float64()-0.5, rng.Float64()-0.5)
		restitution := rng.Float64()

		before := kineticEnergy(&a, &b)
		overlapping := Distance(a.Position, b.Position) < a.Radius+b.Radius
		hit := ResolvePair(&a, &b, restitution)

		if hit != overlapping {
			t.Fatalf("case %d: hit=%v but overlapping=%v", i, hit, overlapping)
		}
		if after := kineticEnergy(&a, &b); after > before+eps {
			t.Fatalf("case %d: energy grew from %v to %v", i, before, after)
		}
		if d := Distance(a.Position, b.Position); hit && d < a.Radius+b.Radius-eps {
			t.Fatalf("case %d: residual overlap, distance %v", i, d)
		}
	}
}

func TestResolvePairSkipsImpulseWhenSeparating(t *testing.T) {
	a := NewBody(0, RoleShooter, NewVec2(0, 0), MarbleRadius)
	b := NewBody(1, RoleTarget, NewVec2(0.3, 0), MarbleRadius)
	a.Velocity = NewVec2(-0.1, 0)
	b.Velocity = NewVec2(0.1, 0)

	ResolvePair(&a, &b, MarbleRestitution)

	if a.Velocity != NewVec2(-0.1, 0) || b.Velocity != NewVec2(0.1, 0) {
		t.Errorf("separating pair got an impulse: a=%+v b=%+v", a.Velocity, b.Velocity)
	}
	if d := Distance(a.Position, b.Position); d < 0.4-eps {
		t.Errorf("overlap not removed, distance %v", d)
	}
}

func TestResolvePairCoincidentBodiesAtRest(t *testing.T) {
	a := NewBody(0, RoleShooter, NewVec2(1, 1), MarbleRadius)
	b := NewBody(1, RoleTarget, NewVec2(1, 1), MarbleRadius)

	ResolvePair(&a, &b, MarbleRestitution)

	if !a.Position.IsFinite() || !b.Position.IsFinite() || !a.Velocity.IsFinite() || !b.Velocity.IsFinite() {
		t.Fatalf("NaN after coincident resolve: a=%+v b=%+v", a, b)
	}
	if a.Position.X <= b.Position.X {
		t.Errorf("expected a pushed toward +x and b toward -x: a=%+v b=%+v", a.Position, b.Position)
	}
	if d := Distance(a.Position, b.Position); math.Abs(d-0.4) > eps {
		t.Errorf("distance = %v, want 0.4", d)
	}
}

func TestResolvePairCoincidentMovingShooterHitsTarget(t *testing.T) {
	a := NewBody(0, RoleShooter, NewVec2(0.3, 0), MarbleRadius)
	b := NewBody(1, RoleTarget, NewVec2(0.3, 0), MarbleRadius)
	a.Velocity = NewVec2(0.3, 0)

	if !ResolvePair(&a, &b, MarbleRestitution) {
		t.Fatal("coincident bodies should collide")
	}

	wantB := 0.3 * MarbleRestitution
	if math.Abs(b.Velocity.X-wantB) > eps || math.Abs(b.Velocity.Z) > eps {
		t.Errorf("target velocity = %+v, want (%v, 0)", b.Velocity, wantB)
	}
	if math.Abs(a.Velocity.X-(0.3-wantB)) > eps {
		t.Errorf("shooter velocity = %+v, want (%v, 0)", a.Velocity, 0.3-wantB)
	}
	if b.Position.X <= a.Position.X {
		t.Errorf("target should be pushed ahead of the shooter: a=%+v b=%+v", a.Position, b.Position)
	}
	if d := Distance(a.Position, b.Position); math.Abs(d-0.4) > eps {
		t.Errorf("distance = %v, want 0.4", d)
	}
}

func TestBodyAccessorsOnCopies(t *testing.T) {
	if !NewBody(0, RoleShooter, NewVec2(0, 0), MarbleRadius).Active() {
		t.Error("new body should be active")
	}
	if s := NewBody(0, RoleShooter, NewVec2(0, 0), MarbleRadius).Speed(); s != 0 {
		t.Errorf("speed = %v, want 0", s)
	}
}

func TestResolvePairIgnoresDistantAndRemovedBodies(t *testing.T) {
	a := NewBody(0, RoleShooter, NewVec2(0, 0), MarbleRadius)
	b := NewBody(1, RoleTarget, NewVec2(1, 0), MarbleRadius)
	if ResolvePair(&a, &b, 1) {
		t.Error("distant bodies should not collide")
	}

	b.Position = NewVec2(0.1, 0)
	b.State = BodyRemoved
	if ResolvePair(&a, &b, 1) {
		t.Error("removed body should not collide")
	}
}

func TestCircleContainment(t *testing.T) {
	c := NewVec2(2, -1)
	if !InsideCircle(c, c, 0.01) {
		t.Error("centre should be inside")
	}
	if InsideCircle(NewVec2(3, 0), NewVec2(0, 0), 3) {
		t.Error("boundary point should be outside")
	}
	if InsideCircle(c, c, 0) {
		t.Error("zero-radius circle should contain nothing")
	}
	if !InsideHole(NewVec2(0.1, 0.1), NewVec2(0, 0), 0.4) {
		t.Error("point near hole centre should be inside")
	}
}

func TestTriangleContainment(t *testing.T) {
	v1, v2, v3 := NewVec2(0, 2), NewVec2(-2, -1), NewVec2(2, -1)

	if !InsideTriangle(NewVec2(0, 0), v1, v2, v3) {
		t.Error("(0,0) should be inside")
	}
	if InsideTriangle(NewVec2(0, 5), v1, v2, v3) {
		t.Error("(0,5) should be outside")
	}
	if !InsideTriangle(NewVec2(0, -1), v1, v2, v3) {
		t.Error("edge point should count as inside")
	}
	if !InsideTriangle(NewVec2(0, 0), v3, v2, v1) {
		t.Error("winding order should not matter")
	}
	if InsideTriangle(NewVec2(1, 1), NewVec2(0, 0), NewVec2(1, 1), NewVec2(2, 2)) {
		t.Error("zero-area triangle should contain nothing")
	}
}

func TestCrossBandIsPlusShaped(t *testing.T) {
	center := NewVec2(0, 0)
	cases := []struct {
		p    Vec2
		want bool
	}{
		{NewVec2(0.1, 2.5), true},
		{NewVec2(-2.5, 0.2), true},
		{NewVec2(0, 0), true},
		{NewVec2(1, 1), false},
		{NewVec2(0.25, 3), false},
	}
	for _, tc := range cases {
		if got := InsideCrossBand(tc.p, center, 0.25); got != tc.want {
			t.Errorf("InsideCrossBand(%+v) = %v, want %v", tc.p, got, tc.want)
		}
	}
	if InsideCrossBand(center, center, 0) {
		t.Error("zero-width band should contain nothing")
	}
}

func TestValidateRegionRejectsNegativeSizes(t *testing.T) {
	if err := ValidateRegion(Circle{Label: "c", Radius: -1}); !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("circle: err = %v, want ErrInvalidRadius", err)
	}
	if err := ValidateRegion(CrossBand{Label: "x", HalfWidth: -0.1}); !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("cross: err = %v, want ErrInvalidRadius", err)
	}
	if err := ValidateRegion(Hole{Label: "h", Radius: 0}); err != nil {
		t.Errorf("zero-radius hole should be allowed, got %v", err)
	}
}

func TestShotFromDrag(t *testing.T) {
	if _, ok := ShotFromDrag(NewVec2(0, 0), NewVec2(0.1, 0.1)); ok {
		t.Error("short drag should not produce a shot")
	}

	shot, ok := ShotFromDrag(NewVec2(0, 0), NewVec2(0, 1.5))
	if !ok {
		t.Fatal("expected a shot")
	}
	if math.Abs(shot.Power-0.5) > eps {
		t.Errorf("power = %v, want 0.5", shot.Power)
	}
	if shot.Direction != NewVec2(0, -1) {
		t.Errorf("direction = %+v, want (0,-1)", shot.Direction)
	}

	long, _ := ShotFromDrag(NewVec2(0, 0), NewVec2(9, 0))
	if long.Power != 1 {
		t.Errorf("power = %v, want clamp to 1", long.Power)
	}
}

func TestNewShotValidation(t *testing.T) {
	if _, err := NewShot(1.5, NewVec2(1, 0)); !errors.Is(err, ErrInvalidShot) {
		t.Errorf("power 1.5: err = %v", err)
	}
	if _, err := NewShot(0.5, Vec2{}); !errors.Is(err, ErrInvalidShot) {
		t.Errorf("zero direction: err = %v", err)
	}
	s, err := NewShot(0.5, NewVec2(3, 4))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(s.Direction.Magnitude()-1) > eps {
		t.Errorf("direction not normalized: %+v", s.Direction)
	}
}
