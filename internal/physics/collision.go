package physics

// coincidentNormal is the separation axis used when two marbles sit exactly on
// top of each other and still.
var coincidentNormal = Vec2{X: 1, Z: 0}

// fallbackNormal picks a contact normal for coincident bodies: against the
// relative velocity, so the pair counts as approaching, or +x when neither
// moves relative to the other.
func fallbackNormal(a, b *Body) Vec2 {
	rel := a.Velocity.Minus(b.Velocity)
	if rel.IsZero() || !rel.IsFinite() {
		return coincidentNormal
	}
	return rel.Normalize().Invert()
}

// ResolvePair resolves a contact between two equal-mass marbles.
//
// When the bodies overlap and are approaching, an impulse of dvn*restitution is
// applied along the contact normal in opposite directions. Overlapping bodies
// are always pushed apart by half the overlap each, so no penetration survives
// the call. It reports whether the bodies were in contact.
func ResolvePair(a, b *Body, restitution float64) bool {
	if a == b || !a.Active() || !b.Active() {
		return false
	}

	radiusSum := a.Radius + b.Radius
	delta := a.Position.Minus(b.Position)
	distSq := delta.MagnitudeSquared()
	if distSq >= radiusSum*radiusSum {
		return false
	}

	dist := delta.Magnitude()
	var n Vec2
	if dist > 0 {
		n = delta.Times(1 / dist)
	} else {
		n = fallbackNormal(a, b)
	}

	// dvn > 0: already separating, no impulse.
	dvn := a.Velocity.Minus(b.Velocity).Dot(n)
	if dvn <= 0 {
		j := n.Times(dvn * restitution)
		a.Velocity = a.Velocity.Minus(j)
		b.Velocity = b.Velocity.Plus(j)
	}

	push := n.Times((radiusSum - dist) * 0.5)
	a.Position = a.Position.Plus(push)
	b.Position = b.Position.Minus(push)

	a.AtRest = a.Velocity.IsZero()
	b.AtRest = b.Velocity.IsZero()

	return true
}
