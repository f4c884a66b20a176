package physics

// ReflectOffWalls keeps b inside the square arena [-halfExtent, halfExtent]².
// Each axis is handled independently and both are always checked, so a body
// driven into a corner is clamped and reflected on both axes in the same tick.
// It reports whether any wall was touched.
func ReflectOffWalls(b *Body, halfExtent, restitution float64) bool {
	if !b.Active() {
		return false
	}

	lo := -halfExtent + b.Radius
	hi := halfExtent - b.Radius

	hitX := false
	if b.Position.X < lo {
		b.Position.X = lo
		b.Velocity.X = -b.Velocity.X * restitution
		hitX = true
	} else if b.Position.X > hi {
		b.Position.X = hi
		b.Velocity.X = -b.Velocity.X * restitution
		hitX = true
	}

	hitZ := false
	if b.Position.Z < lo {
		b.Position.Z = lo
		b.Velocity.Z = -b.Velocity.Z * restitution
		hitZ = true
	} else if b.Position.Z > hi {
		b.Position.Z = hi
		b.Velocity.Z = -b.Velocity.Z * restitution
		hitZ = true
	}

	return hitX || hitZ
}
