package physics

// Integrate advances b by one tick: an explicit Euler step followed by
// component-wise friction decay. A body slower than minSpeed afterwards is
// snapped to exactly zero velocity and flagged at rest. Removed bodies are left
// untouched.
func Integrate(b *Body, friction, minSpeed float64) {
	if !b.Active() {
		return
	}

	b.Position = b.Position.Plus(b.Velocity)
	b.Velocity = b.Velocity.Times(friction)

	if b.Velocity.Magnitude() < minSpeed {
		b.stop()
		return
	}
	b.AtRest = false
}
