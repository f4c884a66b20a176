package physics

// Role distinguishes the marble a player flicks from the marbles it must move.
type Role string

const (
	RoleShooter Role = "SHOOTER"
	RoleTarget  Role = "TARGET"
)

// BodyState tracks whether a marble still takes part in the simulation.
type BodyState string

const (
	BodyActive  BodyState = "ACTIVE"
	BodyRemoved BodyState = "REMOVED" // fell into a hole
)

// Body is a single simulated marble.
type Body struct {
	ID       int       `json:"id"`
	Role     Role      `json:"role"`
	State    BodyState `json:"state"`
	Position Vec2      `json:"position"`
	Velocity Vec2      `json:"velocity"`
	Radius   float64   `json:"radius"`
	AtRest   bool      `json:"at_rest"`
}

// NewBody returns an active marble at rest.
func NewBody(id int, role Role, pos Vec2, radius float64) Body {
	return Body{
		ID:       id,
		Role:     role,
		State:    BodyActive,
		Position: pos,
		Radius:   radius,
		AtRest:   true,
	}
}

func (b Body) Active() bool {
	return b.State == BodyActive
}

// Speed returns the magnitude of the body's velocity.
func (b Body) Speed() float64 {
	return b.Velocity.Magnitude()
}

// stop zeroes the velocity and flags the body at rest.
func (b *Body) stop() {
	b.Velocity = Vec2{}
	b.AtRest = true
}
