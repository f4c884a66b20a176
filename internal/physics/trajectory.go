package physics

// PathParams describes an aim-assist preview.
type PathParams struct {
	Start       Vec2
	Direction   Vec2
	Power       float64
	Friction    float64
	LaunchScale float64
	MinSpeed    float64 // preview stops once the marble is slower than this
	Steps       int
}

// PredictPath returns the positions a lone marble would pass through if shot
// from Start, by repeatedly applying Integrate to a scratch body. The first
// point is Start; at most Steps points are returned. Walls and other marbles
// are ignored, and no simulation state is touched.
func PredictPath(p PathParams) []Vec2 {
	if p.Steps <= 0 {
		return nil
	}
	minSpeed := p.MinSpeed
	if minSpeed <= 0 {
		minSpeed = PreviewMinSpeed
	}

	b := NewBody(0, RoleShooter, p.Start, MarbleRadius)
	b.Velocity = p.Direction.Normalize().Times(p.Power * p.LaunchScale)

	points := make([]Vec2, 0, p.Steps)
	for i := 0; i < p.Steps; i++ {
		points = append(points, b.Position)
		Integrate(&b, p.Friction, minSpeed)
		if b.AtRest {
			break
		}
	}
	return points
}
