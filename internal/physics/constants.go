package physics

// Physics defaults observed across the three marble levels. Coordinates are in
// scene units; one tick is one unit of time.
const (
	MarbleRadius         = 0.2
	SandFriction         = 0.965
	SmoothFriction       = 0.96
	MinSpeed             = 0.002
	PreviewMinSpeed      = 0.002
	WallRestitution      = 0.6
	MarbleRestitution    = 0.85
	LaunchScaleHole      = 0.25
	LaunchScaleFormation = 0.3
	PreviewSteps         = 30

	// MinDragDistance is the shortest drag that counts as a shot.
	MinDragDistance = 0.2
	// DragFullPower is the drag length that maps to power 1.
	DragFullPower = 3.0
)
