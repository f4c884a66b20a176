package physics

// EventType classifies what happened to a body during a tick.
type EventType string

const (
	EventBody EventType = "body" // marble-marble impulse
	EventWall EventType = "wall"
	EventHole EventType = "hole"
)

// Event records a contact for rule checking, replays and sound playback.
type Event struct {
	Tick     int       `json:"tick"`
	Type     EventType `json:"type"`
	BodyID   int       `json:"body_id"`
	TargetID int       `json:"target_id"` // other body ID, or hole index; -1 for walls
	Speed    float64   `json:"speed"`     // impact speed
}
