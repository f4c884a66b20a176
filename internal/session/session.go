package session

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/playmatatu/marbles/internal/ai"
	"github.com/playmatatu/marbles/internal/level"
	"github.com/playmatatu/marbles/internal/models"
	"github.com/playmatatu/marbles/internal/physics"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrLevelLocked     = errors.New("level is locked, win a marble first")
	ErrNotOwner        = errors.New("session belongs to another player")
)

// Session is one live round held by the server.
type Session struct {
	Token        string
	PlayerID     int64
	Level        int
	AI           ai.Difficulty
	CreatedAt    time.Time
	LastActivity time.Time

	mu    sync.Mutex
	round *level.Round
	rng   *rand.Rand
}

// BodyView is a body plus the level regions it currently sits in.
type BodyView struct {
	physics.Body
	Regions []string `json:"regions,omitempty"`
}

// Snapshot is the client-facing state of a session.
type Snapshot struct {
	Token        string              `json:"token"`
	Level        int                 `json:"level"`
	LevelName    string              `json:"level_name"`
	Phase        level.Phase         `json:"phase"`
	Shots        int                 `json:"shots"`
	Ticks        int                 `json:"ticks"`
	AIDifficulty ai.Difficulty       `json:"ai_difficulty,omitempty"`
	Bodies       []BodyView          `json:"bodies"`
	Outcome      *level.RoundOutcome `json:"outcome,omitempty"`
	LastActivity time.Time           `json:"last_activity"`
}

// Frame is a sampled tick of a shot in flight.
type Frame struct {
	Tick   int             `json:"tick"`
	Bodies []physics.Body  `json:"bodies"`
	Events []physics.Event `json:"events,omitempty"`
}

// ShotReport is everything a client needs to replay one shot.
type ShotReport struct {
	Token      string             `json:"token"`
	Shot       physics.Shot       `json:"shot"`
	Frames     []Frame            `json:"frames"`
	Outcome    level.RoundOutcome `json:"outcome"`
	Snapshot   Snapshot           `json:"state"`
	Progress   *models.Progress   `json:"progress,omitempty"`
	ThinkingMS int64              `json:"thinking_ms,omitempty"`
}

// snapshot must be called with s.mu held.
func (s *Session) snapshot() Snapshot {
	def := s.round.Definition()
	bodies := s.round.Bodies()
	views := make([]BodyView, len(bodies))
	for i, b := range bodies {
		views[i] = BodyView{Body: b}
		if b.Active() {
			views[i].Regions = s.round.RegionsAt(b.Position)
		}
	}

	snap := Snapshot{
		Token:        s.Token,
		Level:        def.Number,
		LevelName:    def.Name,
		Phase:        s.round.Phase(),
		Shots:        s.round.Shots(),
		Ticks:        s.round.Ticks(),
		AIDifficulty: s.AI,
		Bodies:       views,
		LastActivity: s.LastActivity,
	}
	if out, ok := s.round.LastOutcome(); ok {
		snap.Outcome = &out
	}
	return snap
}

// Snapshot returns the current state of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}
