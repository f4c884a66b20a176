package level

import (
	"fmt"

	"github.com/playmatatu/marbles/internal/physics"
)

// Phase is where a round sits in its lifecycle.
type Phase string

const (
	PhaseSetup      Phase = "SETUP"
	PhaseInProgress Phase = "IN_PROGRESS"
	PhaseResolving  Phase = "RESOLVING"
	PhaseConcluded  Phase = "CONCLUDED"
)

// TickResult is reported after every Tick. Outcome is set on the tick the
// round resolves, including a Continue.
type TickResult struct {
	Tick      int             `json:"tick"`
	AllAtRest bool            `json:"all_at_rest"`
	Outcome   *RoundOutcome   `json:"outcome,omitempty"`
	Fell      []int           `json:"fell,omitempty"`
	Events    []physics.Event `json:"events,omitempty"`
}

// Round is one playthrough of a level, from the start layout until a win or
// a loss. It is not safe for concurrent use.
type Round struct {
	def     Definition
	regions map[string]physics.Region
	sim     *physics.Simulation

	phase    Phase
	inFlight bool
	shots    int
	last     *RoundOutcome
}

// NewRound validates the level and places the marbles at their start
// positions.
func NewRound(def Definition) (*Round, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("level %d: %w", def.Number, err)
	}
	r := &Round{def: def, regions: def.regionMap()}
	if err := r.Reset(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reset discards the current bodies and rebuilds the start layout.
func (r *Round) Reset() error {
	sim, err := physics.NewSimulation(r.def.Physics, r.def.Bodies(), r.def.Holes)
	if err != nil {
		return fmt.Errorf("level %d: %w", r.def.Number, err)
	}
	r.sim = sim
	r.phase = PhaseSetup
	r.inFlight = false
	r.shots = 0
	r.last = nil
	return nil
}

func (r *Round) Definition() Definition { return r.def }
func (r *Round) Phase() Phase           { return r.phase }
func (r *Round) Shots() int             { return r.shots }
func (r *Round) Ticks() int             { return r.sim.Ticks() }

// InFlight reports whether a shot is still being simulated.
func (r *Round) InFlight() bool { return r.inFlight }

// Bodies returns a snapshot of every marble.
func (r *Round) Bodies() []physics.Body { return r.sim.Bodies() }

// Shooter returns a snapshot of the shooter marble.
func (r *Round) Shooter() physics.Body {
	b, _ := r.sim.Body(0)
	return b
}

// LastOutcome returns the most recent resolution, if any.
func (r *Round) LastOutcome() (RoundOutcome, bool) {
	if r.last == nil {
		return RoundOutcome{}, false
	}
	return *r.last, true
}

// RegionsAt lists the names of the level regions containing p.
func (r *Round) RegionsAt(p physics.Vec2) []string {
	var names []string
	for _, reg := range r.def.Regions {
		if reg.Contains(p) {
			names = append(names, reg.Name())
		}
	}
	return names
}

// AimPoints returns the positions an opponent would aim at: the active
// targets, or the hole centres on levels without targets.
func (r *Round) AimPoints() []physics.Vec2 {
	var points []physics.Vec2
	for _, b := range r.sim.Bodies() {
		if b.Role == physics.RoleTarget && b.Active() {
			points = append(points, b.Position)
		}
	}
	if len(r.def.Targets) == 0 {
		for _, h := range r.def.Holes {
			points = append(points, h.Center)
		}
	}
	return points
}

// TargetContains is the containment predicate for AI target selection.
func (r *Round) TargetContains(p physics.Vec2) bool {
	reg, ok := r.regions[r.def.TargetRegion]
	if !ok {
		return true
	}
	return reg.Contains(p)
}

// Shoot launches the shooter. It is accepted before the first shot and
// whenever the previous shot has settled without ending the round.
func (r *Round) Shoot(shot physics.Shot) error {
	if r.phase == PhaseConcluded {
		return ErrRoundConcluded
	}
	if r.inFlight {
		return ErrShotInFlight
	}
	if err := r.sim.Launch(0, shot); err != nil {
		return err
	}
	r.shots++
	r.phase = PhaseInProgress
	r.inFlight = true
	return nil
}

// Tick advances the simulation by one step. It does nothing unless a shot is
// in flight.
func (r *Round) Tick() TickResult {
	if !r.inFlight {
		return TickResult{Tick: r.sim.Ticks(), AllAtRest: r.sim.AllAtRest()}
	}

	step := r.sim.Step()
	res := TickResult{
		Tick:      step.Tick,
		AllAtRest: step.AllAtRest,
		Fell:      step.Fell,
		Events:    step.Events,
	}

	switch {
	case r.def.EndOnHoleEntry && len(step.Fell) > 0:
		r.sim.Halt()
		res.AllAtRest = true
	case !step.AllAtRest:
		return res
	}

	outcome := r.resolve()
	res.Outcome = &outcome
	return res
}

func (r *Round) resolve() RoundOutcome {
	r.phase = PhaseResolving
	r.inFlight = false

	b := board{bodies: r.sim.Bodies(), regions: r.regions}
	outcome := b.evaluate(r.def.Rules)
	r.last = &outcome

	if outcome.Final() {
		r.phase = PhaseConcluded
	} else {
		r.phase = PhaseInProgress
	}
	return outcome
}

// Play shoots and ticks until the shot resolves. It returns ErrNotSettled,
// leaving the shot in flight, when maxTicks is not enough.
func (r *Round) Play(shot physics.Shot, maxTicks int) (RoundOutcome, error) {
	if err := r.Shoot(shot); err != nil {
		return RoundOutcome{}, err
	}
	for i := 0; i < maxTicks; i++ {
		if res := r.Tick(); res.Outcome != nil {
			return *res.Outcome, nil
		}
	}
	return RoundOutcome{}, ErrNotSettled
}
