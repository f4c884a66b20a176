package level

import (
	"fmt"
	"slices"

	"github.com/playmatatu/marbles/internal/physics"
)

// Result is the verdict of one resolution.
type Result string

const (
	ResultWin      Result = "WIN"
	ResultLoss     Result = "LOSS"
	ResultContinue Result = "CONTINUE"
)

// RoundOutcome is what the host applies to persisted progress.
type RoundOutcome struct {
	Result      Result   `json:"result"`
	MarbleDelta int      `json:"marble_delta"`
	Regions     []string `json:"regions,omitempty"` // regions that decided the outcome
	Bodies      []int    `json:"bodies,omitempty"`  // bodies that decided the outcome
	Reason      string   `json:"reason,omitempty"`
}

// Final reports whether the outcome ends the round.
func (o RoundOutcome) Final() bool {
	return o.Result == ResultWin || o.Result == ResultLoss
}

// ClauseKind names one predicate from the rule vocabulary.
type ClauseKind string

const (
	KindShooterFellInto   ClauseKind = "shooter_fell_into"
	KindShooterFell       ClauseKind = "shooter_fell"
	KindAnyTargetFell     ClauseKind = "any_target_fell"
	KindShooterInside     ClauseKind = "shooter_inside"
	KindShooterOutside    ClauseKind = "shooter_outside"
	KindAllTargetsOutside ClauseKind = "all_targets_outside"
)

// Clause is a single condition over the settled bodies.
type Clause struct {
	Kind   ClauseKind `json:"kind"`
	Region string     `json:"region,omitempty"`
}

// ShooterFellInto holds when the shooter was removed by a hole while its
// centre lay inside region.
func ShooterFellInto(region string) Clause {
	return Clause{Kind: KindShooterFellInto, Region: region}
}

func ShooterFell() Clause   { return Clause{Kind: KindShooterFell} }
func AnyTargetFell() Clause { return Clause{Kind: KindAnyTargetFell} }

// ShooterInside holds when the shooter is still in play and inside region.
func ShooterInside(region string) Clause {
	return Clause{Kind: KindShooterInside, Region: region}
}

// ShooterOutside holds when the shooter is still in play and outside region.
func ShooterOutside(region string) Clause {
	return Clause{Kind: KindShooterOutside, Region: region}
}

// AllTargetsOutside holds when no target still in play is inside region.
// Removed targets count as accounted for.
func AllTargetsOutside(region string) Clause {
	return Clause{Kind: KindAllTargetsOutside, Region: region}
}

// Rule fires when every clause holds. The reward is Delta, plus one per active
// target outside PerTargetOutside when that region is set.
type Rule struct {
	Result           Result   `json:"result"`
	All              []Clause `json:"all"`
	Delta            int      `json:"delta"`
	PerTargetOutside string   `json:"per_target_outside,omitempty"`
	Reason           string   `json:"reason,omitempty"`
}

// board is the read-only view the rules are evaluated against.
type board struct {
	bodies  []physics.Body
	regions map[string]physics.Region
}

func (b board) shooter() (physics.Body, bool) {
	for _, body := range b.bodies {
		if body.Role == physics.RoleShooter {
			return body, true
		}
	}
	return physics.Body{}, false
}

func (b board) targets() []physics.Body {
	var out []physics.Body
	for _, body := range b.bodies {
		if body.Role == physics.RoleTarget {
			out = append(out, body)
		}
	}
	return out
}

// check evaluates one clause and returns the IDs of the bodies that satisfied it.
func (b board) check(c Clause) (bool, []int) {
	region := b.regions[c.Region]
	shooter, hasShooter := b.shooter()

	switch c.Kind {
	case KindShooterFellInto:
		if hasShooter && !shooter.Active() && region.Contains(shooter.Position) {
			return true, []int{shooter.ID}
		}
	case KindShooterFell:
		if hasShooter && !shooter.Active() {
			return true, []int{shooter.ID}
		}
	case KindAnyTargetFell:
		var fell []int
		for _, t := range b.targets() {
			if !t.Active() {
				fell = append(fell, t.ID)
			}
		}
		return len(fell) > 0, fell
	case KindShooterInside:
		if hasShooter && shooter.Active() && region.Contains(shooter.Position) {
			return true, []int{shooter.ID}
		}
	case KindShooterOutside:
		if hasShooter && shooter.Active() && !region.Contains(shooter.Position) {
			return true, []int{shooter.ID}
		}
	case KindAllTargetsOutside:
		var ids []int
		for _, t := range b.targets() {
			if !t.Active() {
				continue
			}
			if region.Contains(t.Position) {
				return false, nil
			}
			ids = append(ids, t.ID)
		}
		return true, ids
	}
	return false, nil
}

func (b board) countOutside(region string) int {
	r := b.regions[region]
	n := 0
	for _, t := range b.targets() {
		if t.Active() && !r.Contains(t.Position) {
			n++
		}
	}
	return n
}

// evaluate walks the rules in order; the first rule whose clauses all hold
// decides. No match is a Continue with zero delta.
func (b board) evaluate(rules []Rule) RoundOutcome {
	for _, rule := range rules {
		matched := true
		var regions []string
		var bodies []int
		for _, c := range rule.All {
			ok, ids := b.check(c)
			if !ok {
				matched = false
				break
			}
			if c.Region != "" && !slices.Contains(regions, c.Region) {
				regions = append(regions, c.Region)
			}
			for _, id := range ids {
				if !slices.Contains(bodies, id) {
					bodies = append(bodies, id)
				}
			}
		}
		if !matched {
			continue
		}

		delta := rule.Delta
		if rule.PerTargetOutside != "" {
			delta += b.countOutside(rule.PerTargetOutside)
		}
		return RoundOutcome{
			Result:      rule.Result,
			MarbleDelta: delta,
			Regions:     regions,
			Bodies:      bodies,
			Reason:      rule.Reason,
		}
	}
	return RoundOutcome{Result: ResultContinue}
}

// validateRules makes sure every region a rule mentions exists.
func validateRules(rules []Rule, regions map[string]physics.Region) error {
	for i, rule := range rules {
		for _, c := range rule.All {
			if c.Region == "" {
				if c.Kind == KindShooterFellInto || c.Kind == KindShooterInside ||
					c.Kind == KindShooterOutside || c.Kind == KindAllTargetsOutside {
					return fmt.Errorf("rule %d %s: %w", i, c.Kind, ErrUnknownRegion)
				}
				continue
			}
			if _, ok := regions[c.Region]; !ok {
				return fmt.Errorf("rule %d: %q: %w", i, c.Region, ErrUnknownRegion)
			}
		}
		if rule.PerTargetOutside != "" {
			if _, ok := regions[rule.PerTargetOutside]; !ok {
				return fmt.Errorf("rule %d reward: %q: %w", i, rule.PerTargetOutside, ErrUnknownRegion)
			}
		}
	}
	return nil
}
