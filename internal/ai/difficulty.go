package ai

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Settings tunes how sloppy the opponent is.
type Settings struct {
	AccuracyVariance float64       `json:"accuracy_variance"` // noise added to each direction component
	PowerVariance    float64       `json:"power_variance"`
	MissChance       float64       `json:"miss_chance"` // probability of a deliberate wild shot
	ThinkingTime     time.Duration `json:"thinking_time"`
}

var difficulties = map[Difficulty]Settings{
	Easy:   {AccuracyVariance: 0.4, PowerVariance: 0.3, MissChance: 0.3, ThinkingTime: 2 * time.Second},
	Medium: {AccuracyVariance: 0.2, PowerVariance: 0.15, MissChance: 0.1, ThinkingTime: 1500 * time.Millisecond},
	Hard:   {AccuracyVariance: 0.05, PowerVariance: 0.05, MissChance: 0.02, ThinkingTime: time.Second},
}

// SettingsFor returns the fixed tuning for a difficulty.
func SettingsFor(d Difficulty) (Settings, error) {
	s, ok := difficulties[d]
	if !ok {
		return Settings{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, d)
	}
	return s, nil
}

// ParseDifficulty accepts any casing of easy, medium or hard.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if _, err := SettingsFor(d); err != nil {
		return "", err
	}
	return d, nil
}
