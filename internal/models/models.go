package models

import (
	"time"

	"github.com/lib/pq"
)

// Player is a registered account.
type Player struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	PinHash   string    `db:"pin_hash" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Progress is the persisted marble ledger of one player.
type Progress struct {
	PlayerID          int64     `db:"player_id" json:"player_id"`
	MarbleCount       int       `db:"marble_count" json:"marble_count"`
	Level1Completions int       `db:"level1_completions" json:"level1_completions"`
	Level2Completions int       `db:"level2_completions" json:"level2_completions"`
	Level3Completions int       `db:"level3_completions" json:"level3_completions"`
	TotalMarblesWon   int       `db:"total_marbles_won" json:"total_marbles_won"`
	TotalMarblesLost  int       `db:"total_marbles_lost" json:"total_marbles_lost"`
	TotalShots        int       `db:"total_shots" json:"total_shots"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Round is a concluded round, kept for history.
type Round struct {
	ID          int64          `db:"id" json:"id"`
	PlayerID    int64          `db:"player_id" json:"player_id"`
	Level       int            `db:"level" json:"level"`
	Result      string         `db:"result" json:"result"`
	MarbleDelta int            `db:"marble_delta" json:"marble_delta"`
	Shots       int            `db:"shots" json:"shots"`
	Regions     pq.StringArray `db:"regions" json:"regions"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}
