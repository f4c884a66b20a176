package progress

import (
	"github.com/playmatatu/marbles/internal/level"
	"github.com/playmatatu/marbles/internal/models"
)

// RecordShot counts one shot toward the lifetime total.
func RecordShot(p *models.Progress) {
	p.TotalShots++
}

// ApplyOutcome folds a concluded round into the ledger. A win adds the delta
// and counts a completion of the level. A loss takes marbles away but never
// below zero, while the lifetime loss total grows by the full amount.
// Continue outcomes change nothing.
func ApplyOutcome(p *models.Progress, levelNumber int, out level.RoundOutcome) {
	switch out.Result {
	case level.ResultWin:
		p.MarbleCount += out.MarbleDelta
		p.TotalMarblesWon += out.MarbleDelta
		switch levelNumber {
		case 1:
			p.Level1Completions++
		case 2:
			p.Level2Completions++
		case 3:
			p.Level3Completions++
		}
	case level.ResultLoss:
		lost := out.MarbleDelta
		if lost < 0 {
			lost = -lost
		}
		p.MarbleCount = max(0, p.MarbleCount-lost)
		p.TotalMarblesLost += lost
	}
}

// Unlocked reports whether a level may be started. Level 1 is always open;
// the others need at least one marble to stake.
func Unlocked(p *models.Progress, levelNumber int) bool {
	if levelNumber == 1 {
		return true
	}
	return p.MarbleCount >= 1
}

// Reset zeroes every counter.
func Reset(p *models.Progress) {
	*p = models.Progress{PlayerID: p.PlayerID}
}
