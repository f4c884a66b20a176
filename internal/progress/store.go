package progress

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/playmatatu/marbles/internal/level"
	"github.com/playmatatu/marbles/internal/models"
)

// Store persists progress and round history.
type Store interface {
	Get(ctx context.Context, playerID int64) (*models.Progress, error)
	RecordShot(ctx context.Context, playerID int64) error
	Settle(ctx context.Context, playerID int64, levelNumber int, out level.RoundOutcome, shots int) (*models.Progress, error)
	Reset(ctx context.Context, playerID int64) (*models.Progress, error)
	History(ctx context.Context, playerID int64, limit int) ([]models.Round, error)
}

const progressColumns = `player_id, marble_count, level1_completions, level2_completions, level3_completions,
	total_marbles_won, total_marbles_lost, total_shots, updated_at`

// SQLStore keeps progress in Postgres.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Get returns the player's progress, creating an empty row on first access.
func (s *SQLStore) Get(ctx context.Context, playerID int64) (*models.Progress, error) {
	if _, err := s.db.ExecContext(ctx, `INSERT INTO progress (player_id) VALUES ($1) ON CONFLICT (player_id) DO NOTHING`, playerID); err != nil {
		return nil, fmt.Errorf("ensure progress: %w", err)
	}
	var p models.Progress
	if err := s.db.GetContext(ctx, &p, `SELECT `+progressColumns+` FROM progress WHERE player_id=$1`, playerID); err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return &p, nil
}

func (s *SQLStore) RecordShot(ctx context.Context, playerID int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE progress SET total_shots = total_shots + 1, updated_at = NOW() WHERE player_id=$1`, playerID)
	return err
}

// Settle applies a concluded round and records it in the history table.
func (s *SQLStore) Settle(ctx context.Context, playerID int64, levelNumber int, out level.RoundOutcome, shots int) (*models.Progress, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var p models.Progress
	if err := tx.GetContext(ctx, &p, `SELECT `+progressColumns+` FROM progress WHERE player_id=$1 FOR UPDATE`, playerID); err != nil {
		return nil, fmt.Errorf("lock progress: %w", err)
	}

	ApplyOutcome(&p, levelNumber, out)

	_, err = tx.ExecContext(ctx, `UPDATE progress SET marble_count=$1, level1_completions=$2, level2_completions=$3,
		level3_completions=$4, total_marbles_won=$5, total_marbles_lost=$6, updated_at=NOW() WHERE player_id=$7`,
		p.MarbleCount, p.Level1Completions, p.Level2Completions, p.Level3Completions,
		p.TotalMarblesWon, p.TotalMarblesLost, playerID)
	if err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO rounds (player_id, level, result, marble_delta, shots, regions) VALUES ($1, $2, $3, $4, $5, $6)`,
		playerID, levelNumber, string(out.Result), out.MarbleDelta, shots, pq.Array(out.Regions))
	if err != nil {
		return nil, fmt.Errorf("insert round: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLStore) Reset(ctx context.Context, playerID int64) (*models.Progress, error) {
	_, err := s.db.ExecContext(ctx, `UPDATE progress SET marble_count=0, level1_completions=0, level2_completions=0,
		level3_completions=0, total_marbles_won=0, total_marbles_lost=0, total_shots=0, updated_at=NOW() WHERE player_id=$1`, playerID)
	if err != nil {
		return nil, fmt.Errorf("reset progress: %w", err)
	}
	return s.Get(ctx, playerID)
}

func (s *SQLStore) History(ctx context.Context, playerID int64, limit int) ([]models.Round, error) {
	var rounds []models.Round
	err := s.db.SelectContext(ctx, &rounds, `SELECT id, player_id, level, result, marble_delta, shots, regions, created_at
		FROM rounds WHERE player_id=$1 ORDER BY created_at DESC LIMIT $2`, playerID, limit)
	return rounds, err
}

// MemoryStore keeps progress in process. It backs the offline simulator and
// tests.
type MemoryStore struct {
	mu       sync.Mutex
	progress map[int64]*models.Progress
	rounds   []models.Round
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{progress: make(map[int64]*models.Progress)}
}

func (m *MemoryStore) get(playerID int64) *models.Progress {
	p, ok := m.progress[playerID]
	if !ok {
		p = &models.Progress{PlayerID: playerID, UpdatedAt: time.Now()}
		m.progress[playerID] = p
	}
	return p
}

func (m *MemoryStore) Get(_ context.Context, playerID int64) (*models.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.get(playerID)
	return &cp, nil
}

func (m *MemoryStore) RecordShot(_ context.Context, playerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	RecordShot(m.get(playerID))
	return nil
}

func (m *MemoryStore) Settle(_ context.Context, playerID int64, levelNumber int, out level.RoundOutcome, shots int) (*models.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.get(playerID)
	ApplyOutcome(p, levelNumber, out)
	p.UpdatedAt = time.Now()
	m.rounds = append(m.rounds, models.Round{
		ID:          int64(len(m.rounds) + 1),
		PlayerID:    playerID,
		Level:       levelNumber,
		Result:      string(out.Result),
		MarbleDelta: out.MarbleDelta,
		Shots:       shots,
		Regions:     pq.StringArray(slices.Clone(out.Regions)),
		CreatedAt:   p.UpdatedAt,
	})
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) Reset(_ context.Context, playerID int64) (*models.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.get(playerID)
	Reset(p)
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) History(_ context.Context, playerID int64, limit int) ([]models.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Round
	for i := len(m.rounds) - 1; i >= 0 && len(out) < limit; i-- {
		if m.rounds[i].PlayerID == playerID {
			out = append(out, m.rounds[i])
		}
	}
	return out, nil
}
