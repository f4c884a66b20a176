package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/playmatatu/marbles/internal/ai"
	"github.com/playmatatu/marbles/internal/config"
	"github.com/playmatatu/marbles/internal/level"
	"github.com/playmatatu/marbles/internal/physics"
	"github.com/playmatatu/marbles/internal/progress"
	"github.com/redis/go-redis/v9"
)

const (
	expiryKey    = "session_expiry"
	eventChannel = "round_events"
)

// ShotListener is told about every resolved shot, whichever transport
// triggered it.
type ShotListener func(report *ShotReport)

// Manager owns every live session.
type Manager struct {
	sessions map[string]*Session
	store    progress.Store
	rdb      *redis.Client
	cfg      *config.Config
	mu       sync.RWMutex

	// instanceID tags published events so this server can skip its own.
	instanceID string

	listener ShotListener
	now      func() time.Time
	newRand  func() *mrand.Rand
}

func NewManager(store progress.Store, rdb *redis.Client, cfg *config.Config) *Manager {
	return &Manager{
		sessions:   make(map[string]*Session),
		store:      store,
		rdb:        rdb,
		cfg:        cfg,
		instanceID: generateToken(8),
		now:        time.Now,
		newRand: func() *mrand.Rand {
			return mrand.New(mrand.NewSource(time.Now().UnixNano()))
		},
	}
}

// InstanceID identifies this manager in published round events.
func (m *Manager) InstanceID() string {
	return m.instanceID
}

// SetShotListener registers the callback used to stream shots to watchers.
func (m *Manager) SetShotListener(l ShotListener) {
	m.mu.Lock()
	m.listener = l
	m.mu.Unlock()
}

func generateToken(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Create opens a new round of the given level for a player. Levels above 1
// need at least one marble in the player's progress.
func (m *Manager) Create(ctx context.Context, playerID int64, levelNumber int, difficulty string) (*Session, error) {
	def, err := level.Lookup(levelNumber)
	if err != nil {
		return nil, err
	}

	var d ai.Difficulty
	if difficulty != "" {
		if d, err = ai.ParseDifficulty(difficulty); err != nil {
			return nil, err
		}
	}

	p, err := m.store.Get(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if !progress.Unlocked(p, levelNumber) {
		return nil, ErrLevelLocked
	}

	round, err := level.NewRound(def)
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := &Session{
		Token:        generateToken(12),
		PlayerID:     playerID,
		Level:        levelNumber,
		AI:           d,
		CreatedAt:    now,
		LastActivity: now,
		round:        round,
		rng:          m.newRand(),
	}

	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()

	log.Printf("[SESSION] Created %s: player=%d level=%d ai=%q", s.Token, playerID, levelNumber, d)

	s.mu.Lock()
	m.persist(ctx, s)
	s.mu.Unlock()
	return s, nil
}

// Get returns a session by token.
func (m *Manager) Get(token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// GetForPlayer returns a session only if it belongs to playerID.
func (m *Manager) GetForPlayer(token string, playerID int64) (*Session, error) {
	s, err := m.Get(token)
	if err != nil {
		return nil, err
	}
	if s.PlayerID != playerID {
		return nil, ErrNotOwner
	}
	return s, nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shoot plays a player's shot to rest.
func (m *Manager) Shoot(ctx context.Context, token string, playerID int64, shot physics.Shot) (*ShotReport, error) {
	s, err := m.GetForPlayer(token, playerID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.play(ctx, s, shot)
}

// AIShot lets the session's computer opponent plan and play a shot from the
// live positions. Sessions opened without a difficulty play at medium.
func (m *Manager) AIShot(ctx context.Context, token string, playerID int64) (*ShotReport, error) {
	s, err := m.GetForPlayer(token, playerID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.AI
	if d == "" {
		d = ai.Medium
	}
	settings, err := ai.SettingsFor(d)
	if err != nil {
		return nil, err
	}

	shooter := s.round.Shooter()
	shot := ai.Plan(settings, shooter.Position, s.round.AimPoints(), s.round.TargetContains, s.rng)

	report, err := m.play(ctx, s, shot)
	if err != nil {
		return nil, err
	}
	report.ThinkingMS = settings.ThinkingTime.Milliseconds()
	return report, nil
}

// play must be called with s.mu held.
func (m *Manager) play(ctx context.Context, s *Session, shot physics.Shot) (*ShotReport, error) {
	if err := s.round.Shoot(shot); err != nil {
		return nil, err
	}
	s.LastActivity = m.now()

	if err := m.store.RecordShot(ctx, s.PlayerID); err != nil {
		log.Printf("[DB] Failed to record shot for player %d: %v", s.PlayerID, err)
	}

	interval := m.cfg.FrameIntervalTicks
	if interval < 1 {
		interval = 1
	}

	report := &ShotReport{Token: s.Token, Shot: shot}
	var events []physics.Event
	var outcome *level.RoundOutcome
	for i := 0; i < m.cfg.MaxTicksPerShot; i++ {
		res := s.round.Tick()
		events = append(events, res.Events...)
		if res.Outcome != nil || res.Tick%interval == 0 {
			report.Frames = append(report.Frames, Frame{Tick: res.Tick, Bodies: s.round.Bodies(), Events: events})
			events = nil
		}
		if res.Outcome != nil {
			outcome = res.Outcome
			break
		}
	}
	if outcome == nil {
		log.Printf("[SESSION] %s: shot did not settle within %d ticks", s.Token, m.cfg.MaxTicksPerShot)
		return nil, level.ErrNotSettled
	}
	report.Outcome = *outcome

	if outcome.Final() {
		p, err := m.store.Settle(ctx, s.PlayerID, s.Level, *outcome, s.round.Shots())
		if err != nil {
			log.Printf("[DB] Failed to settle round %s: %v", s.Token, err)
		} else {
			report.Progress = p
		}
		log.Printf("[SESSION] %s concluded: %s %+d after %d shots", s.Token, outcome.Result, outcome.MarbleDelta, s.round.Shots())
		m.publish(ctx, s, *outcome)
	}

	report.Snapshot = s.snapshot()
	m.persist(ctx, s)

	m.mu.RLock()
	listener := m.listener
	m.mu.RUnlock()
	if listener != nil {
		listener(report)
	}
	return report, nil
}

// Reset puts the session's marbles back at the start layout.
func (m *Manager) Reset(ctx context.Context, token string, playerID int64) (Snapshot, error) {
	s, err := m.GetForPlayer(token, playerID)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.round.Reset(); err != nil {
		return Snapshot{}, err
	}
	s.LastActivity = m.now()
	m.persist(ctx, s)
	return s.snapshot(), nil
}

// Remove drops a session and its Redis state.
func (m *Manager) Remove(ctx context.Context, token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()

	if m.rdb != nil {
		m.rdb.Del(ctx, stateKey(token))
		m.rdb.ZRem(ctx, expiryKey, token)
	}
}

func stateKey(token string) string {
	return "session:" + token + ":state"
}

// persist saves the snapshot and pushes the session's expiry forward. It must
// be called with s.mu held.
func (m *Manager) persist(ctx context.Context, s *Session) {
	if m.rdb == nil {
		return
	}

	data, err := json.Marshal(s.snapshot())
	if err != nil {
		log.Printf("[REDIS] Failed to marshal session %s: %v", s.Token, err)
		return
	}
	ttl := m.cfg.SessionTTL()
	if err := m.rdb.SetEx(ctx, stateKey(s.Token), data, ttl).Err(); err != nil {
		log.Printf("[REDIS] Failed to save session %s: %v", s.Token, err)
	}
	expiresAt := s.LastActivity.Add(ttl).Unix()
	if err := m.rdb.ZAdd(ctx, expiryKey, redis.Z{Score: float64(expiresAt), Member: s.Token}).Err(); err != nil {
		log.Printf("[REDIS] Failed to schedule expiry for %s: %v", s.Token, err)
	}
}

// RoundEvent is published on Redis when a round concludes.
type RoundEvent struct {
	Type     string             `json:"type"`
	Origin   string             `json:"origin"`
	Token    string             `json:"token"`
	PlayerID int64              `json:"player_id"`
	Level    int                `json:"level"`
	Outcome  level.RoundOutcome `json:"outcome"`
}

func (m *Manager) publish(ctx context.Context, s *Session, out level.RoundOutcome) {
	if m.rdb == nil {
		return
	}
	b, _ := json.Marshal(RoundEvent{Type: "round_concluded", Origin: m.instanceID, Token: s.Token, PlayerID: s.PlayerID, Level: s.Level, Outcome: out})
	if n, err := m.rdb.Publish(ctx, eventChannel, b).Result(); err != nil {
		log.Printf("[REDIS] publish outcome failed: session=%s err=%v", s.Token, err)
	} else {
		log.Printf("[REDIS] published outcome: session=%s subscribers=%d", s.Token, n)
	}
}

// Subscribe returns a Redis subscription to round events.
func (m *Manager) Subscribe(ctx context.Context) *redis.PubSub {
	if m.rdb == nil {
		return nil
	}
	return m.rdb.Subscribe(ctx, eventChannel)
}
