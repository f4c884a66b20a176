package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// StartExpiryWorker drops sessions that have been idle longer than the
// configured TTL. Due sessions are found through the Redis sorted set when
// Redis is available and by scanning memory otherwise.
func (m *Manager) StartExpiryWorker(ctx context.Context) {
	interval := time.Duration(m.cfg.SessionSweepSeconds) * time.Second
	if interval <= 0 {
		log.Println("[EXPIRY] Sweep interval not set; expiry worker not started")
		return
	}

	log.Println("[EXPIRY] Expiry worker started")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[EXPIRY] Expiry worker stopping")
				return
			case <-ticker.C:
				if n := m.Sweep(ctx); n > 0 {
					log.Printf("[EXPIRY] Removed %d idle sessions (%d live)", n, m.Count())
				}
			}
		}
	}()
}

// Sweep removes every expired session and returns how many went.
func (m *Manager) Sweep(ctx context.Context) int {
	now := m.now()
	removed := 0

	if m.rdb != nil {
		due, err := m.rdb.ZRangeByScore(ctx, expiryKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
		if err != nil {
			log.Printf("[EXPIRY] Failed to fetch due sessions: %v", err)
		}
		for _, token := range due {
			// Only the worker that wins the ZRem drops the session.
			if n, _ := m.rdb.ZRem(ctx, expiryKey, token).Result(); n == 0 {
				continue
			}
			if m.expired(token, now) {
				m.Remove(ctx, token)
				removed++
			}
		}
	}

	m.mu.RLock()
	tokens := make([]string, 0, len(m.sessions))
	for token := range m.sessions {
		tokens = append(tokens, token)
	}
	m.mu.RUnlock()

	for _, token := range tokens {
		if m.expired(token, now) {
			m.Remove(ctx, token)
			removed++
		}
	}
	return removed
}

// expired reports whether a session exists and has sat idle past its TTL. It
// takes the session lock, so it never races a shot in progress.
func (m *Manager) expired(token string, now time.Time) bool {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.LastActivity) >= m.cfg.SessionTTL()
}
