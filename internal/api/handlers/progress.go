package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/marbles/internal/progress"
)

// GetProgress returns the caller's marble ledger.
// GET /api/v1/progress
func GetProgress(store progress.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid, ok := playerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		p, err := store.Get(c.Request.Context(), pid)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"progress": p,
			"unlocked": []bool{
				progress.Unlocked(p, 1),
				progress.Unlocked(p, 2),
				progress.Unlocked(p, 3),
			},
		})
	}
}

// ResetProgress zeroes the caller's ledger.
// POST /api/v1/progress/reset
func ResetProgress(store progress.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid, ok := playerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		p, err := store.Reset(c.Request.Context(), pid)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"progress": p})
	}
}

// GetHistory lists the caller's most recent concluded rounds.
// GET /api/v1/progress/history?limit=20
func GetHistory(store progress.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid, ok := playerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		rounds, err := store.History(c.Request.Context(), pid, queryInt(c, "limit", 20, 100))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rounds": rounds})
	}
}
