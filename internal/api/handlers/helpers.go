package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/marbles/internal/accounts"
	"github.com/playmatatu/marbles/internal/ai"
	"github.com/playmatatu/marbles/internal/level"
	"github.com/playmatatu/marbles/internal/physics"
	"github.com/playmatatu/marbles/internal/session"
)

// playerID returns the authenticated player set by AuthMiddleware.
func playerID(c *gin.Context) (int64, bool) {
	id := c.GetInt64("player_id")
	return id, id > 0
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, level.ErrUnknownLevel):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNotOwner), errors.Is(err, session.ErrLevelLocked):
		return http.StatusForbidden
	case errors.Is(err, level.ErrRoundConcluded), errors.Is(err, level.ErrShotInFlight),
		errors.Is(err, level.ErrNotSettled), errors.Is(err, accounts.ErrPlayerExists):
		return http.StatusConflict
	case errors.Is(err, physics.ErrInvalidShot), errors.Is(err, ai.ErrUnknownDifficulty),
		errors.Is(err, accounts.ErrInvalidPIN), errors.Is(err, accounts.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, accounts.ErrInvalidCredentials), errors.Is(err, accounts.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Unexpected errors are
// logged and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[API] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// queryInt reads a positive integer query parameter, falling back to def and
// capping at max.
func queryInt(c *gin.Context, key string, def, max int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
