package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/marbles/internal/physics"
	"github.com/playmatatu/marbles/internal/session"
)

// CreateSession opens a round of a level.
// POST /api/v1/sessions
func CreateSession(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid, ok := playerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var req struct {
			Level        int    `json:"level" binding:"required"`
			AIDifficulty string `json:"ai_difficulty"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "level required"})
			return
		}

		s, err := sessions.Create(c.Request.Context(), pid, req.Level, req.AIDifficulty)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, s.Snapshot())
	}
}

// GetSession returns a session snapshot.
// GET /api/v1/sessions/:token
func GetSession(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid, _ := playerID(c)
		s, err := sessions.GetForPlayer(c.Param("token"), pid)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, s.Snapshot())
	}
}

// shotRequest accepts either a power and direction, or a drag gesture from
// anchor to release. A missing direction shoots straight ahead.
type shotRequest struct {
	Power     float64       `json:"power"`
	Direction *physics.Vec2 `json:"direction"`
	Anchor    *physics.Vec2 `json:"anchor"`
	Release   *physics.Vec2 `json:"release"`
}

func (r shotRequest) shot() (physics.Shot, error) {
	if r.Anchor != nil && r.Release != nil {
		s, ok := physics.ShotFromDrag(*r.Anchor, *r.Release)
		if !ok {
			return physics.Shot{}, physics.ErrInvalidShot
		}
		return s, nil
	}
	dir := physics.NewVec2(0, -1)
	if r.Direction != nil {
		dir = *r.Direction
	}
	return physics.NewShot(r.Power, dir)
}

// Shoot plays a shot to rest and returns its frames and outcome.
// POST /api/v1/sessions/:token/shot
func Shoot(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid, _ := playerID(c)
		var req shotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shot"})
			return
		}
		shot, err := req.shot()
		if err != nil {
			respondError(c, err)
			return
		}

		report, err := sessions.Shoot(c.Request.Context(), c.Param("token"), pid, shot)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// AIShot lets the computer opponent take the next shot.
// POST /api/v1/sessions/:token/ai-shot
func AIShot(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid, _ := playerID(c)
		report, err := sessions.AIShot(c.Request.Context(), c.Param("token"), pid)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// ResetSession puts the marbles back at the start layout.
// POST /api/v1/sessions/:token/reset
func ResetSession(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid, _ := playerID(c)
		snap, err := sessions.Reset(c.Request.Context(), c.Param("token"), pid)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}
