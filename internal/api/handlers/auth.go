package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/marbles/internal/accounts"
	"github.com/playmatatu/marbles/internal/config"
	"github.com/playmatatu/marbles/internal/models"
)

type credentials struct {
	Name string `json:"name" binding:"required"`
	PIN  string `json:"pin" binding:"required"`
}

// bindCredentials validates the request before any database work.
func bindCredentials(c *gin.Context) (credentials, bool) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and pin required"})
		return req, false
	}
	name, err := accounts.NormalizeName(req.Name)
	if err != nil {
		respondError(c, err)
		return req, false
	}
	if err := accounts.ValidatePIN(req.PIN); err != nil {
		respondError(c, err)
		return req, false
	}
	req.Name = name
	return req, true
}

func issueToken(c *gin.Context, cfg *config.Config, status int, p *models.Player) {
	token, err := accounts.IssueToken(cfg.JWTSecret, p.ID, p.Name, cfg.TokenTTL())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, gin.H{
		"token":  token,
		"player": p,
	})
}

// Register creates an account with a name and 4-digit PIN.
// POST /api/v1/auth/register
func Register(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindCredentials(c)
		if !ok {
			return
		}
		p, err := accounts.Register(c.Request.Context(), db, req.Name, req.PIN)
		if err != nil {
			respondError(c, err)
			return
		}
		issueToken(c, cfg, http.StatusCreated, p)
	}
}

// Login exchanges a name and PIN for a token.
// POST /api/v1/auth/login
func Login(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindCredentials(c)
		if !ok {
			return
		}
		p, err := accounts.Login(c.Request.Context(), db, req.Name, req.PIN)
		if err != nil {
			respondError(c, err)
			return
		}
		issueToken(c, cfg, http.StatusOK, p)
	}
}
