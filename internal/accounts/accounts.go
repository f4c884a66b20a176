package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/playmatatu/marbles/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPIN         = errors.New("PIN must be exactly 4 digits")
	ErrInvalidName        = errors.New("name must be 3-32 characters")
	ErrPlayerExists       = errors.New("name already taken")
	ErrInvalidCredentials = errors.New("wrong name or PIN")
	ErrInvalidToken       = errors.New("invalid token")
)

// ValidatePIN checks the PIN format.
func ValidatePIN(pin string) error {
	if len(pin) != 4 || !isDigits(pin) {
		return ErrInvalidPIN
	}
	return nil
}

// NormalizeName trims the name and checks its length.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := len([]rune(name)); n < 3 || n > 32 {
		return "", ErrInvalidName
	}
	return name, nil
}

func HashPIN(pin string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func CheckPIN(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}

// Register creates a player and an empty progress row in one transaction.
func Register(ctx context.Context, db *sqlx.DB, name, pin string) (*models.Player, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	if err := ValidatePIN(pin); err != nil {
		return nil, err
	}
	hash, err := HashPIN(pin)
	if err != nil {
		return nil, fmt.Errorf("hash pin: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var p models.Player
	err = tx.GetContext(ctx, &p, `INSERT INTO players (name, pin_hash) VALUES ($1, $2) RETURNING id, name, pin_hash, created_at`, name, hash)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrPlayerExists
		}
		return nil, fmt.Errorf("insert player: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO progress (player_id) VALUES ($1)`, p.ID); err != nil {
		return nil, fmt.Errorf("insert progress: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Printf("[API] Registered player %d (%s)", p.ID, p.Name)
	return &p, nil
}

// Login checks a name and PIN pair.
func Login(ctx context.Context, db *sqlx.DB, name, pin string) (*models.Player, error) {
	name = strings.TrimSpace(name)
	var p models.Player
	err := db.GetContext(ctx, &p, `SELECT id, name, pin_hash, created_at FROM players WHERE name=$1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPIN(p.PinHash, pin) {
		return nil, ErrInvalidCredentials
	}
	return &p, nil
}

// IssueToken signs an HS256 token carrying the player ID.
func IssueToken(secret string, playerID int64, name string, ttl time.Duration) (string, error) {
	exp := time.Now().Add(ttl)
	claims := jwt.MapClaims{"player_id": playerID, "name": name, "exp": jwt.NewNumericDate(exp).Unix()}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies a token and returns the player ID it carries.
func ParseToken(secret, token string) (int64, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	id, ok := claims["player_id"].(float64)
	if !ok || id <= 0 {
		return 0, ErrInvalidToken
	}
	return int64(id), nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
