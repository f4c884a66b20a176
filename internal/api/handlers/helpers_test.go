package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/marbles/internal/accounts"
	"github.com/playmatatu/marbles/internal/level"
	"github.com/playmatatu/marbles/internal/physics"
	"github.com/playmatatu/marbles/internal/session"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{session.ErrSessionNotFound, http.StatusNotFound},
		{level.ErrUnknownLevel, http.StatusNotFound},
		{session.ErrLevelLocked, http.StatusForbidden},
		{level.ErrRoundConcluded, http.StatusConflict},
		{level.ErrNotSettled, http.StatusConflict},
		{fmt.Errorf("%w: power 2", physics.ErrInvalidShot), http.StatusBadRequest},
		{accounts.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := errorStatus(tc.err); got != tc.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestRespondErrorNotSettled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/shot", nil)

	respondError(c, level.ErrNotSettled)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	want := `{"error":"` + level.ErrNotSettled.Error() + `"}`
	if w.Body.String() != want {
		t.Errorf("body = %s, want %s", w.Body.String(), want)
	}
}
