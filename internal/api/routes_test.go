package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/marbles/internal/accounts"
	"github.com/playmatatu/marbles/internal/config"
	"github.com/playmatatu/marbles/internal/progress"
	"github.com/playmatatu/marbles/internal/session"
)

const testSecret = "test-secret"

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Environment:        "test",
		FrontendURL:        "http://localhost:5173",
		JWTSecret:          testSecret,
		TokenTTLHours:      1,
		SessionTTLMinutes:  30,
		FrameIntervalTicks: 5,
		MaxTicksPerShot:    5000,
	}
	store := progress.NewMemoryStore()
	r := gin.New()
	SetupRoutes(r, Deps{
		Store:    store,
		Sessions: session.NewManager(store, nil, cfg),
		Config:   cfg,
	})
	return r
}

func bearer(t *testing.T, playerID int64) string {
	t.Helper()
	token, err := accounts.IssueToken(testSecret, playerID, "tester", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return "Bearer " + token
}

func do(t *testing.T, r *gin.Engine, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func TestHealthCheck(t *testing.T) {
	r := setupRouter(t)
	w := do(t, r, http.MethodGet, "/api/v1/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	decode(t, w, &resp)
	if resp.Status != "ok" || resp.Sessions != 0 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestListLevels(t *testing.T) {
	r := setupRouter(t)
	w := do(t, r, http.MethodGet, "/api/v1/levels", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Levels []struct {
			Number  int `json:"number"`
			Regions []struct {
				Kind string `json:"kind"`
			} `json:"regions"`
		} `json:"levels"`
	}
	decode(t, w, &resp)
	if len(resp.Levels) != 3 {
		t.Fatalf("levels = %d, want 3", len(resp.Levels))
	}
	for i, l := range resp.Levels {
		if l.Number != i+1 {
			t.Errorf("level %d has number %d", i, l.Number)
		}
		for _, reg := range l.Regions {
			if reg.Kind == "unknown" {
				t.Errorf("level %d has a region of unknown kind", l.Number)
			}
		}
	}
}

func TestPreviewPath(t *testing.T) {
	r := setupRouter(t)
	w := do(t, r, http.MethodPost, "/api/v1/preview", "", gin.H{
		"level":     1,
		"direction": gin.H{"x": 0, "z": -1},
		"power":     0.5,
		"steps":     10,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Points []struct{ X, Z float64 } `json:"points"`
	}
	decode(t, w, &resp)
	if len(resp.Points) != 10 {
		t.Fatalf("points = %d, want 10", len(resp.Points))
	}
	for i := 1; i < len(resp.Points); i++ {
		if resp.Points[i].Z >= resp.Points[i-1].Z {
			t.Errorf("point %d does not move along -z", i)
		}
	}

	w = do(t, r, http.MethodPost, "/api/v1/preview", "", gin.H{"level": 1, "power": 2, "direction": gin.H{"x": 0, "z": -1}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("power 2: status = %d, want 400", w.Code)
	}
	w = do(t, r, http.MethodPost, "/api/v1/preview", "", gin.H{"level": 9, "power": 0.5, "direction": gin.H{"x": 0, "z": -1}})
	if w.Code != http.StatusNotFound {
		t.Errorf("level 9: status = %d, want 404", w.Code)
	}
}

func TestAuthRoutesNeedDatabase(t *testing.T) {
	r := setupRouter(t)
	w := do(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "alice", "pin": "1234"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a database", w.Code)
	}
}

func TestProtectedRoutesAcceptSignedTokenWithoutDatabase(t *testing.T) {
	r := setupRouter(t)
	w := do(t, r, http.MethodGet, "/api/v1/progress", bearer(t, 3), nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for a token signed with the shared secret", w.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := setupRouter(t)
	for _, path := range []string{"/api/v1/progress", "/api/v1/sessions/abc"} {
		w := do(t, r, http.MethodGet, path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, w.Code)
		}
	}
}

func TestSessionFlow(t *testing.T) {
	r := setupRouter(t)
	auth := bearer(t, 7)

	w := do(t, r, http.MethodPost, "/api/v1/sessions", auth, gin.H{"level": 2})
	if w.Code != http.StatusForbidden {
		t.Errorf("locked level: status = %d, want 403", w.Code)
	}

	w = do(t, r, http.MethodPost, "/api/v1/sessions", auth, gin.H{"level": 1})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d body=%s", w.Code, w.Body.String())
	}
	var snap session.Snapshot
	decode(t, w, &snap)
	if snap.Token == "" || snap.Level != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}

	w = do(t, r, http.MethodGet, "/api/v1/sessions/"+snap.Token, bearer(t, 8), nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("other player: status = %d, want 403", w.Code)
	}

	w = do(t, r, http.MethodPost, "/api/v1/sessions/"+snap.Token+"/shot", auth, gin.H{"power": 1.5})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad power: status = %d, want 400", w.Code)
	}

	// Straight ahead at full power drops the shooter in the hole.
	w = do(t, r, http.MethodPost, "/api/v1/sessions/"+snap.Token+"/shot", auth, gin.H{"power": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("shot: status = %d body=%s", w.Code, w.Body.String())
	}
	var report session.ShotReport
	decode(t, w, &report)
	if report.Outcome.Result != "WIN" || len(report.Frames) == 0 {
		t.Errorf("report outcome = %+v frames=%d", report.Outcome, len(report.Frames))
	}

	w = do(t, r, http.MethodPost, "/api/v1/sessions/"+snap.Token+"/shot", auth, gin.H{"power": 1})
	if w.Code != http.StatusConflict {
		t.Errorf("shot after conclusion: status = %d, want 409", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/v1/progress", auth, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("progress: status = %d", w.Code)
	}
	var prog struct {
		Progress struct {
			MarbleCount int `json:"marble_count"`
		} `json:"progress"`
		Unlocked []bool `json:"unlocked"`
	}
	decode(t, w, &prog)
	if prog.Progress.MarbleCount != 1 || len(prog.Unlocked) != 3 || !prog.Unlocked[1] {
		t.Errorf("progress = %+v", prog)
	}

	w = do(t, r, http.MethodPost, "/api/v1/sessions/"+snap.Token+"/reset", auth, nil)
	if w.Code != http.StatusOK {
		t.Errorf("reset: status = %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/v1/progress/history", auth, nil)
	if w.Code != http.StatusOK {
		t.Errorf("history: status = %d", w.Code)
	}
}
