package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/santasdraw/server/config"
	"github.com/santasdraw/server/internal/auth"
	"github.com/santasdraw/server/internal/database"
	"github.com/santasdraw/server/internal/draw"
	"github.com/santasdraw/server/internal/invite"
	"github.com/santasdraw/server/internal/match"
	"github.com/santasdraw/server/internal/token"
	"github.com/santasdraw/server/internal/web"
	"github.com/santasdraw/server/internal/web/handlers"
)

// testServer spins up the full API stack backed by a temp SQLite file.
// Caller must defer cleanup().
func testServer(t *testing.T) (srv *httptest.Server, db *database.DB, cleanup func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.New(dbPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", Env: "test"},
		DB:     config.DBConfig{Path: dbPath},
		JWT:    config.JWTConfig{SigningKey: "test-signing-key", Issuer: "santasdraw", LifetimeMinute: 60},
	}

	tokens := token.New(cfg.JWT.SigningKey, cfg.JWT.Issuer, time.Duration(cfg.JWT.LifetimeMinute)*time.Minute)
	authService := auth.New(db, tokens)
	executor := draw.New(db, match.New(), nil)
	invites := invite.NewSeeded(db, 1)

	h := handlers.New(db, cfg, authService, executor, invites)
	srv = httptest.NewServer(web.NewRouter(h, authService))

	cleanup = func() {
		srv.Close()
		db.Close()
	}
	return srv, db, cleanup
}

// doJSON issues a JSON request and decodes the JSON response into out (when
// out is non-nil). An empty bearer token sends no Authorization header.
func doJSON(t *testing.T, method, url, bearer string, body, out interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response from %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

// registerUser creates an account and returns its bearer token.
func registerUser(t *testing.T, baseURL, email string) string {
	t.Helper()

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "supersecret1",
	}, &resp)
	if status != http.StatusCreated {
		t.Fatalf("register %s: status = %d, want 201", email, status)
	}
	if resp.AccessToken == "" {
		t.Fatalf("register %s: empty access token", email)
	}
	return resp.AccessToken
}

// participants builds a valid manual-draw participant list of size n.
func participants(n int) []map[string]string {
	out := make([]map[string]string, n)
	for i := 0; i < n; i++ {
		out[i] = map[string]string{
			"firstName": fmt.Sprintf("Person%d", i),
			"lastName":  "Test",
			"email":     fmt.Sprintf("person%d@example.com", i),
		}
	}
	return out
}

// nextExactHour returns a schedulable draw date: in the future, on an exact
// hour, within the current year. Skips the test in the last hours of the
// year where no such time exists.
func nextExactHour(t *testing.T) time.Time {
	t.Helper()
	d := time.Now().UTC().Truncate(time.Hour).Add(2 * time.Hour)
	if d.Year() != time.Now().UTC().Year() {
		t.Skip("no valid draw date exists this close to the year boundary")
	}
	return d
}
