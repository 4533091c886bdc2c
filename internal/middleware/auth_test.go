package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"prepaena_backend/internal/config"
	"prepaena_backend/internal/model"
	"prepaena_backend/internal/util"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const testSecret = "test-secret-test-secret-test-secret"

type fakeProfiles struct {
	rows    map[string]*model.Profile
	ensures int
}

func (f *fakeProfiles) Ensure(_ context.Context, id, email string) (*model.Profile, error) {
	f.ensures++
	if p, ok := f.rows[id]; ok {
		return p, nil
	}
	p := &model.Profile{ID: id, Email: email}
	f.rows[id] = p
	return p, nil
}

func (f *fakeProfiles) FindByID(_ context.Context, id string) (*model.Profile, error) {
	if p, ok := f.rows[id]; ok {
		return p, nil
	}
	return nil, errors.New("not found")
}

func token(t *testing.T, id, email string) string {
	t.Helper()
	tok, err := util.GenerateJWT(id, email, testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok
}

func serve(r *gin.Engine, path, auth string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

// TestAuthMiddleware verifies missing, invalid and valid tokens.
func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.AuthConfig{JWTSecret: testSecret}
	profiles := &fakeProfiles{rows: map[string]*model.Profile{}}

	r := gin.New()
	r.GET("/me", AuthMiddleware(cfg), ProfileMiddleware(profiles), func(c *gin.Context) {
		c.String(http.StatusOK, util.UserIDFromContext(c))
	})

	if code := serve(r, "/me", ""); code != http.StatusUnauthorized {
		t.Fatalf("missing token: %d", code)
	}
	if code := serve(r, "/me", "Bearer garbage"); code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", code)
	}
	auth := token(t, "u1", "u1@example.ci")
	for i := 0; i < 3; i++ {
		if code := serve(r, "/me", auth); code != http.StatusOK {
			t.Fatalf("valid token: %d", code)
		}
	}
	if profiles.ensures != 1 {
		t.Fatalf("profile ensured %d times", profiles.ensures)
	}
	if profiles.rows["u1"].Email != "u1@example.ci" {
		t.Fatalf("profile not created from claims")
	}
}

// TestTryAuthMiddleware verifies anonymous requests pass without a user.
func TestTryAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.AuthConfig{JWTSecret: testSecret}
	r := gin.New()
	r.GET("/quiz", TryAuthMiddleware(cfg), func(c *gin.Context) {
		if util.UserIDFromContext(c) == "" {
			c.Status(http.StatusNoContent)
			return
		}
		c.Status(http.StatusOK)
	})
	if code := serve(r, "/quiz", ""); code != http.StatusNoContent {
		t.Fatalf("anonymous: %d", code)
	}
	if code := serve(r, "/quiz", "Bearer garbage"); code != http.StatusNoContent {
		t.Fatalf("garbage token must be ignored: %d", code)
	}
	if code := serve(r, "/quiz", token(t, "u2", "")); code != http.StatusOK {
		t.Fatalf("valid token: %d", code)
	}
}

// TestAdminMiddleware verifies both admin sources and the forbidden path.
func TestAdminMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.AuthConfig{JWTSecret: testSecret, AdminEmails: []string{"boss@prepaena.ci"}}
	profiles := &fakeProfiles{rows: map[string]*model.Profile{
		"flagged": {ID: "flagged", IsAdmin: true},
		"plain":   {ID: "plain"},
	}}
	r := gin.New()
	r.GET("/admin", AuthMiddleware(cfg), AdminMiddleware(cfg, profiles), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	cases := []struct {
		id, email string
		want      int
	}{
		{"someone", "boss@prepaena.ci", http.StatusOK},
		{"flagged", "", http.StatusOK},
		{"plain", "plain@example.ci", http.StatusForbidden},
		{"ghost", "ghost@example.ci", http.StatusForbidden},
	}
	for _, tc := range cases {
		if code := serve(r, "/admin", token(t, tc.id, tc.email)); code != tc.want {
			t.Fatalf("%s: got %d, want %d", tc.id, code, tc.want)
		}
	}
}

// TestProfileMiddlewareRecreatesDeletedProfile verifies a row removed out of
// band comes back once the recheck interval has passed.
func TestProfileMiddlewareRecreatesDeletedProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.AuthConfig{JWTSecret: testSecret}
	profiles := &fakeProfiles{rows: map[string]*model.Profile{}}
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	r := gin.New()
	r.GET("/me", AuthMiddleware(cfg), profileMiddleware(profiles, time.Minute, func() time.Time { return now }), func(c *gin.Context) {
		if _, err := profiles.FindByID(c.Request.Context(), util.UserIDFromContext(c)); err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusOK)
	})

	auth := token(t, "u1", "u1@example.ci")
	if code := serve(r, "/me", auth); code != http.StatusOK {
		t.Fatalf("first request: %d", code)
	}

	delete(profiles.rows, "u1")
	if code := serve(r, "/me", auth); code != http.StatusNotFound {
		t.Fatalf("within the interval the cached ensure is trusted: %d", code)
	}

	now = now.Add(2 * time.Minute)
	if code := serve(r, "/me", auth); code != http.StatusOK {
		t.Fatalf("profile not re-created after the interval: %d", code)
	}
	if profiles.ensures != 2 {
		t.Fatalf("profile ensured %d times, want 2", profiles.ensures)
	}
}
