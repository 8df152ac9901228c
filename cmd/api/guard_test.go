package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shiksha/internal/auth"
	"shiksha/internal/domain/profiles"
	"shiksha/internal/rbac"
	"shiksha/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// guardSource serves canned profiles to the session cache.
type guardSource struct {
	profiles map[int64]*profiles.Profile
	fail     bool
}

func (s *guardSource) GetByAccountID(ctx context.Context, accountID int64) (*profiles.Profile, error) {
	if s.fail {
		return nil, fmt.Errorf("store is down")
	}
	p, ok := s.profiles[accountID]
	if !ok {
		return nil, profiles.ErrNotFound
	}
	return p, nil
}

func newGuardTestApp(t *testing.T, source *guardSource) *application {
	t.Helper()

	return &application{
		logger:   zap.NewNop().Sugar(),
		sessions: session.NewCache(source, time.Minute),
		authenticator: auth.NewJWTAuthenticator(
			"test-secret", "test-refresh-secret", "shiksha", "shiksha",
			time.Hour, time.Hour,
		),
	}
}

// newGuardRouter mounts probe handlers behind the guard; the handlers only
// matter insofar as a 200 proves the guard let the request through.
func newGuardRouter(app *application) http.Handler {
	r := chi.NewRouter()
	r.Use(app.AuthContextMiddleware)
	r.Use(app.RouteGuardMiddleware)

	ok := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
	for _, path := range []string{
		"/", "/403",
		"/auth/login", "/auth/register", "/auth/pending-approval",
		"/users", "/students", "/leads", "/reports", "/tariffs",
		"/sales/students",
	} {
		r.Get(path, ok)
	}
	return r
}

func bearerFor(t *testing.T, app *application, accountID int64, role rbac.Role) string {
	t.Helper()

	access, _, err := app.authenticator.GenerateTokens(accountID, role)
	require.NoError(t, err)
	return "Bearer " + access
}

func guardGet(router http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestGuardAnonymous(t *testing.T) {
	app := newGuardTestApp(t, &guardSource{})
	router := newGuardRouter(app)

	t.Run("public paths pass", func(t *testing.T) {
		for _, path := range []string{"/", "/auth/login", "/auth/register", "/403"} {
			rr := guardGet(router, path, "")
			assert.Equal(t, http.StatusOK, rr.Code, path)
		}
	})

	t.Run("protected path redirects to login", func(t *testing.T) {
		rr := guardGet(router, "/students", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, rbac.PathLogin, rr.Header().Get("Location"))
	})

	t.Run("unlisted path still requires sign in", func(t *testing.T) {
		rr := guardGet(router, "/tariffs", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestGuardApprovedActor(t *testing.T) {
	source := &guardSource{profiles: map[int64]*profiles.Profile{
		1: {ID: 10, AccountID: 1, Role: rbac.RoleSales, IsApproved: true},
		2: {ID: 20, AccountID: 2, Role: rbac.RoleTeacher, IsApproved: true},
		3: {ID: 30, AccountID: 3, Role: rbac.RoleSuperadmin, IsApproved: true},
	}}
	app := newGuardTestApp(t, source)
	router := newGuardRouter(app)

	salesToken := bearerFor(t, app, 1, rbac.RoleSales)
	teacherToken := bearerFor(t, app, 2, rbac.RoleTeacher)
	adminToken := bearerFor(t, app, 3, rbac.RoleSuperadmin)

	t.Run("auth pages bounce back home", func(t *testing.T) {
		rr := guardGet(router, "/auth/login", salesToken)
		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, rbac.PathHome, rr.Header().Get("Location"))
	})

	t.Run("sales reaches its namespace but not teaching", func(t *testing.T) {
		rr := guardGet(router, "/sales/students", salesToken)
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = guardGet(router, "/students", salesToken)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, rbac.PathForbidden, rr.Header().Get("Location"))
	})

	t.Run("teacher reaches students but not leads", func(t *testing.T) {
		rr := guardGet(router, "/students", teacherToken)
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = guardGet(router, "/leads", teacherToken)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("superadmin passes everywhere", func(t *testing.T) {
		for _, path := range []string{"/users", "/students", "/leads", "/reports", "/sales/students"} {
			rr := guardGet(router, path, adminToken)
			assert.Equal(t, http.StatusOK, rr.Code, path)
		}
	})
}

func TestGuardUnapprovedActor(t *testing.T) {
	source := &guardSource{profiles: map[int64]*profiles.Profile{
		1: {ID: 10, AccountID: 1, Role: rbac.RoleTeacher, IsApproved: false},
	}}
	app := newGuardTestApp(t, source)
	router := newGuardRouter(app)

	token := bearerFor(t, app, 1, rbac.RoleTeacher)

	t.Run("pending page itself is reachable", func(t *testing.T) {
		rr := guardGet(router, "/auth/pending-approval", token)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("everything else redirects to pending", func(t *testing.T) {
		for _, path := range []string{"/", "/students", "/403"} {
			rr := guardGet(router, path, token)
			assert.Equal(t, http.StatusForbidden, rr.Code, path)
			assert.Equal(t, rbac.PathPending, rr.Header().Get("Location"), path)
		}
	})
}

func TestGuardProfileFetchFailure(t *testing.T) {
	source := &guardSource{fail: true}
	app := newGuardTestApp(t, source)
	router := newGuardRouter(app)

	token := bearerFor(t, app, 1, rbac.RoleTeacher)

	rr := guardGet(router, "/students", token)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))

	// Once the store recovers, the same request goes through: nothing about
	// the failed attempt was cached.
	source.fail = false
	source.profiles = map[int64]*profiles.Profile{
		1: {ID: 10, AccountID: 1, Role: rbac.RoleTeacher, IsApproved: true},
	}
	rr = guardGet(router, "/students", token)
	assert.Equal(t, http.StatusOK, rr.Code)
}
