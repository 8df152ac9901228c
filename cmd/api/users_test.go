package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"shiksha/internal/domain/profiles"
	"shiksha/internal/rbac"

	"github.com/stretchr/testify/assert"
)

// Malformed user ids must answer 400, including the shape where the id is
// missing entirely and the router would otherwise 404.
func TestDeleteUserBadID(t *testing.T) {
	source := &guardSource{profiles: map[int64]*profiles.Profile{
		1: {ID: 10, AccountID: 1, Role: rbac.RoleSuperadmin, IsApproved: true},
	}}
	app := newGuardTestApp(t, source)
	router := app.mount()
	token := bearerFor(t, app, 1, rbac.RoleSuperadmin)

	for _, path := range []string{"/users/", "/users/abc", "/users/0"} {
		req := httptest.NewRequest(http.MethodDelete, path, nil)
		req.Header.Set("Authorization", token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
	}
}
