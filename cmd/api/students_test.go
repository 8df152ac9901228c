package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shiksha/internal/domain/profiles"
	"shiksha/internal/rbac"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func createStudentRequest(body string, actor *profiles.Profile) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/students", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(withProfile(req.Context(), actor))
}

// Students belong to sales-type managers, so teaching staff must not be able
// to create one and become its owner.
func TestCreateStudentOwnership(t *testing.T) {
	app := &application{logger: zap.NewNop().Sugar()}

	t.Run("teaching staff is rejected", func(t *testing.T) {
		for _, role := range []rbac.Role{rbac.RoleTeacher, rbac.RoleHeadTeaching} {
			actor := &profiles.Profile{ID: 7, AccountID: 7, Role: role, IsApproved: true}
			rr := httptest.NewRecorder()
			app.createStudentHandler(rr, createStudentRequest(`{"full_name":"Aman"}`, actor))
			assert.Equal(t, http.StatusForbidden, rr.Code, role)
		}
	})

	t.Run("sales staff passes the role gate", func(t *testing.T) {
		// A malformed body proves the handler got past the ownership check
		// without touching the store.
		actor := &profiles.Profile{ID: 8, AccountID: 8, Role: rbac.RoleSales, IsApproved: true}
		rr := httptest.NewRecorder()
		app.createStudentHandler(rr, createStudentRequest(`{`, actor))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
