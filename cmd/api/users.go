package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"shiksha/internal/domain/profiles"
	"shiksha/internal/mailer"
	"shiksha/internal/params"
	"shiksha/internal/rbac"

	"github.com/go-chi/chi/v5"
)

func parseUserID(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "userID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid userID")
	}
	return id, nil
}

// listUsersHandler godoc
//
//	@Summary		List staff profiles
//	@Description	Returns profiles, optionally filtered by role or pending approval status.
//	@Tags			admin-users
//	@Produce		json
//	@Param			role	query		string	false	"Role filter"
//	@Param			pending	query		bool	false	"Only unapproved profiles"
//	@Param			page	query		int		false	"Page number"
//	@Param			limit	query		int		false	"Items per page"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users [get]
func (app *application) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := profiles.ListFilters{}
	if roleStr := q.Get("role"); roleStr != "" {
		role, err := rbac.ParseRole(roleStr)
		if err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		filters.Role = &role
	}
	if pending, err := strconv.ParseBool(q.Get("pending")); err == nil {
		filters.PendingOnly = pending
	}

	pg := params.ParsePagination(q)

	list, total, err := app.store.Profiles.List(r.Context(), filters, pg.Limit, pg.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	pg.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"users":      list,
		"pagination": pg,
	})
}

// getUserHandler godoc
//
//	@Summary	Get one staff profile
//	@Tags		admin-users
//	@Produce	json
//	@Param		userID	path		int	true	"Profile ID"
//	@Success	200		{object}	profiles.Profile
//	@Failure	400		{object}	error
//	@Failure	404		{object}	error
//	@Security	ApiKeyAuth
//	@Router		/users/{userID} [get]
func (app *application) getUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	profile, err := app.store.Profiles.GetByID(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, profiles.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, profile)
}

type setApprovalPayload struct {
	IsApproved bool `json:"is_approved"`
}

// setUserApprovalHandler godoc
//
//	@Summary		Approve or unapprove a staff profile
//	@Description	Flips the approval gate. On approval the actor gets an email; either way their cached session state is invalidated so the very next request sees the new status.
//	@Tags			admin-users
//	@Accept			json
//	@Produce		json
//	@Param			userID	path		int					true	"Profile ID"
//	@Param			payload	body		setApprovalPayload	true	"Approval flag"
//	@Success		200		{object}	profiles.Profile
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/{userID}/approval [patch]
func (app *application) setUserApprovalHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload setApprovalPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	profile, err := app.store.Profiles.SetApproval(r.Context(), userID, payload.IsApproved)
	if err != nil {
		switch {
		case errors.Is(err, profiles.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.sessions.Invalidate(profile.AccountID)

	if payload.IsApproved {
		vars := struct {
			Username string
			LoginURL string
		}{
			Username: profile.FullName,
			LoginURL: app.config.frontendURL + "/auth/login",
		}
		if _, err := app.mailer.Send(mailer.AccountApprovedTemplate, profile.FullName, profile.Email, vars); err != nil {
			// Approval already happened; a lost email is not worth failing the call.
			app.logger.Errorw("error sending approval email", "error", err)
		}
	}

	app.jsonResponse(w, http.StatusOK, profile)
}

type setRolePayload struct {
	Role string `json:"role" validate:"required"`
}

// setUserRoleHandler godoc
//
//	@Summary	Change a staff profile's role
//	@Tags		admin-users
//	@Accept		json
//	@Produce	json
//	@Param		userID	path		int				true	"Profile ID"
//	@Param		payload	body		setRolePayload	true	"New role"
//	@Success	200		{object}	map[string]string
//	@Failure	400		{object}	error
//	@Failure	404		{object}	error
//	@Failure	500		{object}	error
//	@Security	ApiKeyAuth
//	@Router		/users/{userID}/role [patch]
func (app *application) setUserRoleHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload setRolePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	role, err := rbac.ParseRole(payload.Role)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Profiles.SetRole(r.Context(), userID, role); err != nil {
		switch {
		case errors.Is(err, profiles.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if profile, err := app.store.Profiles.GetByID(r.Context(), userID); err == nil {
		app.sessions.Invalidate(profile.AccountID)
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "role updated"})
}

type setSalesIDPayload struct {
	SalesID *string `json:"sales_id"`
}

// setUserSalesIDHandler godoc
//
//	@Summary		Set the sales identifier
//	@Description	Free-text secondary id, meaningful only for sales staff.
//	@Tags			admin-users
//	@Accept			json
//	@Produce		json
//	@Param			userID	path		int					true	"Profile ID"
//	@Param			payload	body		setSalesIDPayload	true	"Sales id (null clears it)"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/{userID}/sales-id [patch]
func (app *application) setUserSalesIDHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload setSalesIDPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Profiles.SetSalesID(r.Context(), userID, payload.SalesID); err != nil {
		switch {
		case errors.Is(err, profiles.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "sales id updated"})
}

// deleteUserHandler godoc
//
//	@Summary		Delete a staff account
//	@Description	Removes the credentials and the profile in one transaction. Fails closed with 400 when the id is missing or malformed.
//	@Tags			admin-users
//	@Param			userID	path	int	true	"Profile ID"
//	@Success		204
//	@Failure		400	{object}	error
//	@Failure		404	{object}	error
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/{userID} [delete]
// missingUserIDHandler answers requests whose path carries no user id at all.
func (app *application) missingUserIDHandler(w http.ResponseWriter, r *http.Request) {
	app.badRequestResponse(w, r, fmt.Errorf("userID is required"))
}

func (app *application) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// Needed to clear the session cache after the rows are gone.
	profile, err := app.store.Profiles.GetByID(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, profiles.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.store.Profiles.Delete(r.Context(), userID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.sessions.Invalidate(profile.AccountID)

	w.WriteHeader(http.StatusNoContent)
}
