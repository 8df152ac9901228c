package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"shiksha/internal/domain/profiles"
	"shiksha/internal/mailer"
	"shiksha/internal/rbac"

	"github.com/golang-jwt/jwt/v5"
)

type RegisterPayload struct {
	FullName string `json:"full_name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required"`
}

// TokenResponse represents the structure of the tokens in the response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	IsApproved   bool   `json:"is_approved"`
}

// Envelope is a wrapper for API responses. made for swagger doc success output
type Envelope struct {
	Data TokenResponse `json:"data"`
}

// registerHandler godoc
//
//	@Summary		Register a staff account
//	@Description	Creates an account plus its profile. The profile starts unapproved; an administrator has to approve it before any protected page opens.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		RegisterPayload	true	"Account details"
//	@Success		201		{object}	profiles.Profile
//	@Failure		400		{object}	error	"Bad request"
//	@Failure		500		{object}	error	"Internal Server Error"
//	@Router			/auth/register [post]
func (app *application) registerHandler(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	role, err := rbac.ParseRole(payload.Role)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	// Nobody registers themselves as the admin.
	if rbac.IsAdmin(role) {
		app.badRequestResponse(w, r, fmt.Errorf("role %s cannot be self-assigned", role))
		return
	}

	account := &profiles.Account{Email: payload.Email}
	if err := account.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	profile := &profiles.Profile{
		FullName: payload.FullName,
		Role:     role,
	}

	ctx := r.Context()

	if err := app.store.Profiles.Register(ctx, account, profile); err != nil {
		switch {
		case errors.Is(err, profiles.ErrDuplicateEmail):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	vars := struct {
		Username string
	}{
		Username: profile.FullName,
	}

	status, err := app.mailer.Send(mailer.UserWelcomeTemplate, profile.FullName, account.Email, vars)
	if err != nil {
		app.logger.Errorw("error sending welcome email", "error", err)

		// rollback user creation if email fails (SAGA pattern)
		if err := app.store.Profiles.Delete(ctx, profile.ID); err != nil {
			app.logger.Errorw("error deleting profile", "error", err)
		}

		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("welcome email sent", "status code", status)

	if err := app.jsonResponse(w, http.StatusCreated, profile); err != nil {
		app.internalServerError(w, r, err)
	}
}

type LoginPayload struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// loginHandler godoc
//
//	@Summary		Sign in
//	@Description	Verifies credentials and hands out access and refresh tokens. Unapproved accounts can sign in but only reach the pending-approval page.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		LoginPayload	true	"Credentials"
//	@Success		200		{object}	Envelope
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Failure		500		{object}	error
//	@Router			/auth/login [post]
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	account, err := app.store.Profiles.GetAccountByEmail(r.Context(), payload.Email)
	if err != nil {
		switch {
		case errors.Is(err, profiles.ErrNotFound):
			app.unauthorizedErrorResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := account.Password.Compare(payload.Password); err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	profile, err := app.store.Profiles.GetByAccountID(r.Context(), account.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	accessToken, refreshToken, err := app.authenticator.GenerateTokens(account.ID, profile.Role)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Profiles.SaveRefreshToken(r.Context(), account.ID, refreshToken); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// A fresh login must not see a previous actor's cached state.
	app.sessions.Invalidate(account.ID)

	resp := TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       strconv.FormatInt(account.ID, 10),
		Role:         string(profile.Role),
		IsApproved:   profile.IsApproved,
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type RefreshPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// refreshTokenHandler godoc
//
//	@Summary		Refresh authentication tokens
//	@Description	Validates the provided refresh token and issues new access and refresh tokens.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		RefreshPayload	true	"Refresh token payload"
//	@Success		200		{object}	Envelope
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Failure		500		{object}	error
//	@Router			/auth/refresh [post]
func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload RefreshPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	token, err := app.authenticator.ValidateRefreshToken(payload.RefreshToken)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	claims, _ := token.Claims.(jwt.MapClaims)
	accountID, err := strconv.ParseInt(fmt.Sprintf("%.f", claims["sub"]), 10, 64)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	stored, err := app.store.Profiles.GetRefreshToken(r.Context(), accountID)
	if err != nil || stored != payload.RefreshToken {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("refresh token mismatch"))
		return
	}

	profile, err := app.store.Profiles.GetByAccountID(r.Context(), accountID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	accessToken, refreshToken, err := app.authenticator.GenerateTokens(accountID, profile.Role)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Profiles.SaveRefreshToken(r.Context(), accountID, refreshToken); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       strconv.FormatInt(accountID, 10),
		Role:         string(profile.Role),
		IsApproved:   profile.IsApproved,
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// logoutHandler godoc
//
//	@Summary		Sign out
//	@Description	Deletes the stored refresh token and clears the actor's cached session state before responding.
//	@Tags			authentication
//	@Success		204
//	@Failure		401	{object}	error
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/auth/logout [post]
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := getAccountIDFromContext(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("not signed in"))
		return
	}

	if err := app.store.Profiles.DeleteRefreshToken(r.Context(), accountID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// Cache is cleared before the response goes out, so the next login on
	// this account never observes stale profile state.
	app.sessions.Logout(accountID)

	w.WriteHeader(http.StatusNoContent)
}

// pendingApprovalHandler godoc
//
//	@Summary		Approval status
//	@Description	The one page an unapproved actor is allowed to see.
//	@Tags			authentication
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Security		ApiKeyAuth
//	@Router			/auth/pending-approval [get]
func (app *application) pendingApprovalHandler(w http.ResponseWriter, r *http.Request) {
	profile := getProfileFromContext(r)
	if profile == nil {
		// Unauthenticated visitors may load the page shell.
		app.jsonResponse(w, http.StatusOK, map[string]any{"is_approved": false})
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"is_approved": profile.IsApproved,
		"role":        profile.Role,
		"full_name":   profile.FullName,
	})
}
