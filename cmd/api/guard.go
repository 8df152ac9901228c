package main

import (
	"net/http"

	"shiksha/internal/rbac"
)

// redirectEnvelope tells the caller where the guard wants it to go instead
// of the requested page.
type redirectEnvelope struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Location string `json:"location"`
}

func writeRedirect(w http.ResponseWriter, status int, message, location string) {
	w.Header().Set("Location", location)
	writeJSON(w, status, &redirectEnvelope{
		Success:  false,
		Message:  message,
		Location: location,
	})
}

// RouteGuardMiddleware evaluates every request against the permission table
// before any handler runs: no protected data is fetched, and no handler
// executes, until the decision for the current path is Allow. The decision
// function is pure, so re-running the guard on a retried request from newer
// state always yields the current answer.
func (app *application) RouteGuardMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := rbac.GuardState{}

		accountID, authenticated := getAccountIDFromContext(r)
		state.Authenticated = authenticated

		req := r
		if authenticated {
			profile, err := app.sessions.Resolve(r.Context(), accountID)
			if err != nil {
				// Profile unknown: the decision below is Defer, never a
				// fallback role. Log and let the client retry.
				app.logger.Warnw("profile fetch failed", "account_id", accountID, "error", err.Error())
			} else {
				state.ProfileLoaded = true
				state.Approved = profile.IsApproved
				state.Role = profile.Role
				req = r.WithContext(withProfile(r.Context(), profile))
			}
		}

		switch decision := rbac.Decide(state, r.URL.Path); decision {
		case rbac.Allow:
			next.ServeHTTP(w, req)
		case rbac.Defer:
			w.Header().Set("Retry-After", "1")
			writeJSONError(w, http.StatusServiceUnavailable, "profile still loading, retry")
		case rbac.RedirectLogin:
			writeRedirect(w, http.StatusUnauthorized, "authentication required", rbac.PathLogin)
		case rbac.RedirectPending:
			writeRedirect(w, http.StatusForbidden, "account pending approval", rbac.PathPending)
		case rbac.RedirectHome:
			writeRedirect(w, http.StatusSeeOther, "already signed in", rbac.PathHome)
		case rbac.RedirectForbidden:
			writeRedirect(w, http.StatusForbidden, "insufficient role", rbac.PathForbidden)
		default:
			app.logger.Errorw("unhandled guard decision", "decision", decision.String(), "path", r.URL.Path)
			writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
		}
	})
}
