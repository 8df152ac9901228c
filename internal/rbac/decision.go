package rbac

// Decision is the outcome of evaluating a navigation attempt. The guard maps
// each decision to an HTTP response; Decide itself performs no redirect.
type Decision int

const (
	// Allow lets the request through to the handler.
	Allow Decision = iota
	// Defer blocks the request until the profile is known. Not a denial:
	// the guard answers with a retryable status instead of a redirect.
	Defer
	// RedirectLogin sends an unauthenticated actor to the login page.
	RedirectLogin
	// RedirectPending sends an unapproved actor to the pending-approval page.
	RedirectPending
	// RedirectHome bounces an approved actor off pages meant for others
	// (login, register, pending-approval).
	RedirectHome
	// RedirectForbidden sends an actor without the required role to /403.
	RedirectForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Defer:
		return "defer"
	case RedirectLogin:
		return "redirect-login"
	case RedirectPending:
		return "redirect-pending"
	case RedirectHome:
		return "redirect-home"
	case RedirectForbidden:
		return "redirect-forbidden"
	}
	return "unknown"
}

// Well-known paths consulted by the decision rules.
const (
	PathHome      = "/"
	PathLogin     = "/auth/login"
	PathRegister  = "/auth/register"
	PathPending   = "/auth/pending-approval"
	PathForbidden = "/403"
)

// IsPublicPath reports whether path requires no authentication.
func IsPublicPath(path string) bool {
	switch path {
	case PathHome, PathLogin, PathRegister, PathPending, PathForbidden:
		return true
	}
	return false
}

// GuardState is everything the decision rules need to know about the actor.
type GuardState struct {
	Authenticated bool
	ProfileLoaded bool
	Approved      bool
	Role          Role
}

// Decide evaluates the guard rules in order and returns the first match.
// It is pure: same state and path always yield the same decision, so the
// guard may re-run it as often as it likes while a profile load settles.
func Decide(s GuardState, path string) Decision {
	public := IsPublicPath(path)

	if !s.Authenticated && !public {
		return RedirectLogin
	}
	if s.Authenticated && !public && !s.ProfileLoaded {
		return Defer
	}
	if s.Authenticated && s.ProfileLoaded && !s.Approved && path != PathPending {
		return RedirectPending
	}
	if s.Authenticated && s.ProfileLoaded && s.Approved && path == PathPending {
		return RedirectHome
	}
	if s.Authenticated && s.ProfileLoaded && s.Approved && !public {
		if !CanAccess(s.Role, path) {
			return RedirectForbidden
		}
		return Allow
	}
	if s.Authenticated && s.ProfileLoaded && public {
		// Signed-in actors never see the login or register forms.
		if path == PathLogin || path == PathRegister {
			if !s.Approved {
				return RedirectPending
			}
			return RedirectHome
		}
		return Allow
	}
	if s.Authenticated && !s.ProfileLoaded && public {
		// Too early to know the approval status; hold the navigation.
		return Defer
	}
	return Allow
}
