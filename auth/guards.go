package auth

import "net/url"

// Verdict is a guard's decision for a navigation attempt.
type Verdict int

const (
	// VerdictAllow lets the navigation proceed.
	VerdictAllow Verdict = iota
	// VerdictWait means the auth state is still loading; render nothing and
	// re-evaluate once initialization settles.
	VerdictWait
	// VerdictRedirect sends the operator to Decision.RedirectTo instead.
	VerdictRedirect
)

// Decision is the outcome of evaluating a guard against an auth state.
type Decision struct {
	Verdict    Verdict
	RedirectTo string
}

// Guard evaluates whether the given auth state may visit the given path.
type Guard func(state State, path string) Decision

func allow() Decision {
	return Decision{Verdict: VerdictAllow}
}

func wait() Decision {
	return Decision{Verdict: VerdictWait}
}

func redirect(to string) Decision {
	return Decision{Verdict: VerdictRedirect, RedirectTo: to}
}

// RequireAuth admits authenticated operators only. Unauthenticated visits are
// sent to the login page with the attempted path preserved for post-login
// return.
func RequireAuth(state State, path string) Decision {
	if state.IsLoading {
		return wait()
	}
	if !state.IsAuthenticated {
		return redirect("/auth/login?redirect=" + url.QueryEscape(path))
	}
	return allow()
}

// RequireAdmin admits authenticated admins only. Unauthenticated visits go to
// the login page; authenticated non-admins go back to the dashboard.
func RequireAdmin(state State, path string) Decision {
	if state.IsLoading {
		return wait()
	}
	if !state.IsAuthenticated {
		return redirect("/auth/login?redirect=" + url.QueryEscape(path))
	}
	if state.User == nil || !state.User.IsAdmin {
		return redirect("/dashboard")
	}
	return allow()
}

// GuestOnly admits unauthenticated visitors; an authenticated operator
// landing on a login or register page is bounced to the dashboard.
func GuestOnly(state State, path string) Decision {
	if state.IsLoading {
		return wait()
	}
	if state.IsAuthenticated {
		return redirect("/dashboard")
	}
	return allow()
}
