package auth

// Route destinations the gate redirects to. Centralized so middleware and
// gate evaluation agree on the same paths.
const (
	PathLogin       = "/auth/login"
	PathAdminLogin  = "/admin/login"
	PathStudentHome = "/student"
	PathAdminHome   = "/admin"
)

// GateOutcome is the decision a gate reaches for one evaluation of AuthState.
type GateOutcome int

const (
	// GatePending means the auth state is still loading; show a placeholder
	// and take no navigation action.
	GatePending GateOutcome = iota
	// GateAuthorized means the protected subtree may be shown.
	GateAuthorized
	// GateRedirect means navigate to Decision.Target and render nothing.
	GateRedirect
)

// GateConfig describes one protected subtree.
type GateConfig struct {
	// RequireAdmin gates the subtree on the admin role in addition to
	// authentication.
	RequireAdmin bool
	// RedirectTo is where unauthenticated visitors are sent. Defaults to
	// the general login page; admin subtrees typically set PathAdminLogin.
	RedirectTo string
}

// Decision is the result of evaluating a gate against an AuthState.
type Decision struct {
	Outcome GateOutcome
	Target  string // set only when Outcome == GateRedirect
}

// Evaluate runs the gate state machine for the given AuthState.
//
// The ordering is load-bearing: Loading must be checked before any role or
// identity field, since IsAdmin is meaningless while a profile fetch is in
// flight. An admin landing on a student-facing entry (a gate whose redirect
// target is the general login page) is sent to the admin home rather than
// shown student content.
func (g GateConfig) Evaluate(state AuthState) Decision {
	if state.Loading {
		return Decision{Outcome: GatePending}
	}

	redirectTo := g.RedirectTo
	if redirectTo == "" {
		redirectTo = PathLogin
	}

	if state.User == nil {
		return Decision{Outcome: GateRedirect, Target: redirectTo}
	}

	if g.RequireAdmin && !state.IsAdmin {
		return Decision{Outcome: GateRedirect, Target: PathStudentHome}
	}

	if !g.RequireAdmin && state.IsAdmin && redirectTo == PathLogin {
		return Decision{Outcome: GateRedirect, Target: PathAdminHome}
	}

	return Decision{Outcome: GateAuthorized}
}
