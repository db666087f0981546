package app

// PageOutcome is the tagged result of a page navigation decision:
// either continue serving the requested page, or redirect elsewhere.
// Redirects are values returned from the policy, never signalled by
// panics or sentinel errors.
type PageOutcome struct {
	redirect string
}

// Continue lets the requested page render.
func Continue() PageOutcome {
	return PageOutcome{}
}

// RedirectTo sends the client to path instead.
func RedirectTo(path string) PageOutcome {
	return PageOutcome{redirect: path}
}

// Redirect returns the target path and whether the outcome is a
// redirect.
func (o PageOutcome) Redirect() (string, bool) {
	return o.redirect, o.redirect != ""
}

// DecidePage applies the navigation policy for page routes: anonymous
// visitors may only see the auth pages, logged-in users are bounced
// off them, and the root path always forwards to whichever of the two
// applies.
func DecidePage(loggedIn bool, path string) PageOutcome {
	isAuthPage := path == "/auth/login" || path == "/auth/register"

	switch {
	case path == "/":
		if loggedIn {
			return RedirectTo("/tasks")
		}
		return RedirectTo("/auth/login")
	case loggedIn && isAuthPage:
		return RedirectTo("/tasks")
	case !loggedIn && !isAuthPage:
		return RedirectTo("/auth/login")
	default:
		return Continue()
	}
}
