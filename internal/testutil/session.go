package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// Session carries the cookies a browser would replay on htmx posts.
type Session struct {
	CSRF   string
	Cookie string
}

// PrimeSession performs a GET against path and returns the CSRF token plus a
// Cookie header holding both the CSRF and session cookies.
func PrimeSession(t testing.TB, h http.Handler, path, sessionCookie string) Session {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var csrf, sess string
	for _, c := range rec.Result().Cookies() {
		switch c.Name {
		case "csrf_token":
			csrf = c.Value
		case sessionCookie:
			sess = c.Value
		}
	}
	if csrf == "" || sess == "" {
		t.Fatalf("expected csrf and session cookies, got csrf=%q session=%q", csrf, sess)
	}
	return Session{CSRF: csrf, Cookie: "csrf_token=" + csrf + "; " + sessionCookie + "=" + sess}
}

// Apply sets the htmx, CSRF and cookie headers on req.
func (s Session) Apply(req *http.Request) {
	req.Header.Set("HX-Request", "true")
	req.Header.Set("X-CSRF-Token", s.CSRF)
	req.Header.Set("Cookie", s.Cookie)
}
