package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/roombooking/internal/session"
)

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	newSigner := func(t *testing.T, now func() time.Time) *session.Signer {
		t.Helper()
		signer, err := session.NewSigner("test-secret", 8*time.Hour, now)
		if err != nil {
			t.Fatalf("NewSigner failed: %v", err)
		}
		return signer
	}

	protected := func(t *testing.T, verifier TokenVerifier) (http.Handler, *bool) {
		t.Helper()
		reached := false
		handler := RequireAdmin(verifier, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			username, ok := AdminFromContext(r.Context())
			if !ok || username == "" {
				t.Error("expected administrator in request context")
			}
			w.WriteHeader(http.StatusOK)
		}))
		return handler, &reached
	}

	t.Run("redirects to login without a cookie", func(t *testing.T) {
		t.Parallel()

		handler, reached := protected(t, newSigner(t, func() time.Time { return issuedAt }))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin", nil))

		if recorder.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", recorder.Code)
		}
		if location := recorder.Header().Get("Location"); location != "/admin/login" {
			t.Fatalf("expected redirect to /admin/login, got %q", location)
		}
		if *reached {
			t.Fatal("expected the protected handler not to run")
		}
	})

	t.Run("redirects and clears the cookie for a tampered token", func(t *testing.T) {
		t.Parallel()

		handler, reached := protected(t, newSigner(t, func() time.Time { return issuedAt }))

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "not-a-real-token"})
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", recorder.Code)
		}
		if *reached {
			t.Fatal("expected the protected handler not to run")
		}

		cleared := false
		for _, cookie := range recorder.Result().Cookies() {
			if cookie.Name == sessionCookieName && cookie.MaxAge < 0 {
				cleared = true
			}
		}
		if !cleared {
			t.Fatal("expected the invalid cookie to be cleared")
		}
	})

	t.Run("redirects when the session is older than its lifetime", func(t *testing.T) {
		t.Parallel()

		issuer := newSigner(t, func() time.Time { return issuedAt })
		token, err := issuer.Issue("admin")
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}

		// Verification happens nine hours after issuance.
		verifier := newSigner(t, func() time.Time { return issuedAt.Add(9 * time.Hour) })
		handler, reached := protected(t, verifier)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusFound {
			t.Fatalf("expected 302 for an expired session, got %d", recorder.Code)
		}
		if *reached {
			t.Fatal("expected the protected handler not to run")
		}
	})

	t.Run("admits a valid session and exposes the username", func(t *testing.T) {
		t.Parallel()

		signer := newSigner(t, func() time.Time { return issuedAt })
		token, err := signer.Issue("admin")
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}

		handler, reached := protected(t, signer)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		if !*reached {
			t.Fatal("expected the protected handler to run")
		}
	})
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	handler := RequestLogger(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if LoggerFromContext(r.Context()) == nil {
			t.Error("expected a request scoped logger in context")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", recorder.Code)
	}
}

func TestSessionCookieFlags(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	setSessionCookie(recorder, "token-value", time.Now().Add(8*time.Hour))

	cookies := recorder.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != sessionCookieName || cookie.Value != "token-value" {
		t.Fatalf("unexpected cookie: %#v", cookie)
	}
	if !cookie.HttpOnly {
		t.Fatal("expected HttpOnly cookie")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Fatal("expected SameSite=Lax cookie")
	}
	if !strings.HasPrefix(cookie.Path, "/") {
		t.Fatalf("unexpected cookie path %q", cookie.Path)
	}
}
