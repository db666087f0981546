package adapthttp

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"timetrack/internal/adapter/memory"
	"timetrack/internal/app"
	"timetrack/internal/domain"

	"github.com/jonboulle/clockwork"
)

func newGateServer() *Server {
	db := memory.New()
	clock := clockwork.NewRealClock()
	authSvc := app.NewAuthService(db, db.NewSessionRepo(), clock)
	return &Server{auth: authSvc}
}

func gateProbe(identity **domain.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*identity = identityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_NoCookieIsAnonymous(t *testing.T) {
	s := newGateServer()

	var identity *domain.Identity
	handler := s.authMiddleware(gateProbe(&identity))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("gate must never reject the request itself, got %d", w.Code)
	}
	if identity != nil {
		t.Errorf("expected anonymous request, got %+v", identity)
	}
}

func TestAuthMiddleware_InvalidTokenClearsCookie(t *testing.T) {
	s := newGateServer()

	var identity *domain.Identity
	handler := s.authMiddleware(gateProbe(&identity))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "bogus"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("gate must continue anonymously, got %d", w.Code)
	}
	if identity != nil {
		t.Errorf("expected no identity for an invalid token, got %+v", identity)
	}

	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected the invalid session cookie to be cleared")
	}
}

func TestAuthMiddleware_ValidTokenAttachesIdentity(t *testing.T) {
	s := newGateServer()
	ctx := context.Background()

	reg, err := s.auth.Register(ctx, "a@x.com", "secret1", "Alice")
	if err != nil {
		t.Fatal(err)
	}
	token, err := s.auth.CreateSession(ctx, reg.ID)
	if err != nil {
		t.Fatal(err)
	}

	var identity *domain.Identity
	handler := s.authMiddleware(gateProbe(&identity))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if identity == nil {
		t.Fatal("expected identity to be attached")
	}
	if identity.Email != "a@x.com" {
		t.Errorf("expected email a@x.com, got %s", identity.Email)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	s := &Server{}
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("OK"))
	})

	handler := s.loggingMiddleware(nextHandler)

	var buf bytes.Buffer
	original := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(original)

	req := httptest.NewRequest("GET", "/test-path", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("expected status %d, got %d", http.StatusTeapot, w.Code)
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "GET") || !strings.Contains(logOutput, "/test-path") || !strings.Contains(logOutput, "418") {
		t.Errorf("log output missing expected fields. Got: %s", logOutput)
	}
}
