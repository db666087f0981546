package adapthttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"timetrack/internal/adapter/memory"
	"timetrack/internal/app"

	"github.com/jonboulle/clockwork"
)

// flakySessionRepo fails every deletion while behaving normally
// otherwise.
type flakySessionRepo struct {
	*memory.SessionRepo
}

func (r *flakySessionRepo) Delete(ctx context.Context, token string) error {
	return errors.New("connection reset")
}

// Logout reports success and revokes the client cookie even when the
// session row cannot be deleted from the store.
func TestHandleLogout_StoreFaultStillSucceeds(t *testing.T) {
	db := memory.New()
	sessions := &flakySessionRepo{SessionRepo: db.NewSessionRepo()}
	authSvc := app.NewAuthService(db, sessions, clockwork.NewRealClock())
	s := &Server{auth: authSvc}

	reg, err := authSvc.Register(context.Background(), "a@x.com", "secret1", "Alice")
	if err != nil {
		t.Fatal(err)
	}
	token, err := authSvc.CreateSession(context.Background(), reg.ID)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/sessions", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	w := httptest.NewRecorder()
	s.handleLogout(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 despite the store fault, got %d", w.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["success"] != true {
		t.Errorf("expected success=true, got %v", body)
	}

	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected the session cookie to be cleared")
	}
}
