package adapthttp_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	adapthttp "timetrack/internal/adapter/http"
	"timetrack/internal/adapter/memory"
	"timetrack/internal/app"

	"github.com/jonboulle/clockwork"
)

func newTestServer(t *testing.T) (*httptest.Server, *clockwork.FakeClock) {
	t.Helper()
	db := memory.New()
	clock := clockwork.NewFakeClock()

	authSvc := app.NewAuthService(db, db.NewSessionRepo(), clock)
	taskSvc := app.NewTaskService(db, clock)
	timerSvc := app.NewTimerService(db, db, clock)

	srv := adapthttp.New(authSvc, taskSvc, timerSvc, nil, t.TempDir(), false)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, clock
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// doJSON sends a request with an optional JSON body and decodes the
// JSON response into a generic map.
func doJSON(t *testing.T, client *http.Client, method, url string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, decoded
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	status, body := doJSON(t, newClient(t), http.MethodGet, ts.URL+"/api/health", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["ok"] != true {
		t.Errorf("expected ok=true, got %v", body)
	}
}

func TestRegisterLoginScenario(t *testing.T) {
	ts, clock := newTestServer(t)
	client := newClient(t)

	// Register issues a session and an identity.
	status, body := doJSON(t, client, http.MethodPost, ts.URL+"/api/users",
		map[string]string{"email": "a@x.com", "password": "secret1", "name": "Alice"})
	if status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%v)", status, body)
	}
	sessionToken, _ := body["sessionToken"].(string)
	if sessionToken == "" {
		t.Fatal("register: expected a session token")
	}
	user, _ := body["user"].(map[string]any)
	if user["email"] != "a@x.com" {
		t.Errorf("register: unexpected user %v", user)
	}

	// No timer is running yet.
	status, body = doJSON(t, client, http.MethodGet, ts.URL+"/api/timers/active", nil)
	if status != http.StatusOK {
		t.Fatalf("active: expected 200, got %d", status)
	}
	if body["activeTimer"] != nil {
		t.Errorf("active: expected null, got %v", body["activeTimer"])
	}

	// Create a task to track against.
	status, body = doJSON(t, client, http.MethodPost, ts.URL+"/api/tasks",
		map[string]string{"title": "write report"})
	if status != http.StatusCreated {
		t.Fatalf("create task: expected 201, got %d (%v)", status, body)
	}
	task := body["task"].(map[string]any)
	taskID := task["id"].(string)

	// Start a timer.
	status, body = doJSON(t, client, http.MethodPost, ts.URL+"/api/timers",
		map[string]string{"taskId": taskID})
	if status != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d (%v)", status, body)
	}

	// A second start for the same user conflicts.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/timers",
		map[string]string{"taskId": taskID})
	if status != http.StatusConflict {
		t.Fatalf("second start: expected 409, got %d", status)
	}

	// Stop the open timer after two minutes.
	clock.Advance(2 * time.Minute)
	status, body = doJSON(t, client, http.MethodPost, ts.URL+"/api/timers/active/stop", nil)
	if status != http.StatusOK {
		t.Fatalf("stop: expected 200, got %d (%v)", status, body)
	}
	log := body["timeLog"].(map[string]any)
	if dur := log["durationSeconds"].(float64); dur != 120 {
		t.Errorf("stop: expected duration 120, got %v", dur)
	}

	// Stopping again is not idempotent.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/timers/active/stop", nil)
	if status != http.StatusNotFound {
		t.Fatalf("double stop: expected 404, got %d", status)
	}

	// The task aggregate reflects the closed log.
	status, body = doJSON(t, client, http.MethodGet, ts.URL+"/api/tasks/"+taskID, nil)
	if status != http.StatusOK {
		t.Fatalf("get task: expected 200, got %d", status)
	}
	if total := body["task"].(map[string]any)["totalTime"].(float64); total != 120 {
		t.Errorf("expected totalTime 120, got %v", total)
	}

	// Logout, then replay the old token: it must be rejected.
	status, body = doJSON(t, client, http.MethodDelete, ts.URL+"/api/sessions", nil)
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("logout: expected 200 success, got %d (%v)", status, body)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/tasks", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: sessionToken})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("stale token: expected 401, got %d", resp.StatusCode)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	status, _ := doJSON(t, client, http.MethodPost, ts.URL+"/api/users",
		map[string]string{"email": "a@x.com", "password": "secret1"})
	if status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", status)
	}

	// Wrong password and unknown email are indistinguishable.
	for _, creds := range []map[string]string{
		{"email": "a@x.com", "password": "wrong"},
		{"email": "nobody@x.com", "password": "secret1"},
	} {
		status, body := doJSON(t, newClient(t), http.MethodPost, ts.URL+"/api/sessions", creds)
		if status != http.StatusUnauthorized {
			t.Errorf("login %v: expected 401, got %d", creds, status)
		}
		if body["error"] != "invalid email or password" {
			t.Errorf("login %v: unexpected error body %v", creds, body)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts, _ := newTestServer(t)

	status, _ := doJSON(t, newClient(t), http.MethodPost, ts.URL+"/api/users",
		map[string]string{"email": "a@x.com", "password": "secret1"})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	// Same email with different casing still conflicts.
	status, _ = doJSON(t, newClient(t), http.MethodPost, ts.URL+"/api/users",
		map[string]string{"email": " A@X.com ", "password": "secret2"})
	if status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", status)
	}
}

func TestAnonymousRequestsGet401(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/timers"},
		{http.MethodGet, "/api/timers/active"},
		{http.MethodPost, "/api/timers/active/stop"},
	} {
		var body any
		if route.method == http.MethodPost {
			body = map[string]string{}
		}
		status, _ := doJSON(t, client, route.method, ts.URL+route.path, body)
		if status != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", route.method, route.path, status)
		}
	}
}

func TestUsersCannotTouchEachOthersResources(t *testing.T) {
	ts, _ := newTestServer(t)

	alice := newClient(t)
	status, body := doJSON(t, alice, http.MethodPost, ts.URL+"/api/users",
		map[string]string{"email": "alice@x.com", "password": "secret1"})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	_, body = doJSON(t, alice, http.MethodPost, ts.URL+"/api/tasks", map[string]string{"title": "private"})
	taskID := body["task"].(map[string]any)["id"].(string)

	bob := newClient(t)
	status, _ = doJSON(t, bob, http.MethodPost, ts.URL+"/api/users",
		map[string]string{"email": "bob@x.com", "password": "secret2"})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	// Bob sees 404, not 403: the task's existence is not leaked.
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/tasks/" + taskID},
		{http.MethodDelete, "/api/tasks/" + taskID},
	} {
		status, _ := doJSON(t, bob, route.method, ts.URL+route.path, nil)
		if status != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", route.method, route.path, status)
		}
	}
	status, _ = doJSON(t, bob, http.MethodPost, ts.URL+"/api/timers", map[string]string{"taskId": taskID})
	if status != http.StatusNotFound {
		t.Errorf("start on foreign task: expected 404, got %d", status)
	}
}

func TestPageRedirects(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	resp, err := client.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/auth/login" {
		t.Errorf("expected redirect to /auth/login, got %q", loc)
	}

	status, _ := doJSON(t, client, http.MethodPost, ts.URL+"/api/users",
		map[string]string{"email": "a@x.com", "password": "secret1"})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	resp, err = client.Get(ts.URL + "/auth/login")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close() //nolint:errcheck
	if loc := resp.Header.Get("Location"); resp.StatusCode != http.StatusSeeOther || loc != "/tasks" {
		t.Errorf("expected 303 to /tasks, got %d %q", resp.StatusCode, loc)
	}
}

func TestSSODisabled(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	status, body := doJSON(t, client, http.MethodGet, ts.URL+"/api/config", nil)
	if status != http.StatusOK || body["sso_enabled"] != false {
		t.Fatalf("expected sso_enabled=false, got %d %v", status, body)
	}

	resp, err := client.Get(fmt.Sprintf("%s/api/sso/login", ts.URL))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 when sso disabled, got %d", resp.StatusCode)
	}
}
