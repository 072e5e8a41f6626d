package app

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quizbank/internal/auth"
	"quizbank/internal/db"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	conn := testAppDB(t)
	cfg := Config{
		HTTPAddr:                 ":0",
		AllowedOrigins:           []string{"http://localhost:5173"},
		AuthRateLimitPerMin:      1000,
		BulkPlaceholderAssignees: true,
	}
	return NewRouter(cfg, conn)
}

func testAppDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	conn, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func doJSON(t *testing.T, h http.Handler, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	h := testRouter(t)

	w := doJSON(t, h, http.MethodGet, "/healthz", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != `{"ok":true}` {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestQuestionEndpointsRequireIdentityHeader(t *testing.T) {
	h := testRouter(t)

	w := doJSON(t, h, http.MethodGet, "/api/questions", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity header, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(body["error"], "Access denied:") {
		t.Fatalf("unexpected error message: %q", body["error"])
	}
}

func TestCreateAndListGlobalQuestion(t *testing.T) {
	h := testRouter(t)
	ident := map[string]string{auth.HeaderEmail: "teacher@x.com"}

	payload := []byte(`{"questionText":"2+2?","correctAnswer":"4","options":["3","4"],"global":true}`)
	w := doJSON(t, h, http.MethodPost, "/api/questions", payload, ident)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var created map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created["id"] == "" || created["global"] != true {
		t.Fatalf("unexpected created question: %v", created)
	}
	if _, ok := created["assignedToEmails"].([]any); !ok {
		t.Fatalf("assignedToEmails must be an array, got %v", created["assignedToEmails"])
	}

	w = doJSON(t, h, http.MethodGet, "/api/questions", nil, map[string]string{auth.HeaderEmail: "anyone@x.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var items []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 question, got %d", len(items))
	}
}

func TestAssignedQuestionVisibility(t *testing.T) {
	h := testRouter(t)
	ident := map[string]string{auth.HeaderEmail: "teacher@x.com"}

	payload := []byte(`{"questionText":"private q","correctAnswer":"p","assignedToEmails":["a@x.com"]}`)
	if w := doJSON(t, h, http.MethodPost, "/api/questions", payload, ident); w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}

	w := doJSON(t, h, http.MethodGet, "/api/questions?email=a@x.com", nil, map[string]string{auth.HeaderEmail: "a@x.com"})
	var forA []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &forA); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(forA) != 1 {
		t.Fatalf("a@x.com should see the assigned question, got %d", len(forA))
	}

	w = doJSON(t, h, http.MethodGet, "/api/questions?email=b@x.com", nil, map[string]string{auth.HeaderEmail: "b@x.com"})
	var forB []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &forB); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(forB) != 0 {
		t.Fatalf("b@x.com should see nothing, got %d", len(forB))
	}
}

func TestExportRequiresAdminRole(t *testing.T) {
	h := testRouter(t)

	w := doJSON(t, h, http.MethodGet, "/api/questions/export", nil, map[string]string{
		auth.HeaderEmail: "s@x.com",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("student export: expected 403, got %d", w.Code)
	}

	w = doJSON(t, h, http.MethodGet, "/api/questions/export", nil, map[string]string{
		auth.HeaderEmail: "boss@x.com",
		auth.HeaderRole:  auth.RoleAdmin,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("admin export: expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("unexpected content type: %s", ct)
	}
}

func TestRegisterLoginFlow(t *testing.T) {
	h := testRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/auth/register", []byte(`{"email":"s@x.com","password":"secret"}`), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%s)", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodPost, "/api/auth/login", []byte(`{"email":"s@x.com","password":"wrong"}`), nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", w.Code)
	}

	w = doJSON(t, h, http.MethodPost, "/api/auth/login", []byte(`{"email":"s@x.com","password":"secret"}`), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["email"] != "s@x.com" || body["role"] != "student" || body["id"] == "" {
		t.Fatalf("unexpected login response: %v", body)
	}
	if _, leaked := body["password"]; leaked {
		t.Fatalf("password must never appear in a response")
	}
}

func TestSubmissionFlow(t *testing.T) {
	h := testRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/submission", []byte(`{"studentEmail":"s@x.com","answers":[{"questionId":"q1","answer":"4"}]}`), map[string]string{
		auth.HeaderEmail: "s@x.com",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d (%s)", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodPost, "/api/submission", []byte(`{"studentEmail":"s@x.com","answers":[]}`), map[string]string{
		auth.HeaderEmail: "s@x.com",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty answers: expected 400, got %d", w.Code)
	}
}

func TestCORSAllowList(t *testing.T) {
	h := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/questions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allowed origin should be echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/questions", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("disallowed preflight should be refused, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("disallowed origin must not be echoed, got %q", got)
	}

	// an actual request from a disallowed origin is refused outright, even
	// with a valid identity claim
	req = httptest.NewRequest(http.MethodGet, "/api/questions", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	req.Header.Set(auth.HeaderEmail, "s@x.com")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("disallowed-origin request must be rejected, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(body["error"], "http://evil.example.com") {
		t.Fatalf("rejection should name the origin, got %q", body["error"])
	}

	// an actual request from an allowed origin is served with the header set
	req = httptest.NewRequest(http.MethodGet, "/api/questions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set(auth.HeaderEmail, "s@x.com")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("allowed-origin request should be served, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allowed origin should be echoed on actual requests, got %q", got)
	}

	// requests without an Origin header are not CORS requests and pass
	// through untouched
	w2 := doJSON(t, h, http.MethodGet, "/healthz", nil, nil)
	if w2.Code != http.StatusOK {
		t.Fatalf("origin-less request should pass, got %d", w2.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := testRouter(t)

	doJSON(t, h, http.MethodGet, "/healthz", nil, nil)

	w := doJSON(t, h, http.MethodGet, "/metrics", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "quizbank_http_requests_total") {
		t.Fatalf("metrics output missing request counters: %s", w.Body.String())
	}
}
