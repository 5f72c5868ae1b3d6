package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/burhani-guards/guards-api/internal/bootstrap"
	"github.com/burhani-guards/guards-api/internal/platform/config"
	"github.com/burhani-guards/guards-api/internal/platform/logging"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendSQLite   backend = "sqlite"
	backendPostgres backend = "postgres"
	backendMySQL    backend = "mysql"
)

// backendsFromEnv selects the storage backends to run against. postgres and mysql need
// ITEST_DATABASE_URL pointing at a disposable database.
func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch v := strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))); v {
	case "":
		return []backend{backendMemory, backendSQLite}
	case "memory", "sqlite", "postgres", "mysql":
		return []backend{backend(v)}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|sqlite|postgres|mysql)")
		return nil
	}
}

const (
	seedCaptainITS      = "30375370"
	seedCaptainPassword = "captain-pass"
	adminITS            = "40000001"
	adminPassword       = "admin-pass"
)

type testServer struct {
	baseURL string
	client  *http.Client
	app     *bootstrap.App
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	cfg := config.Defaults()
	cfg.StorageBackend = string(b)
	cfg.UploadDir = t.TempDir()
	cfg.BcryptCost = 4
	cfg.SeedCaptainITS = seedCaptainITS
	cfg.SeedCaptainName = "Seed Captain"
	cfg.SeedCaptainEmail = "captain@example.com"
	cfg.SeedCaptainPassword = seedCaptainPassword

	switch b {
	case backendSQLite:
		cfg.DatabaseURL = ":memory:"
	case backendPostgres, backendMySQL:
		cfg.DatabaseURL = os.Getenv("ITEST_DATABASE_URL")
		if cfg.DatabaseURL == "" {
			t.Skipf("ITEST_DATABASE_URL is not set for %s", b)
		}
	}

	app, err := bootstrap.New(context.Background(), &cfg, logging.Discard(), bootstrap.WithMigrate())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	srv := httptest.NewServer(app.Handler)
	t.Cleanup(srv.Close)

	s := &testServer{baseURL: srv.URL, client: srv.Client(), app: app}
	s.seedAdmin(t)
	return s
}

// seedAdmin creates the Resource Admin every scenario starts from. Members are normally created by an
// admin, so the first one goes straight to the repository.
func (s *testServer) seedAdmin(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if _, err := s.app.Repos.Members.GetByITSID(ctx, adminITS); err == nil {
		return
	}
	seedAdminMember(t, s.app, adminITS, adminPassword)
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, token string, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

func (s *testServer) login(t *testing.T, path string, body map[string]any) string {
	t.Helper()
	status, out, _ := s.doJSON(t, http.MethodPost, path, "", body)
	if status != http.StatusOK {
		t.Fatalf("login %s: status=%d body=%s", path, status, string(out))
	}
	got := mustUnmarshal[struct {
		Token string `json:"token"`
	}](t, out)
	if got.Token == "" {
		t.Fatalf("login %s: empty token", path)
	}
	return got.Token
}

type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireStatus(t *testing.T, status int, body []byte, want int) {
	t.Helper()
	if status != want {
		t.Fatalf("status=%d want=%d body=%s", status, want, string(body))
	}
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	requireStatus(t, status, body, wantStatus)
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
	if got.Error.RequestID == "" {
		t.Fatalf("expected requestId in error body=%s", string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
