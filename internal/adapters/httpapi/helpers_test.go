package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/burhani-guards/guards-api/internal/adapters/filestore"
	"github.com/burhani-guards/guards-api/internal/adapters/memory"
	memclock "github.com/burhani-guards/guards-api/internal/adapters/memory/clock"
	memidempotency "github.com/burhani-guards/guards-api/internal/adapters/memory/idempotency"
	memtokenstore "github.com/burhani-guards/guards-api/internal/adapters/memory/tokenstore"
	"github.com/burhani-guards/guards-api/internal/app/auth"
	"github.com/burhani-guards/guards-api/internal/app/members"
	"github.com/burhani-guards/guards-api/internal/app/miqaats"
	"github.com/burhani-guards/guards-api/internal/domain"
	platformclock "github.com/burhani-guards/guards-api/internal/platform/clock"
	"github.com/burhani-guards/guards-api/internal/platform/logging"
	"github.com/burhani-guards/guards-api/internal/platform/token"
	"github.com/burhani-guards/guards-api/internal/ports/out/captainrepo"
	"github.com/burhani-guards/guards-api/internal/ports/out/memberrepo"
)

// plainHasher keeps fixtures readable: the hash of "pw" is "h(pw)".
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "h(" + plain + ")", nil }
func (plainHasher) Verify(plain, hash string) bool    { return hash == "h("+plain+")" }

type observation struct {
	method, route string
	status        int
}

type recordingObserver struct {
	mu  sync.Mutex
	obs []observation
}

func (o *recordingObserver) ObserveHTTP(method, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.obs = append(o.obs, observation{method: method, route: route, status: status})
}

func (o *recordingObserver) last() observation {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.obs) == 0 {
		return observation{}
	}
	return o.obs[len(o.obs)-1]
}

type fixture struct {
	h         http.Handler
	stores    *memory.Stores
	tokens    *memtokenstore.Store
	clk       *memclock.ManualClock
	observer  *recordingObserver
	uploadDir string
}

const testMaxImageBytes = 256 << 10

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logging.Discard()
	zone, err := platformclock.LoadDisplayZone("")
	if err != nil {
		t.Fatalf("LoadDisplayZone: %v", err)
	}
	f := &fixture{
		stores:    memory.NewStores(),
		tokens:    memtokenstore.NewStore(),
		clk:       memclock.NewManualClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		observer:  &recordingObserver{},
		uploadDir: t.TempDir(),
	}
	authSvc := auth.NewService(auth.Deps{
		Members:   f.stores.Members,
		Captains:  f.stores.Captains,
		Snapshots: f.stores.Snapshots,
		Tokens:    f.tokens,
		Hasher:    plainHasher{},
		Issuer:    token.NewGenerator(f.clk),
		Clock:     f.clk,
	}, auth.WithLogger(log))
	membersSvc := members.NewService(members.Deps{
		Members: f.stores.Members,
		Hasher:  plainHasher{},
		Clock:   f.clk,
	}, members.WithLogger(log))
	miqaatSvc := miqaats.NewService(miqaats.Deps{
		Miqaats:       f.stores.Miqaats,
		MiqaatMembers: f.stores.MiqaatMembers,
		Clock:         f.clk,
	}, miqaats.WithLogger(log), miqaats.WithDisplayZone(zone))

	srv := NewServer(authSvc, membersSvc, miqaatSvc, filestore.New(f.uploadDir, testMaxImageBytes),
		WithLogger(log), WithMaxImageBytes(testMaxImageBytes))
	f.h = NewRouterWithOptions(srv, RouterOptions{
		AuthMiddleware: NewAuthMiddleware(f.tokens, log),
		Logger:         log,
		Observer:       f.observer,
		Metrics:        http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("# metrics\n")) }),
		UploadDir:      f.uploadDir,
		Idempotency:    memidempotency.NewStore(f.clk, time.Hour),
		Clock:          f.clk,
	})
	return f
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// addMember seeds a member with a seeded password of "pw".
func (f *fixture) addMember(t *testing.T, its, jamaat string, role domain.Role) domain.MemberID {
	t.Helper()
	code := role.Code()
	id, err := f.stores.Members.Create(context.Background(), memberrepo.Member{
		ITSID:        its,
		FullName:     "Member " + its,
		Email:        its + "@example.com",
		Roles:        &code,
		Rank:         role.Text(),
		Jamiyat:      strPtr("Poona"),
		Jamaat:       strPtr(jamaat),
		PasswordHash: strPtr("h(pw)"),
		IsActive:     true,
		CreatedAt:    f.clk.Now(),
		UpdatedAt:    f.clk.Now(),
	})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return id
}

func (f *fixture) addCaptain(t *testing.T) {
	t.Helper()
	_, err := f.stores.Captains.Upsert(context.Background(), captainrepo.Captain{
		ITSID:        auth.DefaultCaptainITS,
		FullName:     "Captain One",
		Email:        "captain@example.com",
		PasswordHash: strPtr("h(cap)"),
		IsActive:     true,
		CreatedAt:    f.clk.Now(),
		UpdatedAt:    f.clk.Now(),
	})
	if err != nil {
		t.Fatalf("upsert captain: %v", err)
	}
}

func (f *fixture) do(t *testing.T, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) login(t *testing.T, path string, body map[string]any) loginResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, path, "", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status=%d body=%s", path, rec.Code, rec.Body.String())
	}
	return decode[loginResponse](t, rec)
}

func (f *fixture) loginMember(t *testing.T, its string) string {
	t.Helper()
	return f.login(t, "/api/v1/login", map[string]any{"itsNumber": its, "password": "pw"}).Token
}

func (f *fixture) loginCaptain(t *testing.T) string {
	t.Helper()
	return f.login(t, "/api/v1/captain/login", map[string]any{"itsNumber": auth.DefaultCaptainITS, "password": "cap"}).Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v body=%s", err, rec.Body.String())
	}
	return out
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, wantCode string) ErrorResponse {
	t.Helper()
	if rec.Code != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", rec.Code, wantStatus, rec.Body.String())
	}
	er := decode[ErrorResponse](t, rec)
	if er.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", er.Error.Code, wantCode, rec.Body.String())
	}
	return er
}
