package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	memtokenstore "github.com/burhani-guards/guards-api/internal/adapters/memory/tokenstore"
	"github.com/burhani-guards/guards-api/internal/domain"
	"github.com/burhani-guards/guards-api/internal/platform/logging"
)

func newProbe(t *testing.T, mws ...func(http.Handler) http.Handler) (http.Handler, *memtokenstore.Store) {
	t.Helper()
	tokens := memtokenstore.NewStore()
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Errorf("identity missing from context")
		}
		if tokenFromContext(r.Context()) == "" {
			t.Errorf("token missing from context")
		}
		_, _ = w.Write([]byte(id.ITSID))
	})
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return NewAuthMiddleware(tokens, logging.Discard())(h), tokens
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	t.Parallel()

	h, _ := newProbe(t)
	cases := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"basic", "Basic abc"},
		{"empty bearer", "Bearer   "},
		{"unknown token", "Bearer nope"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status=%d want 401", tc.name, rec.Code)
		}
		if er := decode[ErrorResponse](t, rec); er.Error.Code != "UNAUTHORIZED" {
			t.Fatalf("%s: code=%q", tc.name, er.Error.Code)
		}
	}
}

func TestAuthMiddleware_ValidToken_SetsIdentity(t *testing.T) {
	t.Parallel()

	h, tokens := newProbe(t)
	if err := tokens.Store(context.Background(), "tok-1", domain.Identity{Kind: domain.IdentityMember, ID: 7, ITSID: "777"}); err != nil {
		t.Fatalf("Store err=%v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "777" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	h, tokens := newProbe(t, RequireRole(domain.RoleResourceAdmin))
	ctx := context.Background()
	_ = tokens.Store(ctx, "admin", domain.Identity{Kind: domain.IdentityMember, ID: 1, Role: domain.RoleResourceAdmin})
	_ = tokens.Store(ctx, "member", domain.Identity{Kind: domain.IdentityMember, ID: 2, Role: domain.RoleMember})

	for tok, want := range map[string]int{"admin": http.StatusOK, "member": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("%s: status=%d want %d", tok, rec.Code, want)
		}
	}
}

func TestErrorEnvelope_CarriesRequestID(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/user-profile", "", nil)

	er := requireError(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
	rid, err := er.Error.RequestId.Get()
	if err != nil || rid == "" {
		t.Fatalf("expected requestId, got %q err=%v", rid, err)
	}
	if er.Error.Details.IsSpecified() {
		t.Fatalf("details should be omitted")
	}
}
