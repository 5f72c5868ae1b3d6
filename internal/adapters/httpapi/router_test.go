package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/burhani-guards/guards-api/internal/domain"
)

func TestRouter_Infra(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: status=%d body=%q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	f.h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: status=%d", rec.Code)
	}

	requireError(t, f.do(t, http.MethodGet, "/api/v1/nope", "", nil), http.StatusNotFound, "NOT_FOUND")
}

func TestAccessLog_LabelsByRoutePattern(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addMember(t, "111", "POONA", domain.RoleMember)
	tok := f.loginMember(t, "111")

	f.do(t, http.MethodGet, "/api/v1/users/4040", tok, nil)
	got := f.observer.last()
	if got.route != "/api/v1/users/{id}" || got.status != http.StatusNotFound || got.method != http.MethodGet {
		t.Fatalf("observation=%+v", got)
	}
}

func TestRouter_WithoutAuthMiddlewareDeniesBearerRoutes(t *testing.T) {
	t.Parallel()

	h := NewRouterWithOptions(&Server{}, RouterOptions{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", rec.Code)
	}
}
