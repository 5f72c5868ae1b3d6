package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	memcaptainrepo "github.com/burhani-guards/guards-api/internal/adapters/memory/captainrepo"
	memclock "github.com/burhani-guards/guards-api/internal/adapters/memory/clock"
	"github.com/burhani-guards/guards-api/internal/platform/config"
	"github.com/burhani-guards/guards-api/internal/platform/logging"
	"github.com/burhani-guards/guards-api/internal/platform/password"
)

func testConfig(t *testing.T, backend, dsn string) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.StorageBackend = backend
	cfg.DatabaseURL = dsn
	cfg.UploadDir = t.TempDir()
	cfg.BcryptCost = 4
	cfg.SeedCaptainITS = cfg.CaptainITS
	cfg.SeedCaptainName = "Seed Captain"
	cfg.SeedCaptainEmail = "Captain@Example.com"
	cfg.SeedCaptainPassword = "seed"
	return &cfg
}

func TestSeedCaptain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memcaptainrepo.NewRepo()
	clk := memclock.NewManualClock(time.Unix(1700000000, 0).UTC())
	cfg := testConfig(t, config.BackendMemory, "")
	hasher := password.NewBcrypt(4)

	for i := 0; i < 2; i++ {
		seeded, err := SeedCaptain(ctx, repo, cfg, hasher, clk)
		if err != nil || !seeded {
			t.Fatalf("SeedCaptain run %d: seeded=%v err=%v", i, seeded, err)
		}
	}
	c, err := repo.GetByITSID(ctx, cfg.SeedCaptainITS)
	if err != nil {
		t.Fatalf("GetByITSID err=%v", err)
	}
	if c.Email != "captain@example.com" || c.PasswordHash == nil || !hasher.Verify("seed", *c.PasswordHash) {
		t.Fatalf("seeded captain: %+v", c)
	}

	cfg.SeedCaptainITS = ""
	if seeded, err := SeedCaptain(ctx, repo, cfg, hasher, clk); err != nil || seeded {
		t.Fatalf("unset seed: seeded=%v err=%v", seeded, err)
	}

	cfg.SeedCaptainITS = "1"
	cfg.SeedCaptainPassword = ""
	if _, err := SeedCaptain(ctx, repo, cfg, hasher, clk); err == nil {
		t.Fatalf("expected error for a seed without password")
	}
}

func TestNew_ServesAndCountsTokens(t *testing.T) {
	t.Parallel()

	for _, backend := range []string{config.BackendMemory, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			app, err := New(context.Background(), testConfig(t, backend, ":memory:"), logging.Discard(), WithMigrate())
			if err != nil {
				t.Fatalf("New err=%v", err)
			}
			t.Cleanup(func() { _ = app.Close() })

			req := httptest.NewRequest(http.MethodPost, "/api/v1/captain/login",
				strings.NewReader(`{"itsNumber":"30375370","password":"seed"}`))
			rec := httptest.NewRecorder()
			app.Handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("captain login status=%d body=%s", rec.Code, rec.Body.String())
			}
			if app.Tokens.Len() != 1 {
				t.Fatalf("tokens=%d", app.Tokens.Len())
			}

			rec = httptest.NewRecorder()
			app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			body := rec.Body.String()
			if !strings.Contains(body, "guards_active_tokens 1") || !strings.Contains(body, `guards_logins_total{kind="captain",outcome="success"} 1`) {
				t.Fatalf("metrics missing expected series:\n%s", body)
			}
		})
	}
}

func TestNew_RejectsBadZone(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, config.BackendMemory, "")
	cfg.DisplayTimezone = "Nowhere/Never"
	if _, err := New(context.Background(), cfg, logging.Discard()); err == nil {
		t.Fatalf("expected error")
	}
}
