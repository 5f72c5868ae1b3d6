// Package bootstrap assembles adapters and services for a configuration. Both the api binary and the
// integration tests build the application through it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/burhani-guards/guards-api/internal/adapters/filestore"
	"github.com/burhani-guards/guards-api/internal/adapters/httpapi"
	"github.com/burhani-guards/guards-api/internal/adapters/memory"
	memidempotency "github.com/burhani-guards/guards-api/internal/adapters/memory/idempotency"
	memtokenstore "github.com/burhani-guards/guards-api/internal/adapters/memory/tokenstore"
	"github.com/burhani-guards/guards-api/internal/adapters/sqlstore"
	"github.com/burhani-guards/guards-api/internal/app/auth"
	"github.com/burhani-guards/guards-api/internal/app/members"
	"github.com/burhani-guards/guards-api/internal/app/miqaats"
	platformclock "github.com/burhani-guards/guards-api/internal/platform/clock"
	"github.com/burhani-guards/guards-api/internal/platform/config"
	"github.com/burhani-guards/guards-api/internal/platform/metrics"
	"github.com/burhani-guards/guards-api/internal/platform/password"
	"github.com/burhani-guards/guards-api/internal/platform/token"
	"github.com/burhani-guards/guards-api/internal/ports/out/captainrepo"
	clockport "github.com/burhani-guards/guards-api/internal/ports/out/clock"
	"github.com/burhani-guards/guards-api/internal/ports/out/memberrepo"
	"github.com/burhani-guards/guards-api/internal/ports/out/miqaatmemberrepo"
	"github.com/burhani-guards/guards-api/internal/ports/out/miqaatrepo"
	passwordport "github.com/burhani-guards/guards-api/internal/ports/out/password"
	"github.com/burhani-guards/guards-api/internal/ports/out/snapshotrepo"
)

// Repos is one consistent set of repositories for the configured backend.
type Repos struct {
	Members       memberrepo.Repository
	Captains      captainrepo.Repository
	Miqaats       miqaatrepo.Repository
	MiqaatMembers miqaatmemberrepo.Repository
	Snapshots     snapshotrepo.Repository

	sql *sqlstore.Store
}

func OpenRepos(ctx context.Context, cfg *config.Config) (*Repos, error) {
	if cfg.StorageBackend == config.BackendMemory {
		st := memory.NewStores()
		return &Repos{
			Members:       st.Members,
			Captains:      st.Captains,
			Miqaats:       st.Miqaats,
			MiqaatMembers: st.MiqaatMembers,
			Snapshots:     st.Snapshots,
		}, nil
	}

	store, err := sqlstore.Open(ctx, cfg.StorageBackend, cfg.DatabaseURL, sqlstore.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
	})
	if err != nil {
		return nil, err
	}
	return &Repos{
		Members:       store.Members(),
		Captains:      store.Captains(),
		Miqaats:       store.Miqaats(),
		MiqaatMembers: store.MiqaatMembers(),
		Snapshots:     store.Snapshots(),
		sql:           store,
	}, nil
}

// Persistent reports whether the repositories outlive the process.
func (r *Repos) Persistent() bool { return r.sql != nil }

// Migrate applies the schema. It is a no-op for the memory backend.
func (r *Repos) Migrate(ctx context.Context) error {
	if r.sql == nil {
		return nil
	}
	return r.sql.Migrate(ctx)
}

func (r *Repos) Close() error {
	if r.sql == nil {
		return nil
	}
	return r.sql.Close()
}

// SeedCaptain upserts the configured captain account. It reports false when no seed is configured.
func SeedCaptain(ctx context.Context, captains captainrepo.Repository, cfg *config.Config, hasher passwordport.Hasher, clk clockport.Clock) (bool, error) {
	its := strings.TrimSpace(cfg.SeedCaptainITS)
	if its == "" {
		return false, nil
	}
	if cfg.SeedCaptainPassword == "" {
		return false, errors.New("seed captain password is required when a seed captain ITS is set")
	}
	hash, err := hasher.Hash(cfg.SeedCaptainPassword)
	if err != nil {
		return false, fmt.Errorf("hash seed captain password: %w", err)
	}
	now := clk.Now()
	if _, err := captains.Upsert(ctx, captainrepo.Captain{
		ITSID:        its,
		FullName:     strings.TrimSpace(cfg.SeedCaptainName),
		Email:        strings.ToLower(strings.TrimSpace(cfg.SeedCaptainEmail)),
		PasswordHash: &hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		return false, fmt.Errorf("seed captain: %w", err)
	}
	return true, nil
}

// App is the assembled HTTP application.
type App struct {
	Handler http.Handler
	Repos   *Repos
	Tokens  *memtokenstore.Store
	Metrics *metrics.Metrics
}

type Option func(*options)

type options struct {
	migrate bool
}

// WithMigrate applies the schema and seeds the captain before serving.
func WithMigrate() Option {
	return func(o *options) { o.migrate = true }
}

// New opens the repositories and wires every service behind the HTTP router. The memory backend
// always seeds the configured captain since nothing survives a restart.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	zone, err := platformclock.LoadDisplayZone(cfg.DisplayTimezone)
	if err != nil {
		return nil, err
	}
	repos, err := OpenRepos(ctx, cfg)
	if err != nil {
		return nil, err
	}

	clk := platformclock.NewSystemClock()
	hasher := password.NewBcrypt(cfg.BcryptCost)

	if o.migrate {
		if err := repos.Migrate(ctx); err != nil {
			_ = repos.Close()
			return nil, err
		}
	}
	if o.migrate || !repos.Persistent() {
		seeded, err := SeedCaptain(ctx, repos.Captains, cfg, hasher, clk)
		if err != nil {
			_ = repos.Close()
			return nil, err
		}
		if seeded {
			log.InfoContext(ctx, "seed captain ready", "its_id", cfg.SeedCaptainITS)
		}
	}

	tokens := memtokenstore.NewStore()
	m := metrics.New()
	m.TrackActiveTokens(tokens.Len)

	authSvc := auth.NewService(auth.Deps{
		Members:   repos.Members,
		Captains:  repos.Captains,
		Snapshots: repos.Snapshots,
		Tokens:    tokens,
		Hasher:    hasher,
		Issuer:    token.NewGenerator(clk),
		Clock:     clk,
	}, auth.WithLogger(log), auth.WithRecorder(m), auth.WithCaptainITS(cfg.CaptainITS))
	membersSvc := members.NewService(members.Deps{
		Members: repos.Members,
		Hasher:  hasher,
		Clock:   clk,
	}, members.WithLogger(log))
	miqaatSvc := miqaats.NewService(miqaats.Deps{
		Miqaats:       repos.Miqaats,
		MiqaatMembers: repos.MiqaatMembers,
		Clock:         clk,
	}, miqaats.WithLogger(log), miqaats.WithRecorder(m), miqaats.WithDisplayZone(zone))

	api := httpapi.NewServer(authSvc, membersSvc, miqaatSvc,
		filestore.New(cfg.UploadDir, cfg.MaxImageBytes),
		httpapi.WithLogger(log),
		httpapi.WithMaxImageBytes(cfg.MaxImageBytes),
	)
	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{
		AuthMiddleware: httpapi.NewAuthMiddleware(tokens, log),
		Logger:         log,
		Observer:       m,
		Metrics:        m.Handler(),
		UploadDir:      cfg.UploadDir,
		Idempotency:    memidempotency.NewStore(clk, memidempotency.DefaultTTL),
		Clock:          clk,
	})

	return &App{
		Handler: handler,
		Repos:   repos,
		Tokens:  tokens,
		Metrics: m,
	}, nil
}

func (a *App) Close() error { return a.Repos.Close() }
