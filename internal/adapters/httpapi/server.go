package httpapi

import (
	"log/slog"

	"github.com/burhani-guards/guards-api/internal/app/auth"
	"github.com/burhani-guards/guards-api/internal/app/members"
	"github.com/burhani-guards/guards-api/internal/app/miqaats"
	"github.com/burhani-guards/guards-api/internal/ports/out/imagestore"
)

// DefaultMaxImageBytes bounds profile image uploads when no limit is configured.
const DefaultMaxImageBytes = 5 << 20

// Server holds the handlers for every /api/v1 endpoint.
type Server struct {
	Auth    *auth.Service
	Members *members.Service
	Miqaats *miqaats.Service
	Images  imagestore.Store

	maxImageBytes int64
	log           *slog.Logger
}

type ServerOption func(*Server)

func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMaxImageBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxImageBytes = n
		}
	}
}

func NewServer(authSvc *auth.Service, membersSvc *members.Service, miqaatsSvc *miqaats.Service, images imagestore.Store, opts ...ServerOption) *Server {
	s := &Server{
		Auth:          authSvc,
		Members:       membersSvc,
		Miqaats:       miqaatsSvc,
		Images:        images,
		maxImageBytes: DefaultMaxImageBytes,
		log:           slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}
