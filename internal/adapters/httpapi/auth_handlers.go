package httpapi

import (
	"context"
	"net/http"

	"github.com/burhani-guards/guards-api/internal/app/auth"
)

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	s.login(w, r, s.Auth.Login)
}

func (s *Server) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	s.login(w, r, s.Auth.LoginAdmin)
}

func (s *Server) LoginCaptain(w http.ResponseWriter, r *http.Request) {
	s.login(w, r, s.Auth.LoginCaptain)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, fn func(context.Context, string, string) (auth.Session, error)) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	sess, err := fn(r.Context(), req.identifier(), req.Password)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponseFromSession(sess))
}

func (s *Server) ChangePassword(w http.ResponseWriter, r *http.Request) {
	s.changePassword(w, r, s.Auth.ChangePassword)
}

func (s *Server) ChangeCaptainPassword(w http.ResponseWriter, r *http.Request) {
	s.changePassword(w, r, s.Auth.ChangeCaptainPassword)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request, fn func(context.Context, string, string, string) error) {
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	if err := fn(r.Context(), req.identifier(), req.NewPassword, req.ConfirmPassword); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "password changed"})
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.Logout(r.Context(), tokenFromContext(r.Context())); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
