package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/burhani-guards/guards-api/internal/app/apperr"
	"github.com/burhani-guards/guards-api/internal/domain"
	"github.com/burhani-guards/guards-api/internal/ports/out/imagestore"
)

// multipartOverhead is the allowance for multipart framing on top of the image itself.
const multipartOverhead = 64 << 10

func (s *Server) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	if id.Kind == domain.IdentityCaptain {
		writeJSON(w, http.StatusOK, captainProfileResponse{
			ID:       id.ID,
			ItsID:    id.ITSID,
			FullName: id.FullName,
			Email:    id.Email,
			Rank:     id.Role.Text(),
			Roles:    id.Role.Code(),
			Role:     id.Role.Slug(),
		})
		return
	}
	m, err := s.Members.GetProfile(r.Context(), domain.MemberID(id.ID))
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, memberResponseFromDomain(m))
}

func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := memberIdentity(r)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	m, err := s.Members.EditProfile(r.Context(), domain.MemberID(id.ID), req.toInput())
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, memberResponseFromDomain(m))
}

func (s *Server) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	id, err := memberIdentity(r)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	if s.Images == nil {
		writeAppError(w, r, s.log, errors.New("image storage is not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxImageBytes+multipartOverhead)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeImageTooLarge(w, r, s.maxImageBytes)
			return
		}
		writeAppError(w, r, s.log, apperr.Validation("file", "is required"))
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	data, err := io.ReadAll(io.LimitReader(file, s.maxImageBytes+1))
	if err != nil {
		writeAppError(w, r, s.log, fmt.Errorf("read upload: %w", err))
		return
	}

	rel, err := s.Images.SaveProfileImage(r.Context(), strconv.FormatInt(id.ID, 10), imagestore.Upload{
		Filename: hdr.Filename,
		Data:     data,
	})
	switch {
	case errors.Is(err, imagestore.ErrTooLarge):
		writeImageTooLarge(w, r, s.maxImageBytes)
		return
	case errors.Is(err, imagestore.ErrUnsupportedType):
		writeAppError(w, r, s.log, apperr.Validation("file", "must be a jpg, jpeg, png, gif or webp image"))
		return
	case err != nil:
		writeAppError(w, r, s.log, err)
		return
	}

	m, err := s.Members.UpdateProfileImage(r.Context(), domain.MemberID(id.ID), rel)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, memberResponseFromDomain(m))
}

func writeImageTooLarge(w http.ResponseWriter, r *http.Request, limit int64) {
	writeError(w, r, http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", "image exceeds the upload limit",
		map[string]any{"maxBytes": limit})
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	includeInactive, _ := strconv.ParseBool(r.URL.Query().Get("includeInactive"))
	ms, err := s.Members.List(r.Context(), includeInactive)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	out := make([]memberResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, memberResponseFromDomain(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	m, err := s.Members.GetByID(r.Context(), domain.MemberID(id))
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, memberResponseFromDomain(m))
}

func (s *Server) JamiyatJamaatCounts(w http.ResponseWriter, r *http.Request) {
	c, err := s.Members.JamiyatJamaatCounts(r.Context())
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, jamiyatJamaatFromDomain(c))
}

func (s *Server) AddUser(w http.ResponseWriter, r *http.Request) {
	var req addUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	m, err := s.Members.Add(r.Context(), req.toInput())
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: int64(m.ID)})
}

func (s *Server) EditUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	var req editUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	m, err := s.Members.Edit(r.Context(), domain.MemberID(id), req.toInput())
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, memberResponseFromDomain(m))
}

func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	if err := s.Members.Delete(r.Context(), domain.MemberID(id)); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// memberIdentity rejects captain sessions on endpoints that act on the caller's member record.
func memberIdentity(r *http.Request) (domain.Identity, error) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		return domain.Identity{}, apperr.InvalidCredentials()
	}
	if id.Kind != domain.IdentityMember {
		return domain.Identity{}, apperr.AccessDenied("only members have a member profile")
	}
	return id, nil
}
