package httpapi

import (
	"net/http"

	"github.com/burhani-guards/guards-api/internal/app/apperr"
	"github.com/burhani-guards/guards-api/internal/app/miqaats"
	"github.com/burhani-guards/guards-api/internal/domain"
)

func (s *Server) CreateMiqaat(w http.ResponseWriter, r *http.Request) {
	actor, _ := IdentityFromContext(r.Context())
	var req miqaatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	m, err := s.Miqaats.Create(r.Context(), actor, req.toInput())
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, miqaatResponseFromDomain(m))
}

func (s *Server) ListMiqaats(w http.ResponseWriter, r *http.Request) {
	ms, err := s.Miqaats.GetAll(r.Context())
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, miqaatListResponse(ms))
}

func (s *Server) GetMiqaat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	m, err := s.Miqaats.GetByID(r.Context(), domain.MiqaatID(id))
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, miqaatResponseFromDomain(m))
}

func (s *Server) UpdateMiqaat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	var req miqaatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	m, err := s.Miqaats.Update(r.Context(), domain.MiqaatID(id), req.toInput())
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, miqaatResponseFromDomain(m))
}

func (s *Server) UpdateMiqaatApproval(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	m, err := s.Miqaats.UpdateApprovalStatus(r.Context(), domain.MiqaatID(id), req.Status)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, miqaatResponseFromDomain(m))
}

func (s *Server) DeleteMiqaat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	if err := s.Miqaats.Delete(r.Context(), domain.MiqaatID(id)); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ListMiqaatMembers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	rows, err := s.Miqaats.ListMemberStatuses(r.Context(), domain.MiqaatID(id))
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	out := make([]miqaatMemberResponse, 0, len(rows))
	for _, mm := range rows {
		out = append(out, miqaatMemberResponse{
			MemberID: int64(mm.MemberID),
			MiqaatID: int64(mm.MiqaatID),
			Status:   string(mm.Status),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ListMiqaatsForCurrentUser answers from the caller's identity; the memberId path segment is kept for
// client compatibility only.
func (s *Server) ListMiqaatsForCurrentUser(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	ms, err := s.Miqaats.GetMiqaatsForCurrentUser(r.Context(), domain.MemberID(id.ID), id.Role, id.FullName)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, miqaatListResponse(ms))
}

func (s *Server) UpdateMemberMiqaatStatus(w http.ResponseWriter, r *http.Request) {
	miqaatID, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	memberID, err := pathID(r, "memberId")
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	id, _ := IdentityFromContext(r.Context())
	if !id.IsMember(domain.MemberID(memberID)) {
		writeAppError(w, r, s.log, apperr.AccessDenied("you can only update your own miqaat status"))
		return
	}
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	if err := s.Miqaats.UpdateMemberMiqaatStatus(r.Context(), domain.MemberID(memberID), domain.MiqaatID(miqaatID), req.Status); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, miqaatMemberResponse{MemberID: memberID, MiqaatID: miqaatID, Status: req.Status})
}

func (req miqaatRequest) toInput() miqaats.Input {
	return miqaats.Input{
		Name:           req.MiqaatName,
		Jamaat:         req.Jamaat,
		Jamiyat:        req.Jamiyat,
		FromDate:       req.FromDate.Time,
		TillDate:       req.TillDate.Time,
		VolunteerLimit: req.VolunteerLimit,
		About:          req.AboutMiqaat,
		AdminApproval:  req.AdminApproval,
	}
}
