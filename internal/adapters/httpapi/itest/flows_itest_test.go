package itest

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMembersAndMiqaats_ITest(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			srv := newTestServer(t, b)

			// Missing auth header => 401
			{
				status, body, hdr := srv.doJSON(t, http.MethodGet, "/api/v1/users", "", nil)
				requireErrorCode(t, status, body, http.StatusUnauthorized, "UNAUTHORIZED")
				requireHeaderPresent(t, hdr, "Content-Type")
			}

			admin := srv.login(t, "/api/v1/admin/login", map[string]any{"email": "admin@example.com", "password": adminPassword})

			// Admin registers a member with a seeded password.
			var memberID int64
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/api/v1/users", admin, map[string]any{
					"itsId":    "50000001",
					"fullName": "Alice Member",
					"email":    "alice@example.com",
					"jamaat":   "POONA",
					"jamiyat":  "Poona",
					"password": "first",
				})
				requireStatus(t, status, body, http.StatusCreated)
				memberID = mustUnmarshal[struct {
					ID int64 `json:"id"`
				}](t, body).ID
			}

			// Seeded password works once and demands a change.
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/api/v1/login", "", map[string]any{"itsNumber": "50000001", "password": "first"})
				requireStatus(t, status, body, http.StatusOK)
				got := mustUnmarshal[struct {
					RequiresPasswordChange bool   `json:"requiresPasswordChange"`
					Role                   string `json:"role"`
				}](t, body)
				if !got.RequiresPasswordChange || got.Role != "member" {
					t.Fatalf("login body=%s", string(body))
				}
			}
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/api/v1/change-password", "", map[string]any{
					"email": "alice@example.com", "newPassword": "second", "confirmPassword": "second",
				})
				requireStatus(t, status, body, http.StatusOK)
			}
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/api/v1/login", "", map[string]any{"itsNumber": "50000001", "password": "first"})
				requireErrorCode(t, status, body, http.StatusUnauthorized, "INVALID_CREDENTIALS")
			}
			member := srv.login(t, "/api/v1/login", map[string]any{"email": "ALICE@example.com", "password": "second"})

			// The captain creates an event, the admin approves it, the member is enrolled.
			captain := srv.login(t, "/api/v1/captain/login", map[string]any{"itsNumber": seedCaptainITS, "password": seedCaptainPassword})
			var miqaatID int64
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/api/v1/miqaat", captain, map[string]any{
					"miqaatName":     "Urs Mubarak",
					"jamaat":         "POONA",
					"jamiyat":        "Poona",
					"fromDate":       "2025-05-01",
					"tillDate":       "2025-05-02",
					"volunteerLimit": 5,
				})
				requireStatus(t, status, body, http.StatusCreated)
				got := mustUnmarshal[struct {
					ID            int64  `json:"id"`
					AdminApproval string `json:"adminApproval"`
					CaptainName   string `json:"captainName"`
				}](t, body)
				if got.AdminApproval != "Pending" || got.CaptainName != "Seed Captain" {
					t.Fatalf("created body=%s", string(body))
				}
				miqaatID = got.ID
			}
			{
				status, body, _ := srv.doJSON(t, http.MethodPatch, fmt.Sprintf("/api/v1/miqaat/%d/approval", miqaatID), admin, map[string]any{"status": "Approved"})
				requireStatus(t, status, body, http.StatusOK)
			}
			{
				status, body, _ := srv.doJSON(t, http.MethodGet, fmt.Sprintf("/api/v1/miqaat/member/%d", memberID), member, nil)
				requireStatus(t, status, body, http.StatusOK)
				list := mustUnmarshal[[]struct {
					ID int64 `json:"id"`
				}](t, body)
				if len(list) != 1 || list[0].ID != miqaatID {
					t.Fatalf("member miqaats body=%s", string(body))
				}
			}
			{
				path := fmt.Sprintf("/api/v1/miqaat/%d/member/%d/status", miqaatID, memberID)
				status, body, _ := srv.doJSON(t, http.MethodPatch, path, member, map[string]any{"status": "Rejected"})
				requireStatus(t, status, body, http.StatusOK)
			}
			{
				status, body, _ := srv.doJSON(t, http.MethodGet, fmt.Sprintf("/api/v1/miqaat/%d/members", miqaatID), admin, nil)
				requireStatus(t, status, body, http.StatusOK)
				rows := mustUnmarshal[[]struct {
					MemberID int64  `json:"memberId"`
					Status   string `json:"status"`
				}](t, body)
				found := false
				for _, r := range rows {
					if r.MemberID == memberID {
						found = true
						if r.Status != "Rejected" {
							t.Fatalf("member status=%q", r.Status)
						}
					}
				}
				if !found {
					t.Fatalf("member not enrolled body=%s", string(body))
				}
			}

			// Deleting the event cascades; the member no longer sees it.
			{
				status, body, _ := srv.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/v1/miqaat/%d", miqaatID), captain, nil)
				requireStatus(t, status, body, http.StatusNoContent)
			}
			{
				status, body, _ := srv.doJSON(t, http.MethodGet, fmt.Sprintf("/api/v1/miqaat/member/%d", memberID), member, nil)
				requireStatus(t, status, body, http.StatusOK)
				if list := mustUnmarshal[[]struct{}](t, body); len(list) != 0 {
					t.Fatalf("deleted miqaat still listed body=%s", string(body))
				}
			}

			// Logout ends the session.
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/api/v1/logout", member, nil)
				requireStatus(t, status, body, http.StatusNoContent)
				status, body, _ = srv.doJSON(t, http.MethodGet, "/api/v1/user-profile", member, nil)
				requireErrorCode(t, status, body, http.StatusUnauthorized, "UNAUTHORIZED")
			}
		})
	}
}
