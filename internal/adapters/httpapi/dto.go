package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/burhani-guards/guards-api/internal/app/auth"
	"github.com/burhani-guards/guards-api/internal/app/members"
	"github.com/burhani-guards/guards-api/internal/domain"
)

type loginRequest struct {
	ItsNumber string               `json:"itsNumber" validate:"required_without=Email"`
	Email     *openapi_types.Email `json:"email"`
	Password  string               `json:"password" validate:"required"`
}

// identifier prefers the ITS number; the auth service treats anything containing "@" as an email.
func (l loginRequest) identifier() string {
	if l.ItsNumber != "" {
		return l.ItsNumber
	}
	if l.Email != nil {
		return string(*l.Email)
	}
	return ""
}

type changePasswordRequest struct {
	ItsNumber       string `json:"itsNumber"`
	Email           string `json:"email"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

func (c changePasswordRequest) identifier() string {
	if c.ItsNumber != "" {
		return c.ItsNumber
	}
	return c.Email
}

type loginResponse struct {
	ID                     int64   `json:"id"`
	Profile                *string `json:"profile"`
	ItsID                  string  `json:"itsId"`
	FullName               string  `json:"fullName"`
	Email                  string  `json:"email"`
	Rank                   string  `json:"rank"`
	Roles                  int     `json:"roles"`
	Jamiyat                *string `json:"jamiyat"`
	Jamaat                 *string `json:"jamaat"`
	Gender                 *string `json:"gender"`
	Age                    *int    `json:"age"`
	Contact                *string `json:"contact"`
	Role                   string  `json:"role"`
	Token                  string  `json:"token"`
	RequiresPasswordChange bool    `json:"requiresPasswordChange"`
}

func loginResponseFromSession(sess auth.Session) loginResponse {
	id := sess.Identity
	out := loginResponse{
		ID:                     id.ID,
		ItsID:                  id.ITSID,
		FullName:               id.FullName,
		Email:                  id.Email,
		Rank:                   id.Role.Text(),
		Roles:                  id.Role.Code(),
		Role:                   id.Role.Slug(),
		Token:                  sess.Token,
		RequiresPasswordChange: id.RequiresPasswordChange,
	}
	if m := sess.Member; m != nil {
		out.Profile = m.Profile
		out.Jamiyat = m.Jamiyat
		out.Jamaat = m.Jamaat
		out.Gender = m.Gender
		out.Age = m.Age
		out.Contact = m.Contact
	}
	return out
}

type memberResponse struct {
	ID        int64     `json:"id"`
	Profile   *string   `json:"profile"`
	ItsID     string    `json:"itsId"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Rank      string    `json:"rank"`
	Roles     int       `json:"roles"`
	Role      string    `json:"role"`
	Jamiyat   *string   `json:"jamiyat"`
	Jamaat    *string   `json:"jamaat"`
	Gender    *string   `json:"gender"`
	Age       *int      `json:"age"`
	Contact   *string   `json:"contact"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func memberResponseFromDomain(m domain.Member) memberResponse {
	return memberResponse{
		ID:        int64(m.ID),
		Profile:   m.Profile,
		ItsID:     m.ITSID,
		FullName:  m.FullName,
		Email:     m.Email,
		Rank:      m.Role.Text(),
		Roles:     m.Role.Code(),
		Role:      m.Role.Slug(),
		Jamiyat:   m.Jamiyat,
		Jamaat:    m.Jamaat,
		Gender:    m.Gender,
		Age:       m.Age,
		Contact:   m.Contact,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// captainProfileResponse is what /user-profile returns for a captain session.
type captainProfileResponse struct {
	ID       int64  `json:"id"`
	ItsID    string `json:"itsId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Rank     string `json:"rank"`
	Roles    int    `json:"roles"`
	Role     string `json:"role"`
}

type addUserRequest struct {
	ItsID    string  `json:"itsId" validate:"required"`
	FullName string  `json:"fullName" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Rank     string  `json:"rank"`
	Roles    *int    `json:"roles" validate:"omitempty,min=1,max=8"`
	Jamiyat  *string `json:"jamiyat"`
	Jamaat   *string `json:"jamaat"`
	Gender   *string `json:"gender"`
	Age      *int    `json:"age" validate:"omitempty,gte=0"`
	Contact  *string `json:"contact"`
	Password *string `json:"password"`
}

func (a addUserRequest) toInput() members.AddInput {
	return members.AddInput{
		ITSID:    a.ItsID,
		FullName: a.FullName,
		Email:    a.Email,
		Roles:    a.Roles,
		Rank:     a.Rank,
		Jamiyat:  a.Jamiyat,
		Jamaat:   a.Jamaat,
		Gender:   a.Gender,
		Age:      a.Age,
		Contact:  a.Contact,
		Password: a.Password,
	}
}

// editUserRequest distinguishes omitted fields from explicit nulls.
type editUserRequest struct {
	ItsID    nullable.Nullable[string] `json:"itsId,omitempty"`
	FullName nullable.Nullable[string] `json:"fullName,omitempty"`
	Email    nullable.Nullable[string] `json:"email,omitempty"`
	Rank     nullable.Nullable[string] `json:"rank,omitempty"`
	Roles    nullable.Nullable[int]    `json:"roles,omitempty"`
	Jamiyat  nullable.Nullable[string] `json:"jamiyat,omitempty"`
	Jamaat   nullable.Nullable[string] `json:"jamaat,omitempty"`
	Gender   nullable.Nullable[string] `json:"gender,omitempty"`
	Age      nullable.Nullable[int]    `json:"age,omitempty"`
	Contact  nullable.Nullable[string] `json:"contact,omitempty"`
	IsActive nullable.Nullable[bool]   `json:"isActive,omitempty"`
}

func (e editUserRequest) toInput() members.EditInput {
	return members.EditInput{
		ITSID:    optionalFromNullable(e.ItsID),
		FullName: optionalFromNullable(e.FullName),
		Email:    optionalFromNullable(e.Email),
		Rank:     optionalFromNullable(e.Rank),
		Roles:    optionalFromNullable(e.Roles),
		Jamiyat:  optionalFromNullable(e.Jamiyat),
		Jamaat:   optionalFromNullable(e.Jamaat),
		Gender:   optionalFromNullable(e.Gender),
		Age:      optionalFromNullable(e.Age),
		Contact:  optionalFromNullable(e.Contact),
		IsActive: optionalFromNullable(e.IsActive),
	}
}

type updateProfileRequest struct {
	FullName nullable.Nullable[string] `json:"fullName,omitempty"`
	Email    nullable.Nullable[string] `json:"email,omitempty"`
	Contact  nullable.Nullable[string] `json:"contact,omitempty"`
}

func (u updateProfileRequest) toInput() members.ProfileInput {
	return members.ProfileInput{
		FullName: optionalFromNullable(u.FullName),
		Email:    optionalFromNullable(u.Email),
		Contact:  optionalFromNullable(u.Contact),
	}
}

func optionalFromNullable[T any](n nullable.Nullable[T]) members.Optional[T] {
	if !n.IsSpecified() {
		return members.Unspecified[T]()
	}
	if n.IsNull() {
		return members.Null[T]()
	}
	v, err := n.Get()
	if err != nil {
		return members.Unspecified[T]()
	}
	return members.Some(v)
}

type groupCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type jamiyatJamaatResponse struct {
	Jamiyats []groupCount `json:"jamiyats"`
	Jamaats  []groupCount `json:"jamaats"`
}

func jamiyatJamaatFromDomain(c domain.JamiyatJamaatCounts) jamiyatJamaatResponse {
	conv := func(in []domain.GroupCount) []groupCount {
		out := make([]groupCount, 0, len(in))
		for _, g := range in {
			out = append(out, groupCount{Name: g.Name, Count: g.Count})
		}
		return out
	}
	return jamiyatJamaatResponse{Jamiyats: conv(c.Jamiyats), Jamaats: conv(c.Jamaats)}
}

type miqaatRequest struct {
	MiqaatName     string             `json:"miqaatName" validate:"required"`
	Jamaat         string             `json:"jamaat" validate:"required"`
	Jamiyat        string             `json:"jamiyat" validate:"required"`
	FromDate       openapi_types.Date `json:"fromDate" validate:"required"`
	TillDate       openapi_types.Date `json:"tillDate" validate:"required"`
	VolunteerLimit int                `json:"volunteerLimit" validate:"gte=0"`
	AboutMiqaat    *string            `json:"aboutMiqaat"`
	AdminApproval  *string            `json:"adminApproval" validate:"omitempty,oneof=Pending Approved Rejected"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Approved Rejected"`
}

type miqaatResponse struct {
	ID             int64              `json:"id"`
	MiqaatName     string             `json:"miqaatName"`
	Jamaat         string             `json:"jamaat"`
	Jamiyat        string             `json:"jamiyat"`
	FromDate       openapi_types.Date `json:"fromDate"`
	TillDate       openapi_types.Date `json:"tillDate"`
	VolunteerLimit int                `json:"volunteerLimit"`
	AboutMiqaat    *string            `json:"aboutMiqaat"`
	AdminApproval  string             `json:"adminApproval"`
	CaptainName    string             `json:"captainName"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

func miqaatResponseFromDomain(m domain.Miqaat) miqaatResponse {
	return miqaatResponse{
		ID:             int64(m.ID),
		MiqaatName:     m.Name,
		Jamaat:         m.Jamaat,
		Jamiyat:        m.Jamiyat,
		FromDate:       openapi_types.Date{Time: m.FromDate},
		TillDate:       openapi_types.Date{Time: m.TillDate},
		VolunteerLimit: m.VolunteerLimit,
		AboutMiqaat:    m.About,
		AdminApproval:  string(m.AdminApproval),
		CaptainName:    m.CaptainName,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func miqaatListResponse(ms []domain.Miqaat) []miqaatResponse {
	out := make([]miqaatResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, miqaatResponseFromDomain(m))
	}
	return out
}

type miqaatMemberResponse struct {
	MemberID int64  `json:"memberId"`
	MiqaatID int64  `json:"miqaatId"`
	Status   string `json:"status"`
}

type idResponse struct {
	ID int64 `json:"id"`
}

type messageResponse struct {
	Message string `json:"message"`
}
