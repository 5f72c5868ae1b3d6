package domain

// IdentityKind distinguishes the two credential spaces.
type IdentityKind string

const (
	IdentityMember  IdentityKind = "member"
	IdentityCaptain IdentityKind = "captain"
)

// Identity is the point-in-time snapshot taken at login and bound to a bearer token.
// It is never re-read from storage: later profile edits do not change it.
type Identity struct {
	Kind                   IdentityKind
	ID                     int64
	ITSID                  string
	FullName               string
	Email                  string
	Role                   Role
	RequiresPasswordChange bool
}

// IsMember reports whether the identity is the member with the given id.
func (i Identity) IsMember(id MemberID) bool {
	return i.Kind == IdentityMember && i.ID == int64(id)
}

// HasRole reports whether the identity holds any of the given roles.
func (i Identity) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}
