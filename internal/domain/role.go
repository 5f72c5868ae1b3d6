package domain

import "strings"

// Role is the closed set of member ranks.
//
// RoleUnspecified is never persisted as a resolved role: it marks a record whose numeric code is absent
// and whose legacy rank text must be consulted (see ResolveRole).
type Role int

const (
	RoleUnspecified Role = iota
	RoleMember
	RoleCaptain
	RoleViceCaptain
	RoleAsstGroupLeader
	RoleGroupLeader
	RoleMajorCaptain
	RoleResourceAdmin
	RoleAssistantCommander
)

var roleText = map[Role]string{
	RoleMember:             "Member",
	RoleCaptain:            "Captain",
	RoleViceCaptain:        "Vice Captain",
	RoleAsstGroupLeader:    "Asst. Group Leader",
	RoleGroupLeader:        "Group Leader",
	RoleMajorCaptain:       "Major (Captain)",
	RoleResourceAdmin:      "Resource Admin",
	RoleAssistantCommander: "Assistant Commander",
}

// Valid reports whether r is one of the eight concrete ranks.
func (r Role) Valid() bool {
	_, ok := roleText[r]
	return ok
}

// Text returns the rank display text ("Vice Captain", "Resource Admin", ...).
func (r Role) Text() string {
	if t, ok := roleText[r]; ok {
		return t
	}
	return roleText[RoleMember]
}

// Slug returns the API role name: lower-cased display text with spaces replaced by "-".
func (r Role) Slug() string {
	return strings.ReplaceAll(strings.ToLower(r.Text()), " ", "-")
}

// Code returns the numeric rank code stored in members.roles.
func (r Role) Code() int { return int(r) }

// RoleFromText maps legacy rank text to a Role. Unknown text yields RoleUnspecified.
func RoleFromText(text string) Role {
	t := strings.TrimSpace(text)
	for r, s := range roleText {
		if s == t {
			return r
		}
	}
	return RoleUnspecified
}

// ResolveRole derives the effective role once, at the data-mapping boundary:
// a valid numeric code wins, then the legacy rank text, then RoleMember.
func ResolveRole(code *int, rankText string) Role {
	if code != nil {
		if r := Role(*code); r.Valid() {
			return r
		}
	}
	if r := RoleFromText(rankText); r.Valid() {
		return r
	}
	return RoleMember
}
