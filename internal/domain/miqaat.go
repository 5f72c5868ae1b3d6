package domain

import "time"

// Miqaat is a scheduled volunteer event tied to one jamaat.
type Miqaat struct {
	ID             MiqaatID
	Name           string
	Jamaat         string
	Jamiyat        string
	FromDate       time.Time // date-only semantics at the edges
	TillDate       time.Time // date-only semantics at the edges
	VolunteerLimit int
	About          *string
	AdminApproval  ApprovalStatus
	CaptainName    string // creator's display name, denormalised

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MiqaatMember is one member's own response to an approved event.
type MiqaatMember struct {
	MemberID MemberID
	MiqaatID MiqaatID
	Status   ApprovalStatus
}
