package domain

import "time"

// Member is the domain representation of a member profile. Password hashes never leave the
// repository layer except through the auth workflow.
type Member struct {
	ID      MemberID
	Profile *string // relative path of the profile image; nil means unset
	ITSID   string

	FullName string
	Email    string
	Gender   *string
	Age      *int
	Contact  *string

	Rank string // legacy free-text rank as stored
	Role Role   // resolved once from the numeric code and Rank

	Jamiyat *string
	Jamaat  *string

	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Captain is the domain representation of a captain account.
type Captain struct {
	ID       CaptainID
	ITSID    string
	FullName string
	Email    string
	IsActive bool
}

// GroupCount is a name with the number of active members carrying it.
type GroupCount struct {
	Name  string
	Count int
}

// JamiyatJamaatCounts summarises active members by jamiyat and by jamaat.
type JamiyatJamaatCounts struct {
	Jamiyats []GroupCount
	Jamaats  []GroupCount
}
