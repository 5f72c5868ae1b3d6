package domain

// MemberID identifies a row in the members table.
type MemberID int64

// CaptainID identifies a row in the captains table.
type CaptainID int64

// MiqaatID identifies a scheduled volunteer event.
type MiqaatID int64
