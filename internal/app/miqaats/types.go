package miqaats

import "time"

// Input carries the editable fields of an event. Create ignores AdminApproval.
type Input struct {
	Name           string
	Jamaat         string
	Jamiyat        string
	FromDate       time.Time
	TillDate       time.Time
	VolunteerLimit int
	About          *string

	// AdminApproval, when non-nil on Update, must be "Pending", "Approved" or "Rejected".
	AdminApproval *string
}

// Recorder receives the number of rows each fan-out inserted.
type Recorder interface {
	AddFanOutRows(n int)
}

type nopRecorder struct{}

func (nopRecorder) AddFanOutRows(int) {}
