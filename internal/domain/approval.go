package domain

import "fmt"

// ApprovalStatus is shared by an event's admin approval and a member's own response to an event.
// The two usages are independent: a member may be Approved on an event that is later Rejected.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	default:
		return false
	}
}

// ParseApprovalStatus accepts exactly "Pending", "Approved" or "Rejected".
func ParseApprovalStatus(s string) (ApprovalStatus, error) {
	st := ApprovalStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("must be 'Pending', 'Approved', or 'Rejected'")
	}
	return st, nil
}
