package memberrepo

import "errors"

var (
	// ErrNotFound indicates the requested member does not exist.
	ErrNotFound = errors.New("member not found")

	// ErrAlreadyExists indicates the ITS id or email is already registered to another member.
	ErrAlreadyExists = errors.New("member already exists")
)
