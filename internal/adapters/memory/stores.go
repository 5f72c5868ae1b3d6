// Package memory wires the in-memory adapters into one linked set of stores.
package memory

import (
	"github.com/burhani-guards/guards-api/internal/adapters/memory/captainrepo"
	"github.com/burhani-guards/guards-api/internal/adapters/memory/memberrepo"
	"github.com/burhani-guards/guards-api/internal/adapters/memory/miqaatmemberrepo"
	"github.com/burhani-guards/guards-api/internal/adapters/memory/miqaatrepo"
	"github.com/burhani-guards/guards-api/internal/adapters/memory/snapshotrepo"
)

// Stores holds the in-memory repositories. MiqaatMembers reads Members when enrolling a jamaat, and
// Miqaats cascades deletes into MiqaatMembers, the way the relational schema does.
type Stores struct {
	Members       *memberrepo.Repo
	Captains      *captainrepo.Repo
	Miqaats       *miqaatrepo.Repo
	MiqaatMembers *miqaatmemberrepo.Repo
	Snapshots     *snapshotrepo.Repo
}

func NewStores() *Stores {
	members := memberrepo.NewRepo()
	mm := miqaatmemberrepo.NewRepo(members)
	return &Stores{
		Members:       members,
		Captains:      captainrepo.NewRepo(),
		Miqaats:       miqaatrepo.NewRepo(mm),
		MiqaatMembers: mm,
		Snapshots:     snapshotrepo.NewRepo(),
	}
}
