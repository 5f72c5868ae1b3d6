package memberrepo

import "github.com/burhani-guards/guards-api/internal/domain"

// ToDomain maps the record to its domain form, resolving the role once. Hashes are dropped.
func (m Member) ToDomain() domain.Member {
	return domain.Member{
		ID:        m.ID,
		Profile:   cloneString(m.Profile),
		ITSID:     m.ITSID,
		FullName:  m.FullName,
		Email:     m.Email,
		Gender:    cloneString(m.Gender),
		Age:       cloneInt(m.Age),
		Contact:   cloneString(m.Contact),
		Rank:      m.Rank,
		Role:      domain.ResolveRole(m.Roles, m.Rank),
		Jamiyat:   cloneString(m.Jamiyat),
		Jamaat:    cloneString(m.Jamaat),
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
