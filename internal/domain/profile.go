package domain

// UserProfile is the subset of a user record the feed needs.
// Occupations and interests are free text; they are compared by exact string equality.
type UserProfile struct {
	ID              string   `json:"id"`
	MainField       string   `json:"mainField"`
	SecondaryFields []string `json:"secondaryFields,omitempty"`
	Interests       []string `json:"interests,omitempty"`
}

// Occupations returns the main field followed by the secondary fields, skipping empty values.
func (p *UserProfile) Occupations() []string {
	if p == nil {
		return nil
	}

	occupations := make([]string, 0, 1+len(p.SecondaryFields))
	if p.MainField != "" {
		occupations = append(occupations, p.MainField)
	}
	for _, field := range p.SecondaryFields {
		if field != "" {
			occupations = append(occupations, field)
		}
	}
	return occupations
}
