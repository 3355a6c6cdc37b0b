package domain

// TagMapping translates one free-text tag into canonical categories and interests.
// A hidden mapping contributes nothing, exactly as if the tag were unmapped.
type TagMapping struct {
	MappedCategories []string `json:"mappedCategories,omitempty"`
	MappedInterests  []string `json:"mappedInterests,omitempty"`
	IsHidden         bool     `json:"isHidden,omitempty"`
}

// SystemTaxonomy holds the approved vocabulary and the tag mapping table.
// Categories and Interests are the approved lists; matching only consults TagMappings.
type SystemTaxonomy struct {
	Categories  []string              `json:"categories,omitempty"`
	Interests   []string              `json:"interests,omitempty"`
	TagMappings map[string]TagMapping `json:"tagMappings,omitempty"`
}

// Mappings returns the tag mapping table, or nil for an absent taxonomy
func (t *SystemTaxonomy) Mappings() map[string]TagMapping {
	if t == nil {
		return nil
	}
	return t.TagMappings
}

// StringSet is an unordered set of exact strings
type StringSet map[string]struct{}

// Add inserts every value into the set
func (s StringSet) Add(values ...string) {
	for _, v := range values {
		s[v] = struct{}{}
	}
}

// Has reports membership
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// ResolvedTags is the canonical meaning of a set of tags
type ResolvedTags struct {
	Categories StringSet
	Interests  StringSet
}
