package usecase

import "github.com/barterfeed/backend/internal/domain"

// ResolveTags translates free-text tags into the canonical categories and interests
// they imply. Unmapped and hidden tags contribute nothing. A nil mapping table
// resolves every tag to nothing.
func ResolveTags(tags []string, mappings map[string]domain.TagMapping) domain.ResolvedTags {
	resolved := domain.ResolvedTags{
		Categories: make(domain.StringSet),
		Interests:  make(domain.StringSet),
	}

	for _, tag := range tags {
		mapping, ok := mappings[tag]
		if !ok || mapping.IsHidden {
			continue
		}
		resolved.Categories.Add(mapping.MappedCategories...)
		resolved.Interests.Add(mapping.MappedInterests...)
	}

	return resolved
}
