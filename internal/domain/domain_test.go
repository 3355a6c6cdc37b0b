package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserProfile_Occupations(t *testing.T) {
	tests := []struct {
		name    string
		profile *UserProfile
		want    []string
	}{
		{"nil profile", nil, nil},
		{"main only", &UserProfile{MainField: "Design"}, []string{"Design"}},
		{"main and secondary", &UserProfile{MainField: "Design", SecondaryFields: []string{"Photography", "Law"}}, []string{"Design", "Photography", "Law"}},
		{"empty values skipped", &UserProfile{SecondaryFields: []string{"", "Law"}}, []string{"Law"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.profile.Occupations()
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBarterOffer_Sides(t *testing.T) {
	offer := &BarterOffer{Tags: []string{"general"}, GivingTags: []string{"logo"}}
	assert.Equal(t, []string{"logo"}, offer.GivingSide())
	assert.Equal(t, []string{"general"}, offer.ReceivingSide())

	offer = &BarterOffer{Tags: []string{"general"}, ReceivingTags: []string{"seo"}}
	assert.Equal(t, []string{"general"}, offer.GivingSide())
	assert.Equal(t, []string{"seo"}, offer.ReceivingSide())

	offer = &BarterOffer{}
	assert.Empty(t, offer.GivingSide())
	assert.Empty(t, offer.ReceivingSide())
}

func TestOfferStatus_Valid(t *testing.T) {
	for _, s := range []OfferStatus{OfferStatusActive, OfferStatusPending, OfferStatusRejected, OfferStatusExpired} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OfferStatus("Active").Valid())
	assert.False(t, OfferStatus("").Valid())
}

func TestSystemTaxonomy_MappingsNil(t *testing.T) {
	var taxonomy *SystemTaxonomy
	assert.Nil(t, taxonomy.Mappings())

	taxonomy = &SystemTaxonomy{TagMappings: map[string]TagMapping{"logo": {MappedCategories: []string{"Design"}}}}
	assert.Len(t, taxonomy.Mappings(), 1)
}

func TestStringSet(t *testing.T) {
	s := make(StringSet)
	s.Add("Design", "Law")

	assert.True(t, s.Has("Design"))
	assert.False(t, s.Has("design"))
	assert.Len(t, s, 2)
}
