package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/barterfeed/backend/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent reopens the same database and checks nothing is re-applied.
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}

	if len(v1) == 0 || len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

func TestMigrationVersion(t *testing.T) {
	v, err := migrationVersion("001_documents.sql")
	if err != nil || v != 1 {
		t.Errorf("migrationVersion = %d, %v; want 1, nil", v, err)
	}

	for _, name := range []string{"documents.sql", "x_documents.sql"} {
		if _, err := migrationVersion(name); err == nil {
			t.Errorf("migrationVersion(%q) expected error", name)
		}
	}
}

func TestProfiles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.GetProfile(ctx, "missing"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("GetProfile(missing) error = %v, want ErrProfileNotFound", err)
	}

	profile := &domain.UserProfile{
		ID:              "u1",
		MainField:       "Plumbing",
		SecondaryFields: []string{"Heating"},
		Interests:       []string{"Chess"},
	}
	if err := s.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	got, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.MainField != "Plumbing" || len(got.SecondaryFields) != 1 || got.Interests[0] != "Chess" {
		t.Errorf("GetProfile = %+v, want saved profile", got)
	}

	profile.MainField = "Design"
	if err := s.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("SaveProfile (update): %v", err)
	}
	got, _ = s.GetProfile(ctx, "u1")
	if got.MainField != "Design" {
		t.Errorf("MainField = %s, want Design after update", got.MainField)
	}

	if err := s.SaveProfile(ctx, &domain.UserProfile{}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("SaveProfile(no id) error = %v, want ErrInvalidRequest", err)
	}
}

func TestOffers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	offers := []domain.BarterOffer{
		{ID: "o1", ProfileID: "u1", Status: domain.OfferStatusActive, Tags: []string{"a"}, CreatedAt: base},
		{ID: "o2", ProfileID: "u2", Status: domain.OfferStatusPending, Tags: []string{"b"}, CreatedAt: base.Add(time.Hour)},
		{ID: "o3", ProfileID: "u2", Status: domain.OfferStatusActive, GivingTags: []string{"c"}, CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range offers {
		if err := s.SaveOffer(ctx, &offers[i]); err != nil {
			t.Fatalf("SaveOffer(%s): %v", offers[i].ID, err)
		}
	}

	active, err := s.ListOffers(ctx, domain.OfferStatusActive)
	if err != nil {
		t.Fatalf("ListOffers: %v", err)
	}
	if len(active) != 2 || active[0].ID != "o3" || active[1].ID != "o1" {
		t.Errorf("ListOffers(active) = %+v, want [o3 o1]", active)
	}
	if active[0].GivingTags[0] != "c" {
		t.Errorf("GivingTags not round-tripped: %+v", active[0])
	}

	all, err := s.ListOffers(ctx, "")
	if err != nil {
		t.Fatalf("ListOffers(all): %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListOffers(all) len = %d, want 3", len(all))
	}

	got, err := s.GetOffer(ctx, "o2")
	if err != nil {
		t.Fatalf("GetOffer: %v", err)
	}
	if got.Status != domain.OfferStatusPending {
		t.Errorf("Status = %s, want pending", got.Status)
	}

	if _, err := s.GetOffer(ctx, "missing"); !errors.Is(err, domain.ErrOfferNotFound) {
		t.Errorf("GetOffer(missing) error = %v, want ErrOfferNotFound", err)
	}
}

func TestSaveOffer_Validation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.SaveOffer(ctx, &domain.BarterOffer{ID: "o1", Status: "archived"})
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Errorf("SaveOffer(bad status) error = %v, want ErrInvalidStatus", err)
	}

	if err := s.SaveOffer(ctx, nil); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("SaveOffer(nil) error = %v, want ErrInvalidRequest", err)
	}

	offer := &domain.BarterOffer{ID: "o2", Status: domain.OfferStatusActive}
	if err := s.SaveOffer(ctx, offer); err != nil {
		t.Fatalf("SaveOffer: %v", err)
	}
	if offer.CreatedAt.IsZero() {
		t.Error("CreatedAt was not stamped")
	}
}

func TestSaveOffer_EditKeepsCreatedAt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := s.SaveOffer(ctx, &domain.BarterOffer{ID: "old", Status: domain.OfferStatusActive, Tags: []string{"a"}, CreatedAt: base}); err != nil {
		t.Fatalf("SaveOffer: %v", err)
	}
	if err := s.SaveOffer(ctx, &domain.BarterOffer{ID: "new", Status: domain.OfferStatusActive, CreatedAt: base.Add(time.Hour)}); err != nil {
		t.Fatalf("SaveOffer: %v", err)
	}

	// edit without createdAt, as PUT /offers/:id sends it
	edit := &domain.BarterOffer{ID: "old", Status: domain.OfferStatusActive, Tags: []string{"a", "b"}}
	if err := s.SaveOffer(ctx, edit); err != nil {
		t.Fatalf("SaveOffer(edit): %v", err)
	}
	if !edit.CreatedAt.Equal(base) {
		t.Errorf("edit CreatedAt = %v, want %v", edit.CreatedAt, base)
	}

	got, err := s.GetOffer(ctx, "old")
	if err != nil {
		t.Fatalf("GetOffer: %v", err)
	}
	if !got.CreatedAt.Equal(base) || len(got.Tags) != 2 {
		t.Errorf("GetOffer = %+v, want createdAt %v and edited tags", got, base)
	}

	offers, err := s.ListOffers(ctx, domain.OfferStatusActive)
	if err != nil {
		t.Fatalf("ListOffers: %v", err)
	}
	if len(offers) != 2 || offers[0].ID != "new" || offers[1].ID != "old" {
		t.Errorf("ListOffers order = %v, want [new old]", offers)
	}
}

func TestTaxonomy(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	empty, err := s.GetTaxonomy(ctx)
	if err != nil {
		t.Fatalf("GetTaxonomy(empty db): %v", err)
	}
	if len(empty.TagMappings) != 0 {
		t.Errorf("expected empty taxonomy, got %+v", empty)
	}

	taxonomy := &domain.SystemTaxonomy{
		Categories: []string{"Plumbing"},
		TagMappings: map[string]domain.TagMapping{
			"pipe-repair": {MappedCategories: []string{"Plumbing"}},
			"secret":      {MappedInterests: []string{"X"}, IsHidden: true},
		},
	}
	if err := s.SaveTaxonomy(ctx, taxonomy); err != nil {
		t.Fatalf("SaveTaxonomy: %v", err)
	}

	got, err := s.GetTaxonomy(ctx)
	if err != nil {
		t.Fatalf("GetTaxonomy: %v", err)
	}
	if !got.TagMappings["secret"].IsHidden {
		t.Error("IsHidden not round-tripped")
	}
	if got.TagMappings["pipe-repair"].MappedCategories[0] != "Plumbing" {
		t.Errorf("mapping not round-tripped: %+v", got.TagMappings)
	}

	if err := s.SaveTaxonomy(ctx, nil); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("SaveTaxonomy(nil) error = %v, want ErrInvalidRequest", err)
	}
}
