package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque encoded bytes so memory and redis backends behave the same.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ProfileRepository reads and writes user profiles
type ProfileRepository interface {
	GetProfile(ctx context.Context, id string) (*UserProfile, error)
	SaveProfile(ctx context.Context, profile *UserProfile) error
}

// OfferRepository reads and writes barter offers
type OfferRepository interface {
	GetOffer(ctx context.Context, id string) (*BarterOffer, error)
	ListOffers(ctx context.Context, status OfferStatus) ([]BarterOffer, error)
	SaveOffer(ctx context.Context, offer *BarterOffer) error
}

// TaxonomyRepository reads and replaces the system taxonomy
type TaxonomyRepository interface {
	GetTaxonomy(ctx context.Context) (*SystemTaxonomy, error)
	SaveTaxonomy(ctx context.Context, taxonomy *SystemTaxonomy) error
}
