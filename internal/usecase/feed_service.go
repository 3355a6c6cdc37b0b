package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/barterfeed/backend/internal/domain"
	"github.com/barterfeed/backend/internal/logger"
	"github.com/barterfeed/backend/internal/metrics"
)

const taxonomyCacheKey = "taxonomy:current"

// FeedServiceConfig holds configuration for the feed service
type FeedServiceConfig struct {
	TaxonomyTTL time.Duration
	Workers     int
}

// FeedService builds personalized feeds from stored profiles, offers and the taxonomy
type FeedService struct {
	profiles    domain.ProfileRepository
	offers      domain.OfferRepository
	taxonomies  domain.TaxonomyRepository
	cache       domain.CacheRepository
	logger      *zap.Logger
	taxonomyTTL time.Duration
	workers     int
}

// NewFeedService creates a new feed service with dependencies
func NewFeedService(
	profiles domain.ProfileRepository,
	offers domain.OfferRepository,
	taxonomies domain.TaxonomyRepository,
	cache domain.CacheRepository,
	log *zap.Logger,
	config FeedServiceConfig,
) *FeedService {
	ttl := config.TaxonomyTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	workers := config.Workers
	if workers <= 0 {
		workers = 8
	}

	return &FeedService{
		profiles:    profiles,
		offers:      offers,
		taxonomies:  taxonomies,
		cache:       cache,
		logger:      logger.OrNop(log),
		taxonomyTTL: ttl,
		workers:     workers,
	}
}

// BuildFeed returns the active offers relevant to the user, in store order.
// Flow: load profile -> list active offers -> taxonomy (cache first) -> evaluate in parallel
func (s *FeedService) BuildFeed(ctx context.Context, userID string) (*domain.Feed, error) {
	if userID == "" {
		return nil, domain.ErrInvalidRequest
	}

	start := time.Now()

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	offers, err := s.offers.ListOffers(ctx, domain.OfferStatusActive)
	if err != nil {
		return nil, fmt.Errorf("listing offers: %w", err)
	}

	taxonomy, err := s.Taxonomy(ctx)
	if err != nil {
		return nil, err
	}

	decisions := make([]domain.RelevanceDecision, len(offers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range offers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			decisions[i] = ExplainRelevance(profile, &offers[i], taxonomy)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	feed := &domain.Feed{
		UserID:    userID,
		Offers:    make([]domain.BarterOffer, 0),
		Decisions: make([]domain.RelevanceDecision, 0),
		Evaluated: len(offers),
	}
	for i, decision := range decisions {
		metrics.RecordEvaluation(string(decision.Reason))
		if !decision.Relevant {
			continue
		}
		feed.Offers = append(feed.Offers, offers[i])
		feed.Decisions = append(feed.Decisions, decision)
	}

	elapsed := time.Since(start)
	metrics.RecordFeedBuild(len(feed.Offers), elapsed.Seconds())

	s.logger.Debug("feed built",
		zap.String("user_id", userID),
		zap.Int("evaluated", feed.Evaluated),
		zap.Int("relevant", len(feed.Offers)),
		zap.Duration("latency", elapsed),
	)

	return feed, nil
}

// Evaluate explains a single decision without touching the store
func (s *FeedService) Evaluate(user *domain.UserProfile, offer *domain.BarterOffer, taxonomy *domain.SystemTaxonomy) domain.RelevanceDecision {
	decision := ExplainRelevance(user, offer, taxonomy)
	metrics.RecordEvaluation(string(decision.Reason))
	return decision
}

// ResolveTags resolves tags against taxonomy, or against the stored taxonomy when it is nil.
// Results are sorted for stable output.
func (s *FeedService) ResolveTags(ctx context.Context, tags []string, taxonomy *domain.SystemTaxonomy) (categories, interests []string, err error) {
	if taxonomy == nil {
		taxonomy, err = s.Taxonomy(ctx)
		if err != nil {
			return nil, nil, err
		}
	}

	resolved := ResolveTags(tags, taxonomy.Mappings())
	return sortedSet(resolved.Categories), sortedSet(resolved.Interests), nil
}

// Taxonomy returns the current taxonomy, reading through the cache.
// Cache failures fall back to the store.
func (s *FeedService) Taxonomy(ctx context.Context) (*domain.SystemTaxonomy, error) {
	if cached, ok := s.getTaxonomyFromCache(ctx); ok {
		return cached, nil
	}

	taxonomy, err := s.taxonomies.GetTaxonomy(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading taxonomy: %w", err)
	}
	if taxonomy == nil {
		taxonomy = &domain.SystemTaxonomy{}
	}

	if err := s.setTaxonomyInCache(ctx, taxonomy); err != nil {
		s.logger.Warn("caching taxonomy failed", zap.Error(err))
	}

	return taxonomy, nil
}

// UpdateTaxonomy replaces the stored taxonomy and drops the cached copy.
// Once the store accepted the change a failed invalidation is only logged;
// the stale entry expires after the taxonomy TTL.
func (s *FeedService) UpdateTaxonomy(ctx context.Context, taxonomy *domain.SystemTaxonomy) error {
	if taxonomy == nil {
		return domain.ErrInvalidRequest
	}
	if err := s.taxonomies.SaveTaxonomy(ctx, taxonomy); err != nil {
		return err
	}
	if err := s.InvalidateTaxonomy(ctx); err != nil {
		metrics.RecordTaxonomyCache("error")
		s.logger.Warn("taxonomy saved but cache invalidation failed",
			zap.Duration("stale_for", s.taxonomyTTL),
			zap.Error(err),
		)
	}
	return nil
}

// InvalidateTaxonomy drops the cached taxonomy so the next read hits the store
func (s *FeedService) InvalidateTaxonomy(ctx context.Context) error {
	if err := s.cache.Delete(ctx, taxonomyCacheKey); err != nil {
		return fmt.Errorf("invalidating taxonomy: %w", err)
	}
	return nil
}

// SaveProfile stores a user profile
func (s *FeedService) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	if profile == nil || profile.ID == "" {
		return domain.ErrInvalidRequest
	}
	return s.profiles.SaveProfile(ctx, profile)
}

// Offer returns a single stored offer
func (s *FeedService) Offer(ctx context.Context, id string) (*domain.BarterOffer, error) {
	if id == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.offers.GetOffer(ctx, id)
}

// SaveOffer stores an offer. A missing status means the offer awaits moderation.
func (s *FeedService) SaveOffer(ctx context.Context, offer *domain.BarterOffer) error {
	if offer == nil || offer.ID == "" {
		return domain.ErrInvalidRequest
	}
	if offer.Status == "" {
		offer.Status = domain.OfferStatusPending
	}
	if !offer.Status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, offer.Status)
	}
	return s.offers.SaveOffer(ctx, offer)
}

// getTaxonomyFromCache returns the cached taxonomy; undecodable entries count as misses
func (s *FeedService) getTaxonomyFromCache(ctx context.Context) (*domain.SystemTaxonomy, bool) {
	raw, err := s.cache.Get(ctx, taxonomyCacheKey)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			metrics.RecordTaxonomyCache("miss")
		} else {
			metrics.RecordTaxonomyCache("error")
			s.logger.Warn("taxonomy cache unavailable", zap.Error(err))
		}
		return nil, false
	}

	var taxonomy domain.SystemTaxonomy
	if err := json.Unmarshal(raw, &taxonomy); err != nil {
		metrics.RecordTaxonomyCache("miss")
		s.logger.Warn("discarding undecodable cached taxonomy", zap.Error(err))
		return nil, false
	}

	metrics.RecordTaxonomyCache("hit")
	return &taxonomy, true
}

// setTaxonomyInCache stores the taxonomy in cache
func (s *FeedService) setTaxonomyInCache(ctx context.Context, taxonomy *domain.SystemTaxonomy) error {
	raw, err := json.Marshal(taxonomy)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, taxonomyCacheKey, raw, s.taxonomyTTL)
}

func sortedSet(set domain.StringSet) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
