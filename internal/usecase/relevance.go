package usecase

import "github.com/barterfeed/backend/internal/domain"

// IsOfferRelevantForUser decides whether offer belongs in the user's personalized feed.
func IsOfferRelevantForUser(user *domain.UserProfile, offer *domain.BarterOffer, taxonomy *domain.SystemTaxonomy) bool {
	return ExplainRelevance(user, offer, taxonomy).Relevant
}

// ExplainRelevance evaluates the feed rules in order and reports which one decided.
//
// Rules, first match wins:
//   - the offer must be active and must not belong to the user
//   - professional: the offer seeks one of the user's occupations and does not itself supply it
//   - interest: one of the user's interests is mapped from either side, or appears verbatim in its tags
func ExplainRelevance(user *domain.UserProfile, offer *domain.BarterOffer, taxonomy *domain.SystemTaxonomy) domain.RelevanceDecision {
	if offer == nil {
		return domain.RelevanceDecision{Reason: domain.ReasonInactive}
	}

	decision := domain.RelevanceDecision{OfferID: offer.ID, Reason: domain.ReasonNoMatch}

	if offer.Status != domain.OfferStatusActive {
		decision.Reason = domain.ReasonInactive
		return decision
	}
	if user == nil {
		return decision
	}
	if offer.ProfileID == user.ID {
		decision.Reason = domain.ReasonOwnOffer
		return decision
	}

	givingTags := offer.GivingSide()
	receivingTags := offer.ReceivingSide()

	mappings := taxonomy.Mappings()
	giving := ResolveTags(givingTags, mappings)
	receiving := ResolveTags(receivingTags, mappings)

	for _, occupation := range user.Occupations() {
		// Same-field peers are competitors, not clients.
		if receiving.Categories.Has(occupation) && !giving.Categories.Has(occupation) {
			return matched(decision, domain.ReasonProfessional, occupation)
		}
	}

	rawTags := make(domain.StringSet, len(givingTags)+len(receivingTags))
	rawTags.Add(givingTags...)
	rawTags.Add(receivingTags...)

	for _, interest := range user.Interests {
		switch {
		case giving.Interests.Has(interest):
			return matched(decision, domain.ReasonInterestGiving, interest)
		case receiving.Interests.Has(interest):
			return matched(decision, domain.ReasonInterestReceiving, interest)
		case rawTags.Has(interest):
			return matched(decision, domain.ReasonInterestLiteral, interest)
		}
	}

	return decision
}

// FilterRelevantOffers returns the offers relevant to user, preserving input order
func FilterRelevantOffers(user *domain.UserProfile, offers []domain.BarterOffer, taxonomy *domain.SystemTaxonomy) []domain.BarterOffer {
	relevant := make([]domain.BarterOffer, 0, len(offers))
	for i := range offers {
		if IsOfferRelevantForUser(user, &offers[i], taxonomy) {
			relevant = append(relevant, offers[i])
		}
	}
	return relevant
}

func matched(decision domain.RelevanceDecision, reason domain.MatchReason, attribute string) domain.RelevanceDecision {
	decision.Relevant = true
	decision.Reason = reason
	decision.Attribute = attribute
	return decision
}
