package domain

// MatchReason names the rule that decided an offer's relevance
type MatchReason string

const (
	ReasonInactive          MatchReason = "inactive"
	ReasonOwnOffer          MatchReason = "own_offer"
	ReasonProfessional      MatchReason = "professional"
	ReasonInterestGiving    MatchReason = "interest_giving"
	ReasonInterestReceiving MatchReason = "interest_receiving"
	ReasonInterestLiteral   MatchReason = "interest_literal"
	ReasonNoMatch           MatchReason = "no_match"
)

// RelevanceDecision is the outcome of evaluating one offer for one user.
// Attribute holds the occupation or interest that triggered a match.
type RelevanceDecision struct {
	OfferID   string      `json:"offerId"`
	Relevant  bool        `json:"relevant"`
	Reason    MatchReason `json:"reason"`
	Attribute string      `json:"attribute,omitempty"`
}

// Feed is the personalized list of offers for one user
type Feed struct {
	UserID    string              `json:"userId"`
	Offers    []BarterOffer       `json:"offers"`
	Decisions []RelevanceDecision `json:"decisions"`
	Evaluated int                 `json:"evaluated"`
}
