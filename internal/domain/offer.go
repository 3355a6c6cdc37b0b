package domain

import "time"

// OfferStatus is the moderation state of a barter offer
type OfferStatus string

const (
	OfferStatusActive   OfferStatus = "active"
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusRejected OfferStatus = "rejected"
	OfferStatusExpired  OfferStatus = "expired"
)

// Valid reports whether s is one of the known statuses
func (s OfferStatus) Valid() bool {
	switch s {
	case OfferStatusActive, OfferStatusPending, OfferStatusRejected, OfferStatusExpired:
		return true
	}
	return false
}

// BarterOffer is a posted listing describing what the owner gives and what they seek.
// GivingTags and ReceivingTags are optional; when empty each side falls back to Tags on its own.
type BarterOffer struct {
	ID            string      `json:"id"`
	ProfileID     string      `json:"profileId"`
	Status        OfferStatus `json:"status"`
	Tags          []string    `json:"tags,omitempty"`
	GivingTags    []string    `json:"giving_tags,omitempty"`
	ReceivingTags []string    `json:"receiving_tags,omitempty"`
	CreatedAt     time.Time   `json:"createdAt,omitempty"`
}

// GivingSide returns the tags describing what the offer provides
func (o *BarterOffer) GivingSide() []string {
	if len(o.GivingTags) > 0 {
		return o.GivingTags
	}
	return o.Tags
}

// ReceivingSide returns the tags describing what the offer seeks
func (o *BarterOffer) ReceivingSide() []string {
	if len(o.ReceivingTags) > 0 {
		return o.ReceivingTags
	}
	return o.Tags
}
