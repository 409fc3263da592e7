package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Offer statuses. accepted, rejected and expired are terminal; countered
// awaits the buyer's response.
const (
	OfferPending   = "pending"
	OfferAccepted  = "accepted"
	OfferRejected  = "rejected"
	OfferCountered = "countered"
	OfferExpired   = "expired"
)

// Offer actions accepted by the transition endpoints.
const (
	OfferActionAccept  = "accept"
	OfferActionReject  = "reject"
	OfferActionCounter = "counter"
)

const MaxOfferMessageLen = 500

var (
	ErrInvalidOfferAction   = errors.New("invalid offer action")
	ErrInvalidTransition    = errors.New("offer is not awaiting this response")
	ErrCounterPriceRequired = errors.New("counter price is required")
	ErrOfferExpired         = errors.New("offer has expired")
)

// CounterOffer is the seller's alternative price proposal.
type CounterOffer struct {
	Price   float64 `bson:"price" json:"price"`
	Message string  `bson:"message,omitempty" json:"message,omitempty"`
}

type Offer struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	BuyerID   primitive.ObjectID `bson:"buyer_id" json:"buyer_id"`
	// SellerID is denormalized from the product at creation time.
	SellerID primitive.ObjectID `bson:"seller_id" json:"seller_id"`

	Price        float64       `bson:"price" json:"price"`
	Message      string        `bson:"message,omitempty" json:"message,omitempty"`
	Status       string        `bson:"status" json:"status"`
	CounterOffer *CounterOffer `bson:"counter_offer,omitempty" json:"counter_offer,omitempty"`

	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// NewOffer constructs a pending offer on the product, denormalizing the
// seller and stamping the expiry deadline ttl after now.
func NewOffer(product *Product, buyerID primitive.ObjectID, price float64, message string, now time.Time, ttl time.Duration) Offer {
	return Offer{
		ProductID: product.ID,
		BuyerID:   buyerID,
		SellerID:  product.SellerID,
		Price:     price,
		Message:   message,
		Status:    OfferPending,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EffectiveStatus reports the status as of now. A stored pending offer past
// its deadline reads as expired; no background process corrects the stored
// value, so every read path must go through here.
func (o *Offer) EffectiveStatus(now time.Time) string {
	if o.Status == OfferPending && now.After(o.ExpiresAt) {
		return OfferExpired
	}
	return o.Status
}

// ApplySellerAction transitions a pending offer on behalf of the seller.
func (o *Offer) ApplySellerAction(action string, counterPrice float64, counterMessage string, now time.Time) error {
	switch action {
	case OfferActionAccept, OfferActionReject, OfferActionCounter:
	default:
		return ErrInvalidOfferAction
	}
	if o.EffectiveStatus(now) == OfferExpired {
		return ErrOfferExpired
	}
	if o.Status != OfferPending {
		return ErrInvalidTransition
	}

	switch action {
	case OfferActionAccept:
		o.Status = OfferAccepted
	case OfferActionReject:
		o.Status = OfferRejected
	case OfferActionCounter:
		if counterPrice < 1 {
			return ErrCounterPriceRequired
		}
		o.Status = OfferCountered
		o.CounterOffer = &CounterOffer{Price: counterPrice, Message: counterMessage}
	}
	o.UpdatedAt = now
	return nil
}

// ApplyBuyerResponse transitions a countered offer on behalf of the original
// buyer.
func (o *Offer) ApplyBuyerResponse(action string, now time.Time) error {
	switch action {
	case OfferActionAccept, OfferActionReject:
	default:
		return ErrInvalidOfferAction
	}
	if o.Status != OfferCountered {
		return ErrInvalidTransition
	}

	if action == OfferActionAccept {
		o.Status = OfferAccepted
	} else {
		o.Status = OfferRejected
	}
	o.UpdatedAt = now
	return nil
}

// OfferResponse joins an offer with its product summary and the counterparty
// identity for transition and listing responses.
type OfferResponse struct {
	Offer
	Status  string          `json:"status"`
	Product *ProductSummary `json:"product,omitempty"`
	Buyer   *UserSummary    `json:"buyer,omitempty"`
	Seller  *UserSummary    `json:"seller,omitempty"`
}

// NewOfferResponse builds the response view, substituting the effective
// status for the stored one.
func NewOfferResponse(o Offer, now time.Time) OfferResponse {
	return OfferResponse{Offer: o, Status: o.EffectiveStatus(now)}
}
