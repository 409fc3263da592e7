package models

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func pendingOffer(t *testing.T, now time.Time) *Offer {
	t.Helper()
	return &Offer{
		Price:     50,
		Status:    OfferPending,
		ExpiresAt: now.Add(48 * time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Offer of 50 on an available product owned by someone else: pending, seller
// denormalized, expiry 48h out.
func TestNewOffer(t *testing.T) {
	product := Product{ID: primitive.NewObjectID(), SellerID: primitive.NewObjectID(), Price: 100}
	buyer := primitive.NewObjectID()
	now := time.Now()

	offer := NewOffer(&product, buyer, 50, "would you take 50?", now, 48*time.Hour)

	if offer.Status != OfferPending {
		t.Errorf("expected pending, got %s", offer.Status)
	}
	if !offer.ExpiresAt.Equal(now.Add(48 * time.Hour)) {
		t.Errorf("expected expiry 48h after creation, got %v", offer.ExpiresAt)
	}
	if offer.ProductID != product.ID {
		t.Error("expected product reference to be set")
	}
	if offer.BuyerID != buyer {
		t.Error("expected buyer reference to be set")
	}
	if offer.SellerID != product.SellerID {
		t.Error("seller must be denormalized from the product")
	}
	if offer.Price != 50 {
		t.Errorf("expected price 50, got %v", offer.Price)
	}
}

func TestApplySellerAction_Transitions(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name         string
		action       string
		counterPrice float64
		wantStatus   string
		wantErr      error
	}{
		{name: "accept", action: "accept", wantStatus: OfferAccepted},
		{name: "reject", action: "reject", wantStatus: OfferRejected},
		{name: "counter", action: "counter", counterPrice: 70, wantStatus: OfferCountered},
		{name: "counter without price", action: "counter", wantErr: ErrCounterPriceRequired},
		{name: "unknown action", action: "haggle", wantErr: ErrInvalidOfferAction},
		{name: "empty action", action: "", wantErr: ErrInvalidOfferAction},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			offer := pendingOffer(t, now)
			err := offer.ApplySellerAction(tc.action, tc.counterPrice, "", now)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if offer.Status != OfferPending {
					t.Errorf("failed action must not change status, got %s", offer.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if offer.Status != tc.wantStatus {
				t.Errorf("expected status %s, got %s", tc.wantStatus, offer.Status)
			}
		})
	}
}

func TestApplySellerAction_Counter(t *testing.T) {
	now := time.Now()
	offer := pendingOffer(t, now)

	if err := offer.ApplySellerAction("counter", 70, "best I can do", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offer.Status != OfferCountered {
		t.Fatalf("expected countered, got %s", offer.Status)
	}
	if offer.CounterOffer == nil {
		t.Fatal("expected counter offer to be recorded")
	}
	if offer.CounterOffer.Price != 70 {
		t.Errorf("expected counter price 70, got %v", offer.CounterOffer.Price)
	}
	if offer.CounterOffer.Message != "best I can do" {
		t.Errorf("unexpected counter message %q", offer.CounterOffer.Message)
	}
}

func TestApplySellerAction_OnlyFromPending(t *testing.T) {
	now := time.Now()

	for _, status := range []string{OfferAccepted, OfferRejected, OfferCountered, OfferExpired} {
		offer := pendingOffer(t, now)
		offer.Status = status
		if err := offer.ApplySellerAction("accept", 0, "", now); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("status %s: expected ErrInvalidTransition, got %v", status, err)
		}
	}
}

func TestApplySellerAction_ExpiredOffer(t *testing.T) {
	now := time.Now()
	offer := pendingOffer(t, now)
	offer.ExpiresAt = now.Add(-time.Minute)

	if err := offer.ApplySellerAction("accept", 0, "", now); !errors.Is(err, ErrOfferExpired) {
		t.Fatalf("expected ErrOfferExpired, got %v", err)
	}
}

func TestApplyBuyerResponse_Transitions(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name       string
		status     string
		action     string
		wantStatus string
		wantErr    error
	}{
		{name: "accept counter", status: OfferCountered, action: "accept", wantStatus: OfferAccepted},
		{name: "reject counter", status: OfferCountered, action: "reject", wantStatus: OfferRejected},
		{name: "counter not a buyer action", status: OfferCountered, action: "counter", wantErr: ErrInvalidOfferAction},
		{name: "unknown action", status: OfferCountered, action: "haggle", wantErr: ErrInvalidOfferAction},
		{name: "pending not countered", status: OfferPending, action: "accept", wantErr: ErrInvalidTransition},
		{name: "accepted is terminal", status: OfferAccepted, action: "reject", wantErr: ErrInvalidTransition},
		{name: "rejected is terminal", status: OfferRejected, action: "accept", wantErr: ErrInvalidTransition},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			offer := pendingOffer(t, now)
			offer.Status = tc.status
			err := offer.ApplyBuyerResponse(tc.action, now)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if offer.Status != tc.wantStatus {
				t.Errorf("expected status %s, got %s", tc.wantStatus, offer.Status)
			}
		})
	}
}

// Seller counters, buyer rejects: countered -> rejected, terminal.
func TestNegotiation_CounterThenReject(t *testing.T) {
	now := time.Now()
	offer := pendingOffer(t, now)

	if err := offer.ApplySellerAction("counter", 70, "", now); err != nil {
		t.Fatalf("counter failed: %v", err)
	}
	if offer.Status != OfferCountered {
		t.Fatalf("expected countered, got %s", offer.Status)
	}

	if err := offer.ApplyBuyerResponse("reject", now); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if offer.Status != OfferRejected {
		t.Fatalf("expected rejected, got %s", offer.Status)
	}

	if err := offer.ApplyBuyerResponse("accept", now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("rejected offer must be terminal, got %v", err)
	}
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Now()

	offer := pendingOffer(t, now)
	if got := offer.EffectiveStatus(now); got != OfferPending {
		t.Errorf("fresh pending offer: expected pending, got %s", got)
	}

	offer.ExpiresAt = now.Add(-time.Second)
	if got := offer.EffectiveStatus(now); got != OfferExpired {
		t.Errorf("stale pending offer: expected expired, got %s", got)
	}

	// Only pending offers expire; terminal and countered states keep their
	// stored status regardless of the deadline.
	for _, status := range []string{OfferAccepted, OfferRejected, OfferCountered} {
		offer.Status = status
		if got := offer.EffectiveStatus(now); got != status {
			t.Errorf("status %s past deadline: expected unchanged, got %s", status, got)
		}
	}
}
