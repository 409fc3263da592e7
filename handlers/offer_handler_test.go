package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ravindrauiet/relove-backend/models"
)

// duplicateKeyErr mimics what the store returns when a unique index rejects
// an insert.
func duplicateKeyErr() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
}

type fakeInserter struct {
	err      error
	inserted interface{}
}

func (f *fakeInserter) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	f.inserted = document
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.InsertOneResult{InsertedID: primitive.NewObjectID()}, nil
}

func TestInsertOffer_Success(t *testing.T) {
	col := &fakeInserter{}
	offer := models.Offer{Status: models.OfferPending}

	if err := insertOffer(context.Background(), col, &offer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offer.ID.IsZero() {
		t.Error("expected inserted id to be assigned")
	}
	if col.inserted == nil {
		t.Error("expected document to reach the store")
	}
}

func TestInsertOffer_DuplicatePending(t *testing.T) {
	col := &fakeInserter{err: duplicateKeyErr()}
	offer := models.Offer{Status: models.OfferPending}

	if err := insertOffer(context.Background(), col, &offer); !errors.Is(err, errDuplicatePendingOffer) {
		t.Fatalf("expected errDuplicatePendingOffer, got %v", err)
	}
	if !offer.ID.IsZero() {
		t.Error("rejected insert must not assign an id")
	}
}

func TestInsertOffer_StoreFailure(t *testing.T) {
	storeErr := errors.New("connection reset")
	col := &fakeInserter{err: storeErr}
	offer := models.Offer{Status: models.OfferPending}

	err := insertOffer(context.Background(), col, &offer)
	if errors.Is(err, errDuplicatePendingOffer) {
		t.Fatal("plain store failure must not read as a duplicate")
	}
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestInsertReview_Duplicate(t *testing.T) {
	col := &fakeInserter{err: duplicateKeyErr()}
	review := models.Review{Rating: 4, Comment: "nice"}

	if err := insertReview(context.Background(), col, &review); !errors.Is(err, errDuplicateReview) {
		t.Fatalf("expected errDuplicateReview, got %v", err)
	}
	if !review.ID.IsZero() {
		t.Error("rejected insert must not assign an id")
	}
}

func TestInsertReview_Success(t *testing.T) {
	col := &fakeInserter{}
	review := models.Review{Rating: 4, Comment: "nice"}

	if err := insertReview(context.Background(), col, &review); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if review.ID.IsZero() {
		t.Error("expected inserted id to be assigned")
	}
}

func TestOfferActionRequest_CounterSpellings(t *testing.T) {
	cases := []struct {
		name        string
		body        string
		wantPrice   float64
		wantMessage string
	}{
		{
			name:        "camelCase",
			body:        `{"action":"counter","counterPrice":70,"counterMessage":"best I can do"}`,
			wantPrice:   70,
			wantMessage: "best I can do",
		},
		{
			name:        "snake_case",
			body:        `{"action":"counter","counter_price":65,"counter_message":"final"}`,
			wantPrice:   65,
			wantMessage: "final",
		},
		{
			name:      "camelCase wins when both present",
			body:      `{"action":"counter","counterPrice":70,"counter_price":65}`,
			wantPrice: 70,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req OfferActionRequest
			if err := json.Unmarshal([]byte(tc.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			price, message := req.counter()
			if price != tc.wantPrice {
				t.Errorf("expected price %v, got %v", tc.wantPrice, price)
			}
			if message != tc.wantMessage {
				t.Errorf("expected message %q, got %q", tc.wantMessage, message)
			}
		})
	}
}
