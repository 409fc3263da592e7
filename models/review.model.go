package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxReviewCommentLen = 1000

var (
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrCommentMissing = errors.New("comment is required")
	ErrCommentTooLong = errors.New("comment must be at most 1000 characters")
)

// Review is one rating+comment per (product, user) pair. Uniqueness is
// enforced by a compound unique index on the collection.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`

	Rating  int    `bson:"rating" json:"rating"`
	Title   string `bson:"title,omitempty" json:"title,omitempty"`
	Comment string `bson:"comment" json:"comment"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (r *Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	if r.Comment == "" {
		return ErrCommentMissing
	}
	if len(r.Comment) > MaxReviewCommentLen {
		return ErrCommentTooLong
	}
	return nil
}

// ReviewSummary contains aggregate review statistics for a product.
type ReviewSummary struct {
	AverageRating float64 `json:"average_rating"`
	TotalCount    int     `json:"total_count"`
}

// Summarize computes the aggregate statistics for a set of reviews.
func Summarize(reviews []Review) ReviewSummary {
	if len(reviews) == 0 {
		return ReviewSummary{}
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return ReviewSummary{
		AverageRating: float64(sum) / float64(len(reviews)),
		TotalCount:    len(reviews),
	}
}
