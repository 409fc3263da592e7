package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Categories is the closed set of product categories.
var Categories = []string{
	"Clothing",
	"Footwear",
	"Accessories",
	"Bags",
	"Jewelry",
	"Electronics",
	"Home",
	"Sports",
	"Books",
	"Toys",
	"Other",
}

// Conditions is the closed set of product conditions.
var Conditions = []string{
	"New",
	"Like New",
	"Good",
	"Fair",
	"Poor",
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

func ValidCondition(c string) bool {
	for _, v := range Conditions {
		if v == c {
			return true
		}
	}
	return false
}

type Product struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SellerID primitive.ObjectID `bson:"seller_id" json:"seller_id"`

	Title         string   `bson:"title" json:"title"`
	Description   string   `bson:"description" json:"description"`
	Price         float64  `bson:"price" json:"price"`
	OriginalPrice *float64 `bson:"original_price,omitempty" json:"original_price,omitempty"`
	Category      string   `bson:"category" json:"category"`
	Condition     string   `bson:"condition" json:"condition"`

	// Free-form descriptive fields
	Brand    string `bson:"brand,omitempty" json:"brand,omitempty"`
	Color    string `bson:"color,omitempty" json:"color,omitempty"`
	Size     string `bson:"size,omitempty" json:"size,omitempty"`
	Material string `bson:"material,omitempty" json:"material,omitempty"`

	Images      []string `bson:"images" json:"images"`
	IsAvailable bool     `bson:"is_available" json:"is_available"`
	Views       int      `bson:"views" json:"views"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DiscountPercentage is 0 when no original price is set, otherwise the
// rounded percentage discount relative to the original price.
func (p *Product) DiscountPercentage() int {
	if p.OriginalPrice == nil || *p.OriginalPrice <= 0 {
		return 0
	}
	return int(math.Round((*p.OriginalPrice - p.Price) / *p.OriginalPrice * 100))
}

// ProductSummary is the subset embedded in offer responses.
type ProductSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Title string             `json:"title"`
	Price float64            `json:"price"`
	Image string             `json:"image,omitempty"`
}

func (p *Product) Summary() ProductSummary {
	s := ProductSummary{ID: p.ID, Title: p.Title, Price: p.Price}
	if len(p.Images) > 0 {
		s.Image = p.Images[0]
	}
	return s
}

// Listing sort keys.
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
)

// ProductQuery captures the catalog listing parameters. Filters combine with
// logical AND; Search switches ordering to text-score ranking.
type ProductQuery struct {
	Category  string
	Condition string
	SellerID  *primitive.ObjectID
	PriceMin  *float64
	PriceMax  *float64
	Search    string
	Sort      string
	Page      int
	Limit     int
}

// Normalize applies the documented pagination and sort defaults.
func (q *ProductQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 12
	}
	if q.Sort == "" {
		q.Sort = SortNewest
	}
}

// Filter builds the Mongo filter document.
func (q *ProductQuery) Filter() bson.M {
	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Condition != "" {
		filter["condition"] = q.Condition
	}
	if q.SellerID != nil {
		filter["seller_id"] = *q.SellerID
	}
	if q.PriceMin != nil || q.PriceMax != nil {
		price := bson.M{}
		if q.PriceMin != nil {
			price["$gte"] = *q.PriceMin
		}
		if q.PriceMax != nil {
			price["$lte"] = *q.PriceMax
		}
		filter["price"] = price
	}
	if q.Search != "" {
		filter["$text"] = bson.M{"$search": q.Search}
	}
	return filter
}

// SortSpec maps the sort key to a Mongo sort document. Text searches rank by
// the store's text score instead.
func (q *ProductQuery) SortSpec() bson.D {
	if q.Search != "" {
		return bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}}
	}
	switch q.Sort {
	case SortOldest:
		return bson.D{{Key: "created_at", Value: 1}}
	case SortPriceLow:
		return bson.D{{Key: "price", Value: 1}}
	case SortPriceHigh:
		return bson.D{{Key: "price", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

// Skip is the number of documents to skip for the requested page.
func (q *ProductQuery) Skip() int64 {
	return int64(q.Page-1) * int64(q.Limit)
}

// Pages computes the total page count for a match count.
func (q *ProductQuery) Pages(total int64) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(q.Limit) - 1) / int64(q.Limit))
}
