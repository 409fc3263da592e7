package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ravindrauiet/relove-backend/middleware"
	"github.com/ravindrauiet/relove-backend/models"
)

type ReviewHandler struct {
	DB *mongo.Database
}

func NewReviewHandler(db *mongo.Database) *ReviewHandler {
	return &ReviewHandler{DB: db}
}

func (h *ReviewHandler) reviews() *mongo.Collection {
	return h.DB.Collection("reviews")
}

// errDuplicateReview surfaces the compound unique index on
// (product_id, user_id).
var errDuplicateReview = errors.New("review already exists")

// insertReview creates the review atomically; a second review for the same
// (product, user) pair loses with a duplicate-key error and never overwrites
// the first.
func insertReview(ctx context.Context, col inserter, review *models.Review) error {
	res, err := col.InsertOne(ctx, *review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errDuplicateReview
		}
		return err
	}
	review.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// CreateReviewRequest defines the payload for submitting a review
type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

// CreateReview - POST /api/products/:productId/reviews
// The compound unique index on (product_id, user_id) rejects a second review
// for the same pair; it never overwrites.
func (h *ReviewHandler) CreateReview(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	productID, err := primitive.ObjectIDFromHex(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
	}

	var req CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}

	if err := h.DB.Collection("products").FindOne(c.Context(), bson.M{"_id": productID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch product")
	}

	now := time.Now()
	review := models.Review{
		ProductID: productID,
		UserID:    user.ID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := review.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := insertReview(c.Context(), h.reviews(), &review); err != nil {
		if errors.Is(err, errDuplicateReview) {
			return fiber.NewError(fiber.StatusBadRequest, "You have already reviewed this product")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Could not create review")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Review created", "review": review})
}

// reviewView joins a review with its author's public identity.
type reviewView struct {
	models.Review
	User *models.UserSummary `json:"user,omitempty"`
}

// GetProductReviews - GET /api/products/:productId/reviews
func (h *ReviewHandler) GetProductReviews(c *fiber.Ctx) error {
	productID, err := primitive.ObjectIDFromHex(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
	}

	cursor, err := h.reviews().Find(c.Context(),
		bson.M{"product_id": productID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch reviews")
	}
	var list []models.Review
	if err := cursor.All(c.Context(), &list); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch reviews")
	}

	users := h.DB.Collection("users")
	views := make([]reviewView, 0, len(list))
	for _, review := range list {
		view := reviewView{Review: review}
		var author models.User
		if err := users.FindOne(c.Context(), bson.M{"_id": review.UserID}).Decode(&author); err == nil {
			summary := author.Summary()
			view.User = &summary
		}
		views = append(views, view)
	}

	return c.JSON(fiber.Map{
		"reviews": views,
		"summary": models.Summarize(list),
	})
}

// DeleteReview - DELETE /api/reviews/:id (author or admin)
func (h *ReviewHandler) DeleteReview(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid review id")
	}

	var review models.Review
	if err := h.reviews().FindOne(c.Context(), bson.M{"_id": id}).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusNotFound, "Review not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch review")
	}

	if review.UserID != user.ID && !user.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "Not authorized")
	}

	if _, err := h.reviews().DeleteOne(c.Context(), bson.M{"_id": id}); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not delete review")
	}
	return c.JSON(fiber.Map{"message": "Review deleted"})
}
