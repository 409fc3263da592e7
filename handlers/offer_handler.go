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

	"github.com/ravindrauiet/relove-backend/config"
	"github.com/ravindrauiet/relove-backend/middleware"
	"github.com/ravindrauiet/relove-backend/models"
)

type OfferHandler struct {
	DB  *mongo.Database
	Cfg *config.Config
}

func NewOfferHandler(db *mongo.Database, cfg *config.Config) *OfferHandler {
	return &OfferHandler{DB: db, Cfg: cfg}
}

func (h *OfferHandler) offers() *mongo.Collection {
	return h.DB.Collection("offers")
}

// CreateOfferRequest defines the payload for submitting an offer
type CreateOfferRequest struct {
	Price   float64 `json:"price"`
	Message string  `json:"message"`
}

// OfferActionRequest defines the payload for offer transitions. Both the
// camelCase and snake_case field spellings are accepted.
type OfferActionRequest struct {
	Action         string  `json:"action"`
	CounterPrice   float64 `json:"counterPrice"`
	CounterMessage string  `json:"counterMessage"`

	CounterPriceAlt   float64 `json:"counter_price"`
	CounterMessageAlt string  `json:"counter_message"`
}

// counter resolves the counter price and message across both spellings.
func (r *OfferActionRequest) counter() (float64, string) {
	price, message := r.CounterPrice, r.CounterMessage
	if price == 0 {
		price = r.CounterPriceAlt
	}
	if message == "" {
		message = r.CounterMessageAlt
	}
	return price, message
}

// errDuplicatePendingOffer surfaces the partial unique index on
// (product_id, buyer_id, status=pending).
var errDuplicatePendingOffer = errors.New("pending offer already exists")

// inserter abstracts the single collection write the conditional-insert
// guards rely on.
type inserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// insertOffer creates the offer atomically; a concurrent duplicate pending
// offer loses with a duplicate-key error from the store.
func insertOffer(ctx context.Context, col inserter, offer *models.Offer) error {
	res, err := col.InsertOne(ctx, *offer)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errDuplicatePendingOffer
		}
		return err
	}
	offer.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// CreateOffer - POST /api/products/:productId/offers
// The partial unique index on (product_id, buyer_id, status=pending) makes
// this an atomic conditional insert; a concurrent duplicate loses with a
// duplicate-key error rather than slipping past a pre-check.
func (h *OfferHandler) CreateOffer(c *fiber.Ctx) error {
	buyer := middleware.CurrentUser(c)

	productID, err := primitive.ObjectIDFromHex(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
	}

	var req CreateOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}
	if req.Price < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "Offer price must be at least 1")
	}
	if len(req.Message) > models.MaxOfferMessageLen {
		return fiber.NewError(fiber.StatusBadRequest, "Message must be at most 500 characters")
	}

	var product models.Product
	if err := h.DB.Collection("products").FindOne(c.Context(), bson.M{"_id": productID}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch product")
	}
	if !product.IsAvailable {
		return fiber.NewError(fiber.StatusBadRequest, "Product is not available")
	}
	if product.SellerID == buyer.ID {
		return fiber.NewError(fiber.StatusBadRequest, "You cannot make an offer on your own product")
	}

	now := time.Now()
	ttl := time.Duration(h.Cfg.OfferTTLHours) * time.Hour
	offer := models.NewOffer(&product, buyer.ID, req.Price, req.Message, now, ttl)

	if err := insertOffer(c.Context(), h.offers(), &offer); err != nil {
		if errors.Is(err, errDuplicatePendingOffer) {
			return fiber.NewError(fiber.StatusBadRequest, "You already have a pending offer on this product")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Could not create offer")
	}

	resp, err := h.buildOfferResponse(c.Context(), offer, now)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not load offer details")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Offer submitted", "offer": resp})
}

// GetProductOffers - GET /api/products/:productId/offers (seller only)
func (h *OfferHandler) GetProductOffers(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	productID, err := primitive.ObjectIDFromHex(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
	}

	var product models.Product
	if err := h.DB.Collection("products").FindOne(c.Context(), bson.M{"_id": productID}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch product")
	}
	if product.SellerID != user.ID {
		return fiber.NewError(fiber.StatusForbidden, "Not authorized")
	}

	cursor, err := h.offers().Find(c.Context(),
		bson.M{"product_id": productID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch offers")
	}
	var list []models.Offer
	if err := cursor.All(c.Context(), &list); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch offers")
	}

	now := time.Now()
	responses := make([]models.OfferResponse, 0, len(list))
	for _, offer := range list {
		resp, err := h.buildOfferResponse(c.Context(), offer, now)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load offer details")
		}
		responses = append(responses, resp)
	}
	return c.JSON(fiber.Map{"offers": responses})
}

// MyOffers - GET /api/offers/my-offers (buyer's submitted offers)
func (h *OfferHandler) MyOffers(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	cursor, err := h.offers().Find(c.Context(),
		bson.M{"buyer_id": user.ID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch offers")
	}
	var list []models.Offer
	if err := cursor.All(c.Context(), &list); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch offers")
	}

	now := time.Now()
	responses := make([]models.OfferResponse, 0, len(list))
	for _, offer := range list {
		resp, err := h.buildOfferResponse(c.Context(), offer, now)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load offer details")
		}
		responses = append(responses, resp)
	}
	return c.JSON(fiber.Map{"offers": responses})
}

// RespondToOffer - PUT /api/offers/:offerId (seller: accept, reject, counter)
func (h *OfferHandler) RespondToOffer(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	offer, err := h.loadOffer(c)
	if err != nil {
		return err
	}
	if offer.SellerID != user.ID {
		return fiber.NewError(fiber.StatusForbidden, "Not authorized")
	}

	var req OfferActionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}

	now := time.Now()
	counterPrice, counterMessage := req.counter()
	if err := offer.ApplySellerAction(req.Action, counterPrice, counterMessage, now); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return h.persistTransition(c, offer, now)
}

// RespondToCounter - PUT /api/offers/:offerId/counter-response (buyer)
func (h *OfferHandler) RespondToCounter(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	offer, err := h.loadOffer(c)
	if err != nil {
		return err
	}
	if offer.BuyerID != user.ID {
		return fiber.NewError(fiber.StatusForbidden, "Not authorized")
	}

	var req OfferActionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}

	now := time.Now()
	if err := offer.ApplyBuyerResponse(req.Action, now); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return h.persistTransition(c, offer, now)
}

func (h *OfferHandler) loadOffer(c *fiber.Ctx) (*models.Offer, error) {
	offerID, err := primitive.ObjectIDFromHex(c.Params("offerId"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid offer id")
	}

	var offer models.Offer
	if err := h.offers().FindOne(c.Context(), bson.M{"_id": offerID}).Decode(&offer); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Offer not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not fetch offer")
	}
	return &offer, nil
}

func (h *OfferHandler) persistTransition(c *fiber.Ctx, offer *models.Offer, now time.Time) error {
	update := bson.M{
		"status":     offer.Status,
		"updated_at": offer.UpdatedAt,
	}
	if offer.CounterOffer != nil {
		update["counter_offer"] = offer.CounterOffer
	}
	if _, err := h.offers().UpdateOne(c.Context(), bson.M{"_id": offer.ID}, bson.M{"$set": update}); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not update offer")
	}

	resp, err := h.buildOfferResponse(c.Context(), *offer, now)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not load offer details")
	}
	return c.JSON(fiber.Map{"message": "Offer updated", "offer": resp})
}

// buildOfferResponse joins the offer with a product summary and both party
// identities. Deleted counterparts are tolerated; their summaries stay nil.
func (h *OfferHandler) buildOfferResponse(ctx context.Context, offer models.Offer, now time.Time) (models.OfferResponse, error) {
	resp := models.NewOfferResponse(offer, now)

	var product models.Product
	err := h.DB.Collection("products").FindOne(ctx, bson.M{"_id": offer.ProductID}).Decode(&product)
	if err == nil {
		summary := product.Summary()
		resp.Product = &summary
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return resp, err
	}

	users := h.DB.Collection("users")
	var buyer models.User
	if err := users.FindOne(ctx, bson.M{"_id": offer.BuyerID}).Decode(&buyer); err == nil {
		summary := buyer.Summary()
		resp.Buyer = &summary
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return resp, err
	}

	var seller models.User
	if err := users.FindOne(ctx, bson.M{"_id": offer.SellerID}).Decode(&seller); err == nil {
		summary := seller.Summary()
		resp.Seller = &summary
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return resp, err
	}

	return resp, nil
}
