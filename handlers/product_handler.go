package handlers

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ravindrauiet/relove-backend/config"
	"github.com/ravindrauiet/relove-backend/internal/vision"
	"github.com/ravindrauiet/relove-backend/middleware"
	"github.com/ravindrauiet/relove-backend/models"
)

type ProductHandler struct {
	DB  *mongo.Database
	Cfg *config.Config
}

func NewProductHandler(db *mongo.Database, cfg *config.Config) *ProductHandler {
	return &ProductHandler{DB: db, Cfg: cfg}
}

func (h *ProductHandler) products() *mongo.Collection {
	return h.DB.Collection("products")
}

func (h *ProductHandler) users() *mongo.Collection {
	return h.DB.Collection("users")
}

// productView decorates a product with its computed discount percentage.
type productView struct {
	models.Product
	DiscountPercentage int `json:"discount_percentage"`
}

func newProductView(p models.Product) productView {
	return productView{Product: p, DiscountPercentage: p.DiscountPercentage()}
}

// GetCategories - GET /api/categories
func (h *ProductHandler) GetCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"categories": models.Categories,
		"conditions": models.Conditions,
	})
}

// ListProducts - GET /api/products
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	query := models.ProductQuery{
		Category:  c.Query("category"),
		Condition: c.Query("condition"),
		Search:    c.Query("search"),
		Sort:      c.Query("sort"),
		Page:      c.QueryInt("page"),
		Limit:     c.QueryInt("limit"),
	}

	if seller := c.Query("seller"); seller != "" {
		sellerID, err := primitive.ObjectIDFromHex(seller)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid seller id")
		}
		query.SellerID = &sellerID
	}
	if raw := c.Query("priceMin"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid priceMin")
		}
		query.PriceMin = &v
	}
	if raw := c.Query("priceMax"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid priceMax")
		}
		query.PriceMax = &v
	}
	query.Normalize()

	filter := query.Filter()

	total, err := h.products().CountDocuments(c.Context(), filter)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch products")
	}

	opts := options.Find().
		SetSort(query.SortSpec()).
		SetSkip(query.Skip()).
		SetLimit(int64(query.Limit))
	if query.Search != "" {
		opts.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
	}

	cursor, err := h.products().Find(c.Context(), filter, opts)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch products")
	}
	var list []models.Product
	if err := cursor.All(c.Context(), &list); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch products")
	}

	views := make([]productView, 0, len(list))
	for _, p := range list {
		views = append(views, newProductView(p))
	}

	return c.JSON(fiber.Map{
		"products": views,
		"total":    total,
		"page":     query.Page,
		"pages":    query.Pages(total),
	})
}

// GetProduct - GET /api/products/:id
// Increments the view counter as a side effect. The increment is a plain
// read-modify-write; concurrent fetches may lose counts.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
	}

	var product models.Product
	if err := h.products().FindOne(c.Context(), bson.M{"_id": id}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch product")
	}

	product.Views++
	if _, err := h.products().UpdateOne(c.Context(),
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"views": product.Views}},
	); err != nil {
		log.Warn().Err(err).Str("product_id", id.Hex()).Msg("view counter update failed")
	}

	return c.JSON(fiber.Map{"product": newProductView(product)})
}

// CreateProduct - POST /api/products (multipart)
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Title is required")
	}

	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil || price < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Price must be a non-negative number")
	}

	var originalPrice *float64
	if raw := c.FormValue("original_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Original price must be a non-negative number")
		}
		originalPrice = &v
	}

	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Multipart form is required")
	}
	files := form.File["images"]
	if len(files) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "At least one image is required")
	}

	category := c.FormValue("category")
	color := c.FormValue("color")

	// Best-effort attribute guesses from the first image filename. The
	// analysis never overrides caller-supplied values.
	analysis := vision.AnalyzeFilename(files[0].Filename)
	if category == "" {
		category = analysis.Category
	}
	if color == "" {
		color = analysis.Color
	}

	if !models.ValidCategory(category) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid category")
	}
	condition := c.FormValue("condition")
	if !models.ValidCondition(condition) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid condition")
	}

	images := make([]string, 0, len(files))
	for _, file := range files {
		url, err := saveImage(c, h.Cfg.UploadDir, "products", file)
		if err != nil {
			return err
		}
		images = append(images, url)
	}

	now := time.Now()
	product := models.Product{
		SellerID:      user.ID,
		Title:         title,
		Description:   c.FormValue("description"),
		Price:         price,
		OriginalPrice: originalPrice,
		Category:      category,
		Condition:     condition,
		Brand:         c.FormValue("brand"),
		Color:         color,
		Size:          c.FormValue("size"),
		Material:      c.FormValue("material"),
		Images:        images,
		IsAvailable:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	res, err := h.products().InsertOne(c.Context(), product)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not create product")
	}
	product.ID = res.InsertedID.(primitive.ObjectID)

	if _, err := h.users().UpdateOne(c.Context(),
		bson.M{"_id": user.ID},
		bson.M{"$addToSet": bson.M{"listings": product.ID}},
	); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("listing back-reference update failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created",
		"product": newProductView(product),
	})
}

// UpdateProductRequest carries the mutable product fields. Pointers
// distinguish "absent" from zero values.
type UpdateProductRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	OriginalPrice *float64 `json:"original_price"`
	Category      *string  `json:"category"`
	Condition     *string  `json:"condition"`
	Brand         *string  `json:"brand"`
	Color         *string  `json:"color"`
	Size          *string  `json:"size"`
	Material      *string  `json:"material"`
	IsAvailable   *bool    `json:"is_available"`
}

// UpdateProduct - PUT /api/products/:id (owner only)
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
	}

	var product models.Product
	if err := h.products().FindOne(c.Context(), bson.M{"_id": id}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch product")
	}

	if product.SellerID != user.ID {
		return fiber.NewError(fiber.StatusForbidden, "Not authorized")
	}

	var req UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Title is required")
		}
		product.Title = *req.Title
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Price must be a non-negative number")
		}
		product.Price = *req.Price
	}
	if req.OriginalPrice != nil {
		product.OriginalPrice = req.OriginalPrice
	}
	if req.Category != nil {
		if !models.ValidCategory(*req.Category) {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid category")
		}
		product.Category = *req.Category
	}
	if req.Condition != nil {
		if !models.ValidCondition(*req.Condition) {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid condition")
		}
		product.Condition = *req.Condition
	}
	if req.Brand != nil {
		product.Brand = *req.Brand
	}
	if req.Color != nil {
		product.Color = *req.Color
	}
	if req.Size != nil {
		product.Size = *req.Size
	}
	if req.Material != nil {
		product.Material = *req.Material
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}
	product.UpdatedAt = time.Now()

	if _, err := h.products().ReplaceOne(c.Context(), bson.M{"_id": id}, product); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not update product")
	}

	return c.JSON(fiber.Map{"message": "Product updated", "product": newProductView(product)})
}

// DeleteProduct - DELETE /api/products/:id (owner or admin)
// Removes the image files and the seller's listing back-reference. Offers
// and reviews referencing the product are left in place.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
	}

	var product models.Product
	if err := h.products().FindOne(c.Context(), bson.M{"_id": id}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch product")
	}

	if product.SellerID != user.ID && !user.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "Not authorized")
	}

	if _, err := h.products().DeleteOne(c.Context(), bson.M{"_id": id}); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not delete product")
	}

	for _, img := range product.Images {
		rel := strings.TrimPrefix(img, "/uploads/")
		if rel == img {
			continue
		}
		if err := os.Remove(filepath.Join(h.Cfg.UploadDir, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("image", img).Msg("image file removal failed")
		}
	}

	if _, err := h.users().UpdateOne(c.Context(),
		bson.M{"_id": product.SellerID},
		bson.M{"$pull": bson.M{"listings": id}},
	); err != nil {
		log.Warn().Err(err).Str("user_id", product.SellerID.Hex()).Msg("listing back-reference removal failed")
	}

	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// MyProducts - GET /api/products/my-products
func (h *ProductHandler) MyProducts(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	cursor, err := h.products().Find(c.Context(),
		bson.M{"seller_id": user.ID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch products")
	}
	var list []models.Product
	if err := cursor.All(c.Context(), &list); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch products")
	}

	views := make([]productView, 0, len(list))
	for _, p := range list {
		views = append(views, newProductView(p))
	}
	return c.JSON(fiber.Map{"products": views})
}
