package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ravindrauiet/relove-backend/middleware"
	"github.com/ravindrauiet/relove-backend/models"
)

type UserHandler struct {
	DB *mongo.Database
}

func NewUserHandler(db *mongo.Database) *UserHandler {
	return &UserHandler{DB: db}
}

func (h *UserHandler) users() *mongo.Collection {
	return h.DB.Collection("users")
}

func (h *UserHandler) products() *mongo.Collection {
	return h.DB.Collection("products")
}

// saveUser persists the whole user record, the way every cart and favorites
// mutation does. Concurrent mutations on the same record can lose updates.
func (h *UserHandler) saveUser(c *fiber.Ctx, user *models.User) error {
	user.UpdatedAt = time.Now()
	if _, err := h.users().ReplaceOne(c.Context(), bson.M{"_id": user.ID}, user); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not save user")
	}
	return nil
}

func (h *UserHandler) productExists(c *fiber.Ctx, id primitive.ObjectID) error {
	err := h.products().FindOne(c.Context(), bson.M{"_id": id}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch product")
	}
	return nil
}

// GetProfile - GET /api/users/profile
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": middleware.CurrentUser(c)})
}

// UpdateProfileRequest carries the mutable profile fields
type UpdateProfileRequest struct {
	Name           *string         `json:"name"`
	ProfilePicture *string         `json:"profile_picture"`
	Address        *models.Address `json:"address"`
}

// UpdateProfile - PUT /api/users/profile
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}

	if req.Name != nil {
		if *req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
		}
		user.Name = *req.Name
	}
	if req.ProfilePicture != nil {
		user.ProfilePicture = *req.ProfilePicture
	}
	if req.Address != nil {
		user.Address = *req.Address
	}

	if err := h.saveUser(c, user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Profile updated", "user": user})
}

// cartEntry joins a cart item with its live product.
type cartEntry struct {
	Product  productView `json:"product"`
	Quantity int         `json:"quantity"`
	Subtotal float64     `json:"subtotal"`
}

// GetCart - GET /api/users/cart
// The total multiplies each entry's live product price by its quantity, so
// price changes after adding are reflected immediately. Entries whose
// product has been deleted are skipped.
func (h *UserHandler) GetCart(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	entries := make([]cartEntry, 0, len(user.Cart))
	var total float64
	for _, item := range user.Cart {
		var product models.Product
		err := h.products().FindOne(c.Context(), bson.M{"_id": item.ProductID}).Decode(&product)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch cart")
		}
		subtotal := product.Price * float64(item.Quantity)
		entries = append(entries, cartEntry{
			Product:  newProductView(product),
			Quantity: item.Quantity,
			Subtotal: subtotal,
		})
		total += subtotal
	}

	return c.JSON(fiber.Map{"items": entries, "total": total})
}

// CartItemRequest defines the payload for cart mutations
type CartItemRequest struct {
	Quantity int `json:"quantity"`
}

// AddToCart - POST /api/users/cart/:productId
func (h *UserHandler) AddToCart(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	productID, err := primitive.ObjectIDFromHex(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
	}

	// The body is optional; an empty body means quantity 1. A present but
	// malformed body is still a validation failure.
	var req CartItemRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
		}
	}

	if err := h.productExists(c, productID); err != nil {
		return err
	}

	user.AddToCart(productID, req.Quantity)
	if err := h.saveUser(c, user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Added to cart", "cart": user.Cart})
}

// UpdateCartItem - PUT /api/users/cart/:productId
func (h *UserHandler) UpdateCartItem(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	productID, err := primitive.ObjectIDFromHex(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
	}

	var req CartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}

	if err := user.UpdateCartItem(productID, req.Quantity); err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Product not in cart")
	}
	if err := h.saveUser(c, user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Cart updated", "cart": user.Cart})
}

// RemoveFromCart - DELETE /api/users/cart/:productId
func (h *UserHandler) RemoveFromCart(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	productID, err := primitive.ObjectIDFromHex(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
	}

	user.RemoveFromCart(productID)
	if err := h.saveUser(c, user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Removed from cart", "cart": user.Cart})
}

// ClearCart - DELETE /api/users/cart
func (h *UserHandler) ClearCart(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	user.ClearCart()
	if err := h.saveUser(c, user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Cart cleared", "cart": user.Cart})
}

// GetFavorites - GET /api/users/favorites
func (h *UserHandler) GetFavorites(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	if len(user.Favorites) == 0 {
		return c.JSON(fiber.Map{"favorites": []productView{}})
	}

	cursor, err := h.products().Find(c.Context(), bson.M{"_id": bson.M{"$in": user.Favorites}})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch favorites")
	}
	var list []models.Product
	if err := cursor.All(c.Context(), &list); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch favorites")
	}

	views := make([]productView, 0, len(list))
	for _, p := range list {
		views = append(views, newProductView(p))
	}
	return c.JSON(fiber.Map{"favorites": views})
}

// AddFavorite - POST /api/users/favorites/:productId
func (h *UserHandler) AddFavorite(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	productID, err := primitive.ObjectIDFromHex(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
	}
	if err := h.productExists(c, productID); err != nil {
		return err
	}

	user.AddFavorite(productID)
	if err := h.saveUser(c, user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Added to favorites", "favorites": user.Favorites})
}

// RemoveFavorite - DELETE /api/users/favorites/:productId
func (h *UserHandler) RemoveFavorite(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	productID, err := primitive.ObjectIDFromHex(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
	}

	user.RemoveFavorite(productID)
	if err := h.saveUser(c, user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Removed from favorites", "favorites": user.Favorites})
}

// ListUsers - GET /api/users (admin only)
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	cursor, err := h.users().Find(c.Context(), bson.M{})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch users")
	}
	var list []models.User
	if err := cursor.All(c.Context(), &list); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch users")
	}
	return c.JSON(fiber.Map{"users": list})
}

// DeleteUser - DELETE /api/users/:id (admin only)
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid user id")
	}

	res, err := h.users().DeleteOne(c.Context(), bson.M{"_id": id})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not delete user")
	}
	if res.DeletedCount == 0 {
		return fiber.NewError(fiber.StatusNotFound, "User not found")
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}
