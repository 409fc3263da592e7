package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ravindrauiet/relove-backend/config"
	"github.com/ravindrauiet/relove-backend/models"
	"github.com/ravindrauiet/relove-backend/utils"
)

// Locals keys set by the identity bridge.
const (
	LocalsUser   = "user"
	LocalsClaims = "claims"
)

// Auth bridges externally-issued identity tokens to local user records.
type Auth struct {
	users *mongo.Collection
	cfg   *config.Config
}

func NewAuth(db *mongo.Database, cfg *config.Config) *Auth {
	return &Auth{users: db.Collection("users"), cfg: cfg}
}

// Protected verifies the bearer credential, resolves the local user record
// (creating it on first sight) and attaches both to the request context.
// All credential failures surface as a uniform 401.
func (a *Auth) Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "No token provided")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Token format is invalid")
		}

		claims, err := utils.VerifyProviderToken(tokenString, a.cfg.AuthJWTSecret, a.cfg.AuthIssuer)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Token is invalid")
		}

		user, err := a.ResolveIdentity(c.Context(), claims)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not resolve user")
		}

		c.Locals(LocalsUser, user)
		c.Locals(LocalsClaims, claims)
		return c.Next()
	}
}

// AdminOnly gates a route to local users with the admin role. Must run after
// Protected.
func (a *Auth) AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "No token provided")
		}
		if !user.IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "Admin access required")
		}
		return c.Next()
	}
}

// CurrentUser returns the local user attached by Protected, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(LocalsUser).(*models.User)
	return user
}

// ResolveIdentity looks up the local user for verified claims, creating the
// record on first sight. The email's local part becomes the default display
// name; the configured admin email is promoted at creation time. Losing the
// create race against a concurrent first request re-fetches the winner.
func (a *Auth) ResolveIdentity(ctx context.Context, claims *utils.IdentityClaims) (*models.User, error) {
	var user models.User
	err := a.users.FindOne(ctx, bson.M{"auth_provider_id": claims.Subject}).Decode(&user)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	name := claims.Name
	if name == "" {
		name = utils.NameFromEmail(claims.Email)
	}
	role := models.RoleUser
	if a.cfg.AdminEmail != "" && strings.EqualFold(claims.Email, a.cfg.AdminEmail) {
		role = models.RoleAdmin
	}

	now := time.Now()
	user = models.User{
		AuthProviderID: claims.Subject,
		Email:          claims.Email,
		Name:           name,
		Role:           role,
		Cart:           []models.CartItem{},
		Favorites:      []primitive.ObjectID{},
		Listings:       []primitive.ObjectID{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	res, err := a.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if err := a.users.FindOne(ctx, bson.M{"auth_provider_id": claims.Subject}).Decode(&user); err != nil {
				return nil, err
			}
			return &user, nil
		}
		return nil, err
	}

	user.ID = res.InsertedID.(primitive.ObjectID)
	return &user, nil
}
