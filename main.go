package main

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ravindrauiet/relove-backend/config"
	"github.com/ravindrauiet/relove-backend/handlers"
	"github.com/ravindrauiet/relove-backend/internal/logger"
	"github.com/ravindrauiet/relove-backend/middleware"
)

func main() {
	log := logger.Init()
	cfg := config.LoadConfig()

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := config.EnsureIndexes(db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	for _, dir := range []string{"products", "avatars"} {
		if err := os.MkdirAll(filepath.Join(cfg.UploadDir, dir), 0o755); err != nil {
			log.Fatal().Err(err).Msg("upload directory creation failed")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "Relove Backend",
		ServerHeader: "Relove Backend Server/1.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Default 500 statuscode
			code := fiber.StatusInternalServerError
			msg := "Internal Server Error"

			// Retrieve the custom statuscode if it's a *fiber.Error
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}

			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": msg,
			})
		},
	})

	middleware.SetupMiddleware(app)

	// Uploaded images are served from a public static path
	app.Static("/uploads", cfg.UploadDir)

	// Health Check Endpoint - liveness only, no dependency checks
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "success",
			"message": "API is healthy",
		})
	})

	setupRoutes(app, db, cfg)

	log.Info().Str("host", cfg.HOST).Str("port", cfg.AppPort).Msg("server starting")

	if err := app.Listen(cfg.HOST + ":" + cfg.AppPort); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func setupRoutes(app *fiber.App, db *mongo.Database, cfg *config.Config) {
	auth := middleware.NewAuth(db, cfg)

	authHandler := handlers.NewAuthHandler(auth, cfg)
	productHandler := handlers.NewProductHandler(db, cfg)
	offerHandler := handlers.NewOfferHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	reviewHandler := handlers.NewReviewHandler(db)
	uploadHandler := handlers.NewUploadHandler(cfg)

	api := app.Group("/api")

	// Auth
	api.Post("/auth/verify-token", authHandler.VerifyToken)
	api.Get("/auth/me", auth.Protected(), authHandler.Me)

	// Catalog
	api.Get("/categories", productHandler.GetCategories)
	api.Get("/products", productHandler.ListProducts)
	api.Get("/products/my-products", auth.Protected(), productHandler.MyProducts)
	api.Get("/products/:id", productHandler.GetProduct)
	api.Post("/products", auth.Protected(), productHandler.CreateProduct)
	api.Put("/products/:id", auth.Protected(), productHandler.UpdateProduct)
	api.Delete("/products/:id", auth.Protected(), productHandler.DeleteProduct)

	// Offers
	api.Post("/products/:productId/offers", auth.Protected(), offerHandler.CreateOffer)
	api.Get("/products/:productId/offers", auth.Protected(), offerHandler.GetProductOffers)
	api.Get("/offers/my-offers", auth.Protected(), offerHandler.MyOffers)
	api.Put("/offers/:offerId", auth.Protected(), offerHandler.RespondToOffer)
	api.Put("/offers/:offerId/counter-response", auth.Protected(), offerHandler.RespondToCounter)

	// Reviews
	api.Post("/products/:productId/reviews", auth.Protected(), reviewHandler.CreateReview)
	api.Get("/products/:productId/reviews", reviewHandler.GetProductReviews)
	api.Delete("/reviews/:id", auth.Protected(), reviewHandler.DeleteReview)

	// User aggregate
	users := api.Group("/users", auth.Protected())
	users.Get("/profile", userHandler.GetProfile)
	users.Put("/profile", userHandler.UpdateProfile)
	users.Get("/cart", userHandler.GetCart)
	users.Post("/cart/:productId", userHandler.AddToCart)
	users.Put("/cart/:productId", userHandler.UpdateCartItem)
	users.Delete("/cart/:productId", userHandler.RemoveFromCart)
	users.Delete("/cart", userHandler.ClearCart)
	users.Get("/favorites", userHandler.GetFavorites)
	users.Post("/favorites/:productId", userHandler.AddFavorite)
	users.Delete("/favorites/:productId", userHandler.RemoveFavorite)

	// Uploads
	api.Post("/upload/avatar", auth.Protected(), uploadHandler.UploadProfilePicture)

	// Admin. Registered after the /users group so the static cart and
	// favorites paths win over :id.
	api.Get("/users", auth.Protected(), auth.AdminOnly(), userHandler.ListUsers)
	api.Delete("/users/:id", auth.Protected(), auth.AdminOnly(), userHandler.DeleteUser)
}
