package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/auth"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/authority"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/blob"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/config"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/directory"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/middleware"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/profile"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/session"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/user"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
	Syncer *directory.Syncer
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories
	var userRepo user.Repository
	if d.DB != nil {
		userRepo = user.NewPostgresRepository(d.DB)
	} else {
		userRepo = user.NewMemoryRepository()
	}

	// Device wallet
	var cipher wallet.Cipher
	if d.Cfg.WalletStoreSecret != "" {
		cipher = wallet.NewSecretBoxCipher(d.Cfg.WalletStoreSecret)
	}
	keystore := wallet.NewKeystore(wallet.NewFileStore(d.Cfg.WalletStorePath), cipher, d.Logger)

	// Outbound collaborators
	authorityClient := authority.NewClient(d.Cfg.AuthorityBaseURL, d.Cfg.UpstreamTimeout)
	var blobStore blob.Store
	if d.Cfg.BlobBaseURL != "" {
		blobStore = blob.NewHTTPStore(d.Cfg.BlobBaseURL, d.Cfg.BlobToken, d.Cfg.UpstreamTimeout)
	} else {
		blobStore = blob.NewMemoryStore()
	}

	// Services and handlers
	provisioner := auth.NewProvisioner(authorityClient, d.Logger)
	authenticator := auth.NewAuthenticator(authorityClient, d.Logger)
	authHandler := auth.NewHandler(provisioner, authenticator, keystore)

	resolver := session.NewResolver(userRepo)
	profileSvc := profile.NewService(userRepo, blobStore, keystore, d.Syncer, d.Logger)
	profileHandler := profile.NewHandler(profileSvc)

	// API routes
	api := app.Group("/api")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.OTPRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)
	RegisterWalletRoutes(api, keystore)

	// Protected routes
	protected := api.Group("/user", middleware.Session(resolver))
	RegisterUserRoutes(protected, profileHandler)

	return nil
}
