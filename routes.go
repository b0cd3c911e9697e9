package marketplace

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/goliatone/go-router"
)

// APIPrefix is the mount point of every route
const APIPrefix = "/api"

// Handlers groups the controllers mounted by RegisterRoutes
type Handlers struct {
	Gate      *AccessGate
	Auth      *AuthController
	Templates *TemplatesController
	Purchases *PurchasesController
	Stats     *StatsController
}

// RegisterRoutes mounts the API. Each protected route declares its
// capability here and nowhere else.
func RegisterRoutes[T any](r router.Router[T], h Handlers) {
	api := r.Group(APIPrefix)

	api.Get("/health", Health)

	none := h.Gate.Require(CapabilityNone)
	session := h.Gate.Require(CapabilitySession)
	user := h.Gate.Require(CapabilityAuthenticated)
	admin := h.Gate.Require(CapabilityAdmin)

	api.Post(h.Auth.Routes.Register, h.Auth.Register)
	api.Post(h.Auth.Routes.Login, h.Auth.Login)
	api.Get(h.Auth.Routes.Me, h.Auth.Me, session)
	api.Post(h.Auth.Routes.Logout, h.Auth.Logout, none)

	api.Get("/templates", h.Templates.List)
	api.Post("/templates", h.Templates.Create, admin)
	api.Get("/templates/:id", h.Templates.Show)
	api.Put("/templates/:id", h.Templates.Update, admin)
	api.Delete("/templates/:id", h.Templates.Delete, admin)

	api.Get("/purchases", h.Purchases.List, user)
	api.Post("/purchases", h.Purchases.Create, user)

	api.Get("/stats", h.Stats.Show, admin)
}

// Health reports liveness
func Health(c router.Context) error {
	return c.JSON(fiber.StatusOK, fiber.Map{"ok": true})
}

// AppOptions configures NewApp
type AppOptions struct {
	Logger       Logger
	CORSOrigin   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewApp creates the fiber backed server with the JSON error handler, panic
// recovery, request logging and CORS for the front-end origin
func NewApp(opts AppOptions) router.Server[*fiber.App] {
	return router.NewFiberAdapter(func(*fiber.App) *fiber.App {
		return newFiberApp(opts)
	})
}

func newFiberApp(opts AppOptions) *fiber.App {
	logger := normalizeLogger(opts.Logger)

	app := fiber.New(fiber.Config{
		AppName:               "marketplace",
		ErrorHandler:          NewErrorHandler(logger),
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(RequestLogger(logger))

	origin := strings.TrimSpace(opts.CORSOrigin)
	if origin != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     origin,
			AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders:     "Origin, Content-Type, Accept",
			AllowCredentials: origin != "*",
		}))
	}

	return app
}
