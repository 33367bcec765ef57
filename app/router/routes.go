// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/app/handlers"
	"github.com/amirphl/leadboard/app/middleware"
	"github.com/amirphl/leadboard/config"
	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/utils"
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const healthPath = "/api/v1/health"

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers bundles every HTTP handler the router mounts. Realtime may be nil.
type Handlers struct {
	Category handlers.CategoryHandlerInterface
	Lead     handlers.LeadHandlerInterface
	Video    handlers.VideoHandlerInterface
	UserLog  handlers.UserLogHandlerInterface
	UserRole handlers.UserRoleHandlerInterface
	Auth     handlers.AuthHandlerInterface
	MFA      handlers.MFAHandlerInterface
	Sales    handlers.SalesHandlerInterface
	Realtime *handlers.RealtimeHandler
	Health   *handlers.HealthHandler
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app       *fiber.App
	cfg       *config.Config
	handlers  Handlers
	auth      *middleware.AuthMiddleware
	accessLog io.Writer
}

// NewFiberRouter creates a new Fiber router; access lines go to accessLog (stdout when nil)
func NewFiberRouter(cfg *config.Config, h Handlers, auth *middleware.AuthMiddleware, accessLog io.Writer) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Leadboard API",
		ServerHeader: "Leadboard",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	if accessLog == nil {
		accessLog = os.Stdout
	}

	return &FiberRouter{
		app:       app,
		cfg:       cfg,
		handlers:  h,
		auth:      auth,
		accessLog: accessLog,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	logrus.Info("setting up routes")

	r.setupMiddleware()

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, middleware.MetricsHandler())
	}

	api := r.app.Group("/api/v1")

	// Health check route (no auth, no rate limiting)
	api.Get("/health", r.handlers.Health.Health)

	api.Use(r.rateLimiter(r.cfg.Security.GlobalRateLimit, func(c fiber.Ctx) bool {
		return c.Path() == healthPath
	}))

	// Token rotation runs before the access token check since the access token may have expired
	auth := api.Group("/auth", r.rateLimiter(r.cfg.Security.AuthRateLimit, nil))
	auth.Post("/refresh", r.handlers.Auth.Refresh)
	auth.Post("/logout", r.auth.Authenticate(), r.handlers.Auth.Logout)

	if r.handlers.Realtime != nil {
		api.Get("/realtime/stream", r.auth.AuthenticateStream(), r.handlers.Realtime.Stream)
	}

	protected := api.Group("", r.auth.Authenticate())
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	protected.Get("/categories", r.handlers.Category.List)
	protected.Post("/categories", r.handlers.Category.Create)
	protected.Delete("/categories/:id", r.handlers.Category.Delete)
	protected.Get("/chart/categories", r.handlers.Category.Chart)

	protected.Get("/leads", r.handlers.Lead.List)
	protected.Post("/leads", r.handlers.Lead.Create)
	protected.Post("/leads/create-with-twitter", r.handlers.Lead.CreateFromTwitter)
	protected.Post("/leads/sync", r.handlers.Lead.Sync)
	protected.Patch("/leads/:id", r.handlers.Lead.Update)
	protected.Delete("/leads/:id", r.handlers.Lead.Delete)
	protected.Post("/generate-data", adminOnly, r.handlers.Lead.GenerateData)

	protected.Get("/videos", r.handlers.Video.List)
	protected.Post("/videos", r.handlers.Video.Upload)
	protected.Get("/videos/setup", adminOnly, r.handlers.Video.Setup)
	protected.Get("/videos/download", r.handlers.Video.Download)
	protected.Patch("/videos/:id", r.handlers.Video.Update)
	protected.Delete("/videos/:id", r.handlers.Video.Delete)

	protected.Get("/user-logs", r.handlers.UserLog.List)
	protected.Post("/user-logs", r.handlers.UserLog.Create)

	protected.Get("/user_roles/:id", r.handlers.UserRole.Get)
	protected.Put("/user_roles/:id", adminOnly, middleware.RequireAAL2(), r.handlers.UserRole.Update)

	mfa := protected.Group("/mfa", r.rateLimiter(r.cfg.Security.AuthRateLimit, nil))
	mfa.Post("/enroll", r.handlers.MFA.Enroll)
	mfa.Post("/challenge", r.handlers.MFA.Challenge)
	mfa.Post("/verify", r.handlers.MFA.Verify)
	mfa.Post("/recover", r.handlers.MFA.Recover)
	mfa.Get("/factors", r.handlers.MFA.Factors)
	mfa.Delete("/factors/:id", middleware.RequireAAL2(), r.handlers.MFA.Unenroll)
	mfa.Get("/aal", r.handlers.MFA.AAL)

	sales := protected.Group("/sales-records")
	sales.Get("", r.handlers.Sales.List)
	sales.Get("/lookups", r.handlers.Sales.Lookups)
	sales.Get("/export", r.handlers.Sales.Export)
	sales.Post("", r.handlers.Sales.Create)
	sales.Post("/bulk-delete", r.handlers.Sales.BulkDelete)
	sales.Patch("/:id", r.handlers.Sales.Update)
	sales.Delete("/:id", r.handlers.Sales.Delete)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	logrus.Info("routes configured")
}

func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: uuid.NewString,
	}))

	// Recovery sits right after the request id so panics anywhere below are caught
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			logrus.WithFields(logrus.Fields{
				"request_id": requestid.FromContext(c),
				"event":      "panic",
				"path":       c.Path(),
				"method":     c.Method(),
				"ip":         c.IP(),
			}).Errorf("%v", e)
			sentry.CurrentHub().Recover(e)
		},
	}))

	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics())
	}

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000, // 1 year
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginResourcePolicy: "cross-origin",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	// Browsers reject credentialed requests to a wildcard origin
	allowCredentials := r.cfg.Security.AllowCredentials && !slices.Contains(r.cfg.Security.AllowedOrigins, "*")
	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     r.cfg.Security.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Request-ID", "Cache-Control"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: allowCredentials,
		MaxAge:           utils.CORSMaxAge,
	}))

	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
			Next: func(c fiber.Ctx) bool {
				// Streams and media are sent as-is
				return strings.HasSuffix(c.Path(), "/realtime/stream") ||
					strings.HasSuffix(c.Path(), "/videos/download") ||
					strings.HasPrefix(c.Get(fiber.HeaderContentType), "multipart/")
			},
		}))
	}

	if r.cfg.Logging.AccessLog {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Stream:     r.accessLog,
			Next: func(c fiber.Ctx) bool {
				return c.Path() == healthPath
			},
		}))
	}
}

func (r *FiberRouter) rateLimiter(max int, next func(c fiber.Ctx) bool) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: "Too many requests. Please try again later.",
				Code:  "RATE_LIMIT_EXCEEDED",
			})
		},
		Next: next,
	})
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	logrus.WithField("address", address).Info("starting server")
	return r.app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true})
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
		Error: "The requested resource was not found",
		Code:  "NOT_FOUND",
		Details: fiber.Map{
			"path":       c.Path(),
			"method":     c.Method(),
			"request_id": requestid.FromContext(c),
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal server error occurred"
	errorCode := "INTERNAL_ERROR"

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
		errorCode = strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_"))
	}

	entry := logrus.WithFields(logrus.Fields{
		"status":     code,
		"request_id": requestid.FromContext(c),
		"path":       c.Path(),
	}).WithError(err)
	if code >= fiber.StatusInternalServerError {
		entry.Error("request failed")
		sentry.CaptureException(fmt.Errorf("%s %s: %w", c.Method(), c.Path(), err))
	} else {
		entry.Debug("request rejected")
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error: message,
		Code:  errorCode,
		Details: fiber.Map{
			"timestamp":  utils.UTCNow().Unix(),
			"request_id": requestid.FromContext(c),
		},
	})
}
