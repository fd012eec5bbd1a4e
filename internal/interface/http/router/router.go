package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-backend/internal/user"
)

// PublicRoutes is implemented by handlers that serve anonymous requests.
type PublicRoutes interface {
	RegisterPublicRoutes(app *fiber.App)
}

// ProtectedRoutes is implemented by handlers that need a user identity.
type ProtectedRoutes interface {
	RegisterProtectedRoutes(app *fiber.App)
}

type Options struct {
	JWTSecret    string
	AllowOrigins string
	Logger       logrus.FieldLogger
	// Ready reports whether backing stores are reachable. Nil means always
	// ready.
	Ready func(ctx context.Context) error
	// Identity replaces JWT verification when set.
	Identity fiber.Handler
}

// New builds the fiber app. Public routes are registered ahead of the JWT
// middleware so they are served without a token; everything registered after
// it requires one.
func New(opts Options, public []PublicRoutes, protected []ProtectedRoutes) *fiber.App {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	origins := opts.AllowOrigins
	if origins == "" {
		origins = "*"
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(requestLogger(log))

	app.Get("/health", health(opts.Ready))
	for _, h := range public {
		h.RegisterPublicRoutes(app)
	}

	if opts.Identity != nil {
		app.Use(opts.Identity)
	} else {
		app.Use(jwtware.New(jwtware.Config{
			SigningKey: []byte(opts.JWTSecret),
			ContextKey: user.ContextKey,
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
			},
		}))
	}
	for _, h := range protected {
		h.RegisterProtectedRoutes(app)
	}
	return app
}

func health(ready func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "message": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// requestLogger tags every request with an X-Request-ID, reusing the
// caller's when present, and logs one line per request.
func requestLogger(log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		rid := c.Get(fiber.HeaderXRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, rid)

		err := c.Next()
		if err != nil {
			// let the error handler set the status before it is logged
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		entry := log.WithFields(logrus.Fields{
			"requestID": rid,
			"method":    c.Method(),
			"path":      c.Path(),
			"status":    c.Response().StatusCode(),
			"latency":   time.Since(start).String(),
		})
		if err != nil {
			entry.WithError(err).Warn("request failed")
		} else {
			entry.Info("request")
		}
		return nil
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"message": err.Error()})
}
