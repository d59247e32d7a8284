// Package server assembles the fiber application: middleware stack, error
// boundary, and route mounting.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/goliatone/go-errors"

	"github.com/ecobuilt/api/auth"
	"github.com/ecobuilt/api/catalog"
	"github.com/ecobuilt/api/profile"
	"github.com/ecobuilt/api/response"
)

// Deps carries every collaborator the HTTP surface needs
type Deps struct {
	Logger auth.Logger

	Repo   auth.RepositoryManager
	Tokens auth.TokenService
	Otps   *auth.OtpIssuer

	Profiles profile.Profiles
	Files    interface {
		profile.FileStore
		catalog.FileStore
	}

	Categories catalog.Categories
	Vendors    catalog.Vendors
	Products   catalog.Products
}

// New builds the fiber app with every route mounted behind its guard
func New(deps Deps) *fiber.App {
	logger := deps.Logger

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(cors.New())

	guard := auth.NewGuard(deps.Tokens, deps.Repo.Auths(), logger)

	authController := auth.NewController(
		auth.WithRepositoryManager(deps.Repo),
		auth.WithTokenService(deps.Tokens),
		auth.WithOtpIssuer(deps.Otps),
		auth.WithLogger(logger),
	)
	authController.RegisterRoutes(app.Group("/auth"), guard)

	profileController := profile.NewController(deps.Repo, deps.Profiles, deps.Files, logger)
	profileController.RegisterRoutes(app.Group("/profile"), guard)

	catalogController := catalog.NewController(deps.Categories, deps.Vendors, deps.Products, deps.Files, logger)
	catalogController.RegisterRoutes(app, guard)

	return app
}

// ErrorHandler is the app-level error boundary. Rich errors map by category
// to an envelope; anything else is logged and surfaced as a generic
// internal failure without detail leakage.
func ErrorHandler(logger auth.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var rich *errors.Error
		if errors.As(err, &rich) {
			switch rich.Category {
			case errors.CategoryAuth:
				return response.Unauthorized(c, rich.TextCode, rich.Message)
			case errors.CategoryAuthz:
				return response.Forbidden(c, rich.TextCode, rich.Message)
			case errors.CategoryNotFound:
				return response.NotFound(c, rich.TextCode, rich.Message)
			case errors.CategoryConflict,
				errors.CategoryValidation,
				errors.CategoryBadInput:
				return response.BadRequest(c, rich.TextCode, rich.Message)
			}

			if logger != nil {
				logger.Error("request %s %s failed: %v", c.Method(), c.Path(), err)
			}
			return response.InternalServerError(c, nil, "Internal Server Error!")
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(response.Envelope{
				Success: false,
				Message: fe.Message,
			})
		}

		if logger != nil {
			logger.Error("request %s %s failed: %v", c.Method(), c.Path(), err)
		}
		return response.InternalServerError(c, nil, "Internal Server Error!")
	}
}
