// Package response defines the JSON envelope every handler replies with.
package response

import "github.com/gofiber/fiber/v2"

// Envelope is the uniform body shape for success and failure alike
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
	Message string `json:"message,omitempty"`
}

// Success writes a 200 envelope
func Success(c *fiber.Ctx, data any, message string) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// Created writes a 201 envelope
func Created(c *fiber.Ctx, data any, message string) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// BadRequest writes a 400 envelope
func BadRequest(c *fiber.Ctx, errs any, message string) error {
	return fail(c, fiber.StatusBadRequest, errs, message)
}

// Unauthorized writes a 401 envelope
func Unauthorized(c *fiber.Ctx, errs any, message string) error {
	return fail(c, fiber.StatusUnauthorized, errs, message)
}

// Forbidden writes a 403 envelope
func Forbidden(c *fiber.Ctx, errs any, message string) error {
	return fail(c, fiber.StatusForbidden, errs, message)
}

// NotFound writes a 404 envelope
func NotFound(c *fiber.Ctx, errs any, message string) error {
	return fail(c, fiber.StatusNotFound, errs, message)
}

// Conflict writes a 409 envelope
func Conflict(c *fiber.Ctx, errs any, message string) error {
	return fail(c, fiber.StatusConflict, errs, message)
}

// InternalServerError writes a 500 envelope
func InternalServerError(c *fiber.Ctx, errs any, message string) error {
	return fail(c, fiber.StatusInternalServerError, errs, message)
}

func fail(c *fiber.Ctx, status int, errs any, message string) error {
	return c.Status(status).JSON(Envelope{
		Success: false,
		Errors:  errs,
		Message: message,
	})
}
