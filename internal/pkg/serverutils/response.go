package serverutils

import (
	"log"

	"lessonplan-bot-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// OK is the body of every webhook and health answer.
func OK() dto.OKResponse {
	return dto.OKResponse{OK: true}
}

// ErrorHandlerMiddleware turns a panic or returned error into a JSON body.
// Webhook handlers never return errors, so this only guards unexpected routes.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[ERROR] panic on %s %s: %v", ctx.Method(), ctx.Path(), r)
				err = ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "message": "internal error"})
			}
		}()

		if err = ctx.Next(); err != nil {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return ctx.Status(code).JSON(fiber.Map{"ok": false, "message": err.Error()})
		}
		return nil
	}
}
