package controller

import (
	"encoding/json"

	"lessonplan-bot-be/internal/constant"
	"lessonplan-bot-be/internal/dto"
	"lessonplan-bot-be/internal/pkg/logger"
	"lessonplan-bot-be/internal/pkg/serverutils"
	"lessonplan-bot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Webhook(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type webhookController struct {
	publisherService service.IPublisherService
	logger           logger.ILogger
}

func NewWebhookController(publisherService service.IPublisherService, log logger.ILogger) IWebhookController {
	return &webhookController{
		publisherService: publisherService,
		logger:           log,
	}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Health)
	r.Get("/health", c.Health)
	r.Post("/webhook", c.Webhook)
}

// Webhook queues the update and always answers 200 {"ok": true}; outcomes reach
// the user through the chat, never through the HTTP status.
func (c *webhookController) Webhook(ctx *fiber.Ctx) error {
	// Fiber reuses the request buffer after the handler returns.
	body := append([]byte(nil), ctx.Body()...)

	var update dto.Update
	if err := json.Unmarshal(body, &update); err != nil {
		c.logger.Warn(constant.LogModuleWebhook, "Malformed update ignored", map[string]interface{}{
			"error": err.Error(),
			"bytes": len(body),
		})
		return ctx.JSON(serverutils.OK())
	}

	if update.Message == nil {
		return ctx.JSON(serverutils.OK())
	}

	if err := c.publisherService.Publish(ctx.UserContext(), body); err != nil {
		c.logger.Error(constant.LogModuleWebhook, "Failed to queue update", map[string]interface{}{
			"update_id": update.UpdateId,
			"error":     err.Error(),
		})
	}
	return ctx.JSON(serverutils.OK())
}

func (c *webhookController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.OK())
}
