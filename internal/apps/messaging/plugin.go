package messaging

import (
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apps"
	"github.com/gofiber/fiber/v2"
)

type MessagingPlugin struct{}

func New() *MessagingPlugin {
	return &MessagingPlugin{}
}

func (p *MessagingPlugin) ID() string { return "messaging" }

func (p *MessagingPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	svc := NewMessageService(deps.DB, deps.Tasks, deps.Realtime, deps.Signer, deps.Push)
	handler := NewMessageHandler(svc)

	msgs := router.Group("/messages", deps.Auth)
	msgs.Get("/unread-count", handler.UnreadCount)
	msgs.Get("/thread/:applicationId", handler.Thread)
	msgs.Patch("/thread/:applicationId/mark-read", handler.MarkRead)
	msgs.Post("/", handler.Send)

	router.Post("/realtime/auth", deps.Auth, handler.AuthorizeChannel)
}
