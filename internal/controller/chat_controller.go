package controller

import (
	"errors"

	"greentrip-be/internal/dto"
	"greentrip-be/internal/pkg/logger"
	"greentrip-be/internal/pkg/serverutils"
	"greentrip-be/internal/service"
	internalWS "greentrip-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	Action(ctx *fiber.Ctx) error
	Feedback(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	ClarificationSummary(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

type chatController struct {
	service         service.IConversationService
	pipelineService service.IPipelineService
	hub             *internalWS.Hub
	logger          logger.ILogger
}

func NewChatController(
	svc service.IConversationService,
	pipelineService service.IPipelineService,
	hub *internalWS.Hub,
	log logger.ILogger,
) IChatController {
	return &chatController{
		service:         svc,
		pipelineService: pipelineService,
		hub:             hub,
		logger:          log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("/session", c.CreateSession)
	h.Post("/session/:id/message", c.SendMessage)
	h.Post("/session/:id/action", c.Action)
	h.Post("/session/:id/feedback", c.Feedback)
	h.Get("/session/:id/history", c.History)
	h.Get("/session/:id/clarification-summary", c.ClarificationSummary)
	h.Delete("/session/:id", c.DeleteSession)

	// WebSocket: streams pipeline results for one session
	h.Get("/session/:id/ws", c.ServeWs)
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.service.CreateSession(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	sessionId, err := parseSessionId(ctx)
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ProcessMessage(ctx.Context(), sessionId, req.Message)
	if err != nil {
		return err
	}

	// The reply to the user never waits on the pipeline; the result comes
	// back over the websocket once the worker finishes.
	if res.TriggerPipeline {
		if err := c.pipelineService.Enqueue(ctx.Context(), sessionId); err != nil {
			c.logger.Error("ChatController", "Failed to enqueue pipeline", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process message", res))
}

func (c *chatController) Action(ctx *fiber.Ctx) error {
	sessionId, err := parseSessionId(ctx)
	if err != nil {
		return err
	}

	var req dto.ActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.HandleAction(ctx.Context(), sessionId, &req)
	if err != nil {
		return err
	}

	if res.TriggerPipeline {
		if err := c.pipelineService.Enqueue(ctx.Context(), sessionId); err != nil {
			c.logger.Error("ChatController", "Failed to enqueue pipeline", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Success handle action", res))
}

func (c *chatController) Feedback(ctx *fiber.Ctx) error {
	sessionId, err := parseSessionId(ctx)
	if err != nil {
		return err
	}

	var req dto.FeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.SaveFeedback(ctx.Context(), sessionId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success save feedback", nil))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	sessionId, err := parseSessionId(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetHistory(ctx.Context(), sessionId)
	if errors.Is(err, service.ErrSessionNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *chatController) ClarificationSummary(ctx *fiber.Ctx) error {
	sessionId, err := parseSessionId(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetClarificationSummary(ctx.Context(), sessionId)
	if errors.Is(err, service.ErrSessionNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get clarification summary", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	sessionId, err := parseSessionId(ctx)
	if err != nil {
		return err
	}

	if err := c.service.DeleteSession(ctx.Context(), sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete session", nil))
}

// ServeWs upgrades the connection and attaches it to the hub under the
// session id. Chat sessions are anonymous, so possession of the session id is
// the credential.
func (c *chatController) ServeWs(ctx *fiber.Ctx) error {
	sessionId, err := parseSessionId(ctx)
	if err != nil {
		return err
	}

	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			c.logger.Info("ChatController", "Starting WebSocket session", map[string]interface{}{"session_id": sessionId})
			internalWS.ServeWs(c.hub, conn, sessionId)
			c.logger.Info("ChatController", "WebSocket session ended", map[string]interface{}{"session_id": sessionId})
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}

func parseSessionId(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}
	return id, nil
}
