package controller

import (
	"greentrip-be/internal/pkg/serverutils"
	"greentrip-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IExportController interface {
	RegisterRoutes(r fiber.Router)
	Clarifications(ctx *fiber.Ctx) error
	Statistics(ctx *fiber.Ctx) error
}

type exportController struct {
	service service.IExportService
}

func NewExportController(service service.IExportService) IExportController {
	return &exportController{service: service}
}

func (c *exportController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/export/v1")
	h.Use(serverutils.JwtMiddleware) // research tooling only
	h.Get("/clarifications", c.Clarifications)
	h.Get("/statistics", c.Statistics)
}

func (c *exportController) Clarifications(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 0)

	res, err := c.service.ExportClarifications(ctx.Context(), limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success export clarifications", res))
}

func (c *exportController) Statistics(ctx *fiber.Ctx) error {
	res, err := c.service.Statistics(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get statistics", res))
}
