package controller

import (
	"errors"

	"ai-docrouter-be/internal/dto"
	"ai-docrouter-be/internal/pkg/serverutils"
	"ai-docrouter-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMemoryController interface {
	RegisterRoutes(r fiber.Router, protect fiber.Handler)
	ListSessions(ctx *fiber.Ctx) error
	ShowSession(ctx *fiber.Ctx) error
	ListLogs(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type memoryController struct {
	service service.IMemoryService
}

func NewMemoryController(service service.IMemoryService) IMemoryController {
	return &memoryController{service: service}
}

func (c *memoryController) RegisterRoutes(r fiber.Router, protect fiber.Handler) {
	r.Get("/health", c.Health)

	r.Get("/memory", protect, c.ListSessions)
	r.Get("/memory/:id", protect, c.ShowSession)
	r.Get("/logs", protect, c.ListLogs)
}

func (c *memoryController) ListSessions(ctx *fiber.Ctx) error {
	res, err := c.service.ListSessions(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all sessions", res))
}

func (c *memoryController) ShowSession(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.UserContext(), ctx.Params("id"))
	if errors.Is(err, service.ErrSessionNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, err.Error()))
	}
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *memoryController) ListLogs(ctx *fiber.Ctx) error {
	var query dto.LogsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Invalid limit"))
	}

	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.service.ListLogs(ctx.UserContext(), query.Limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get logs", res))
}

func (c *memoryController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("OK", c.service.Health(ctx.UserContext())))
}
