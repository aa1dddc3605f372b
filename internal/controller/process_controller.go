package controller

import (
	"io"

	"ai-docrouter-be/internal/dto"
	"ai-docrouter-be/internal/pkg/serverutils"
	"ai-docrouter-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const maxUploadBytes = 5 * 1024 * 1024

type IProcessController interface {
	RegisterRoutes(r fiber.Router)
	Process(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
}

type processController struct {
	service service.IOrchestratorService
}

func NewProcessController(service service.IOrchestratorService) IProcessController {
	return &processController{service: service}
}

func (c *processController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/process")
	h.Post("", c.Process)
	h.Post("/upload", c.Upload)
}

func (c *processController) Process(ctx *fiber.Ctx) error {
	var req dto.ProcessRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ProcessInput(ctx.UserContext(), req.Content)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Document processed", res))
}

func (c *processController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "File is required"))
	}
	if fileHeader.Size > maxUploadBytes {
		return ctx.Status(fiber.StatusRequestEntityTooLarge).JSON(serverutils.ErrorResponse(fiber.StatusRequestEntityTooLarge, "File too large (max 5MB)"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	if len(content) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "File is empty"))
	}

	res, err := c.service.ProcessInput(ctx.UserContext(), string(content))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Document processed", res))
}
