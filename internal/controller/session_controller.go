package controller

import (
	"loan-assist-be/internal/dto"
	"loan-assist-be/internal/pkg/serverutils"
	"loan-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	InitializeContext(ctx *fiber.Ctx) error
	Query(ctx *fiber.Ctx) error
	GetContext(ctx *fiber.Ctx) error
	EndSession(ctx *fiber.Ctx) error
}

type sessionController struct {
	service service.ISessionService
}

func NewSessionController(service service.ISessionService) ISessionController {
	return &sessionController{service: service}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	r.Post("/session/context", c.InitializeContext)
	r.Post("/query", c.Query)
	r.Get("/session/:id/context", c.GetContext)
	r.Post("/session/:id/end", c.EndSession)
}

func (c *sessionController) InitializeContext(ctx *fiber.Ctx) error {
	var req dto.InitializeContextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("Invalid request body", err.Error())
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.InitializeContext(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

// Query answers synchronously for voice-agent webhooks.
func (c *sessionController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("Invalid request body", err.Error())
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Query(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *sessionController) GetContext(ctx *fiber.Ctx) error {
	res, err := c.service.GetContext(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session context", res))
}

func (c *sessionController) EndSession(ctx *fiber.Ctx) error {
	res, err := c.service.EndSession(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
