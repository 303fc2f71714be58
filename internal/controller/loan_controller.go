package controller

import (
	"loan-assist-be/internal/dto"
	"loan-assist-be/internal/pkg/serverutils"
	"loan-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILoanController interface {
	RegisterRoutes(r fiber.Router)
	Analyze(ctx *fiber.Ctx) error
}

type loanController struct {
	service service.ILoanService
}

func NewLoanController(service service.ILoanService) ILoanController {
	return &loanController{service: service}
}

func (c *loanController) RegisterRoutes(r fiber.Router) {
	r.Post("/analyze-loan", c.Analyze)
}

func (c *loanController) Analyze(ctx *fiber.Ctx) error {
	var req dto.AnalyzeLoanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("Invalid request body", err.Error())
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Analyze(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
