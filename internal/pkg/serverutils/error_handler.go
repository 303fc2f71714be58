package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders any error returned by a handler as an ErrorBody.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	body := &ErrorBody{
		Success:   false,
		Code:      fiber.StatusInternalServerError,
		ErrorType: KindInternal,
		Message:   "Internal server error",
	}

	if appErr, ok := AsAppError(err); ok {
		body.Code = appErr.Code
		body.ErrorType = appErr.Kind
		body.Message = appErr.Message
		body.Detail = appErr.Detail
		if body.Detail == nil && appErr.Err != nil {
			body.Detail = appErr.Err.Error()
		}
	} else {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			body.Code = fiberErr.Code
			body.ErrorType = ""
			body.Message = fiberErr.Message
		} else {
			body.Detail = err.Error()
		}
	}

	return ctx.Status(body.Code).JSON(body)
}

// ErrorHandlerMiddleware catches errors bubbling out of later handlers so that
// route groups mounted without the app-level handler still answer in the same shape.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return ErrorHandler(ctx, err)
		}
		return nil
	}
}
