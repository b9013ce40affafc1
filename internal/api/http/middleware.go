package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/team-service/internal/api/dto"
	"github.com/spec-kit/team-service/internal/observability"
	apperrors "github.com/spec-kit/team-service/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware collapses every handler error into the wire
// failure envelope. Business failures keep their own code and message;
// anything else surfaces as the generic internal code.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				statusErr := toStatusError(err)
				metrics.RecordError(c.Path(), c.Method(), statusErr.Code)
				if statusErr.HTTPStatus >= 500 {
					logger.Error("request failed",
						zap.String("request_id", observability.RequestID(c)),
						zap.Error(statusErr))
				}
				c.Status(statusErr.HTTPStatus)
				_ = c.JSON(dto.NewErrorResponse(statusErr.Code, statusErr.Message))
				err = nil
			}
		}()
		return c.Next()
	}
}

func toStatusError(err error) *apperrors.StatusError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return &apperrors.StatusError{
			Code:       apperrors.CodeInternal,
			Message:    fiberErr.Message,
			HTTPStatus: fiberErr.Code,
			Err:        fiberErr,
		}
	}
	return apperrors.ToStatusError(err)
}
