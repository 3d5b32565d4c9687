package middleware

import (
	"strings"
	"time"

	"quorum-booking/core/constants"
	"quorum-booking/core/controller"
	"quorum-booking/core/errors"
	"quorum-booking/core/logger"
	"quorum-booking/core/utils"

	"github.com/labstack/echo/v4"
)

type Middleware struct {
	base controller.BaseController
}

func NewMiddleware() *Middleware {
	return &Middleware{base: controller.NewBaseController()}
}

// RequestID reuses an incoming X-Request-ID or mints one.
func (m *Middleware) RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(constants.HeaderRequestID)
			if id == "" {
				id = utils.GenerateID()
			}
			c.Set(constants.ContextRequestID, id)
			c.Response().Header().Set(constants.HeaderRequestID, id)
			return next(c)
		}
	}
}

func (m *Middleware) RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logger.Info("HTTP:Request",
				"request_id", c.Get(constants.ContextRequestID),
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", time.Since(start).Milliseconds(),
			)
			return nil
		}
	}
}

// ActorMiddleware takes the acting participant from X-Participant-ID. The
// header is trusted as is; there is no identity verification.
func (m *Middleware) ActorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := strings.TrimSpace(c.Request().Header.Get(constants.HeaderParticipantID))
			if actor == "" {
				return m.base.ErrorResponse(c, errors.NewAppError(errors.ErrUnauthorized,
					constants.HeaderParticipantID+" header is required", nil))
			}
			c.Set(constants.ContextActor, actor)
			return next(c)
		}
	}
}

// ActorFrom returns the participant set by ActorMiddleware.
func ActorFrom(c echo.Context) string {
	actor, _ := c.Get(constants.ContextActor).(string)
	return actor
}
