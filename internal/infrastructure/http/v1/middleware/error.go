package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"depot/internal/core/apperror"
	"depot/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		if appErr, ok := apperror.AsAppError(err); ok {
			switch {
			case appErr.Code == apperror.CodeInvalidConversionFactor:
				// Bad factors are catalog data faults, not client mistakes.
				logger.Warn(c.Request.Context(), "invalid conversion factor",
					"details", appErr.Details,
				)
			case appErr.Err != nil:
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}

			body := gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			}

			// Replays of a failed request return the exact same response.
			FailIdempotency(c, appErr.HTTPStatus, "application/json", body)
			c.JSON(appErr.HTTPStatus, body)
			return
		}

		logger.Error(c.Request.Context(), "unhandled error",
			"error", err,
		)

		writeInternal(c)
	}
}

// writeInternal answers 500 without leaking the cause. The request id lets
// operators find the logged details.
func writeInternal(c *gin.Context) {
	body := gin.H{
		"code":    apperror.CodeInternal,
		"message": "Internal server error",
		"details": map[string]any{
			"request_id": c.GetString("request_id"),
		},
	}
	FailIdempotency(c, http.StatusInternalServerError, "application/json", body)
	c.AbortWithStatusJSON(http.StatusInternalServerError, body)
}
