package middleware

import (
	"errors"
	"net/http"

	"go-recruiting-platform/internal/delivery/http/response"
	"go-recruiting-platform/pkg/apperror"
	"go-recruiting-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Kind != apperror.KindInternal {
			writeError(c, appErr)
			return
		}

		// Internal details stay in the server log.
		logger.Log.ErrorContext(c.Request.Context(), "request failed",
			"error", err,
			"path", c.FullPath(),
			"request_id", requestIDFrom(c),
		)
		response.Error(c, http.StatusInternalServerError,
			"An unexpected error occurred. Please try again later.",
			response.ErrorBody{Kind: string(apperror.KindInternal)})
	}
}

func writeError(c *gin.Context, appErr *apperror.AppError) {
	response.Error(c, appErr.Code, appErr.Message, response.ErrorBody{
		Kind:    string(appErr.Kind),
		Details: appErr.Details,
	})
}

// abortWithError renders appErr immediately and stops the chain.
func abortWithError(c *gin.Context, appErr *apperror.AppError) {
	writeError(c, appErr)
	c.Abort()
}
