package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salesledger/internal/core/apperror"
	"salesledger/pkg/logger"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Messages []string       `json:"messages"`
	Details  map[string]any `json:"details,omitempty"`
}

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		renderError(c)
	}
}

func renderError(c *gin.Context) {
	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	err := c.Errors.Last().Err

	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:     apperror.CodeInternal,
			Message:  "Internal server error",
			Messages: []string{"Internal server error"},
			Details:  map[string]any{"request_id": c.GetString(keyRequestID)},
		})
		return
	}

	if appErr.Err != nil {
		logger.Warn(c.Request.Context(), "request error",
			"code", appErr.Code,
			"cause", appErr.Err,
		)
	}

	details := make(map[string]any, len(appErr.Details))
	for k, v := range appErr.Details {
		if k == "messages" {
			continue
		}
		details[k] = v
	}
	if len(details) == 0 {
		details = nil
	}

	c.JSON(appErr.HTTPStatus, ErrorResponse{
		Code:     appErr.Code,
		Message:  appErr.Message,
		Messages: appErr.Messages(),
		Details:  details,
	})
}
