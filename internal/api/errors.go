package api

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/michaelprosario/career-catalyst/internal/errors"
	"github.com/michaelprosario/career-catalyst/internal/service"
)

func statusFor(t errors.ErrorType) int {
	switch t {
	case errors.ErrTypeNotFound:
		return http.StatusNotFound
	case errors.ErrTypeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrTypeDuplicateKey, errors.ErrTypeInvalidStateTransition:
		return http.StatusConflict
	case errors.ErrTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as a failed AppResult with the status of its type.
func (h *handler) writeError(c *gin.Context, err error) {
	t := errors.TypeOf(err)
	message := err.Error()
	var de *errors.DomainError
	if stderrors.As(err, &de) {
		message = de.Message
	}
	if t == errors.ErrTypeInternal {
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		}
		if de != nil && len(de.StackTrace()) > 0 {
			fields = append(fields, zap.ByteString("stack", de.StackTrace()))
		}
		h.logger.Error("request failed", fields...)
	}
	c.JSON(statusFor(t), service.AppResult{
		Message: message,
		Errors:  []string{err.Error()},
	})
}

func (h *handler) badJSON(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, service.AppResult{
		Message: "Invalid JSON format",
		Errors:  []string{err.Error()},
	})
}

func unavailable(c *gin.Context, message string) {
	c.JSON(http.StatusServiceUnavailable, service.AppResult{
		Message: message,
		Errors:  []string{},
	})
}

func resultStatus(r service.AppResult, ok int) int {
	if r.Success {
		return ok
	}
	return statusFor(r.Type)
}
