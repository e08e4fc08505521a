package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"animai/internal/egg"
	"animai/internal/logging"
)

const internalMessage = "Internal server error"

func abortWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"message": message}})
}

// errorStatus maps an error's kind to a status and a client-safe message.
// Storage and internal details stay in the log.
func errorStatus(err error) (int, string) {
	var typed *egg.Error
	message := internalMessage
	if errors.As(err, &typed) && typed.Err != nil {
		message = typed.Err.Error()
	}
	switch egg.KindOf(err) {
	case egg.KindValidation:
		return http.StatusBadRequest, message
	case egg.KindAuth:
		return http.StatusUnauthorized, message
	case egg.KindNotFound:
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, internalMessage
	}
}

func respondError(c *gin.Context, err error) {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		logging.From(c, zap.L()).Error("Request failed",
			zap.String("kind", egg.KindOf(err).String()), zap.Error(err))
	}
	abortWithMessage(c, status, message)
}
