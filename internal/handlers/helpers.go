package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/logger"
	"fundledger/internal/middleware"
	"fundledger/internal/uuid"
)

// getActor extracts the authenticated actor ID and role from the Gin context.
// Returns ErrUnauthorized if not present.
func getActor(c *gin.Context) (string, string, error) {
	actorID, exists := c.Get(middleware.ActorIDKey)
	if !exists {
		return "", "", apperrors.ErrUnauthorized
	}
	role, _ := c.Get(middleware.ActorRoleKey)
	roleStr, _ := role.(string)
	return actorID.(string), roleStr, nil
}

// parsePathID reads a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
func parsePathID(c *gin.Context, param string) (string, error) {
	id := c.Param(param)
	if !uuid.IsValid(id) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message, plus any
// structured detail. Otherwise it logs the unexpected error and returns a
// generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		body := gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		}
		if appErr.Detail != nil {
			body["detail"] = appErr.Detail
		}
		c.JSON(appErr.StatusCode, gin.H{"error": body})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}
