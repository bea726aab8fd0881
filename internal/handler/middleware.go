package handler

import (
	"strings"

	"wordrush/shared/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthMiddleware verifies the Bearer token and stores user_id, role and access_uuid on the context.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			tokenVerificationsTotal.WithLabelValues("failure").Inc()
			handleServiceError(c, models.ErrTokenInvalid)
			return
		}

		claims, err := h.authService.VerifyAccessToken(c.Request.Context(), parts[1])
		if err != nil {
			h.logger.Debug("Access token verification failed", zap.Error(err))
			tokenVerificationsTotal.WithLabelValues("failure").Inc()
			handleServiceError(c, err)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			tokenVerificationsTotal.WithLabelValues("failure").Inc()
			handleServiceError(c, models.ErrTokenInvalid)
			return
		}

		tokenVerificationsTotal.WithLabelValues("success").Inc()
		c.Set(models.CtxKeyUserID, userID)
		c.Set(models.CtxKeyRole, claims.Role)
		c.Set(models.CtxKeyAccessUUID, claims.ID)
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(models.CtxKeyRole) != models.RoleAdmin {
			handleServiceError(c, models.ErrForbidden)
			return
		}
		c.Next()
	}
}

// getUserIDFromContext aborts with 401 when no user is attached.
func getUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(models.CtxKeyUserID)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return uuid.Nil, false
	}
	userID, ok := v.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		handleServiceError(c, models.ErrUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}
