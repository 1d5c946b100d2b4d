package rest

import (
	"net/http"

	"github.com/Gunvolt24/order_service/pkg/ctxmeta"
	"github.com/Gunvolt24/order_service/pkg/httpx"
	"github.com/gin-gonic/gin"
)

// requireAuth - проверяет Bearer-токен и кладёт id пользователя в контекст запроса.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := httpx.BearerToken(c)
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		userID, err := h.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			h.writeError(c, err)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(ctxmeta.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}
