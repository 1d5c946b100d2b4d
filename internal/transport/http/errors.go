package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/Gunvolt24/order_service/internal/domain"
	"github.com/Gunvolt24/order_service/pkg/validate"
	"github.com/gin-gonic/gin"
)

// writeError - единственное место, где доменные ошибки превращаются в HTTP-статусы.
func (h *Handler) writeError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	switch {
	case status == http.StatusUnauthorized:
		c.Header("WWW-Authenticate", "Bearer")
	case status >= http.StatusInternalServerError:
		h.log.Errorf(c.Request.Context(), "%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "order not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrEmailExists):
		return http.StatusBadRequest, domain.ErrEmailExists.Error()
	case errors.Is(err, domain.ErrBadCredentials):
		return http.StatusUnauthorized, domain.ErrBadCredentials.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, domain.ErrUnauthenticated.Error()
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrItemsNotObject),
		errors.Is(err, domain.ErrPasswordTooLong),
		errors.Is(err, validate.ErrInvalidOrder):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timeout"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// badRequest - тело запроса не прошло binding/валидацию gin.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
}
