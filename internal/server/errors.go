package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	cartdomain "github.com/smallbiznis/rescart/internal/cart/domain"
	capturedomain "github.com/smallbiznis/rescart/internal/capture/domain"
	customerdomain "github.com/smallbiznis/rescart/internal/customer/domain"
	orderdomain "github.com/smallbiznis/rescart/internal/order/domain"
	storedomain "github.com/smallbiznis/rescart/internal/store/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, cartdomain.ErrInvalidTransition):
		return http.StatusConflict, errorPayload{
			Type:    "invalid_transition",
			Message: "lifecycle transition not permitted from current status",
		}
	case errors.Is(err, storedomain.ErrDomainExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "store domain already connected",
		}
	case errors.Is(err, cartdomain.ErrTransientStore):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "transient_store_error",
			Message: "persistence temporarily unavailable, retry the event",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, cartdomain.ErrNoIdentifiers),
		errors.Is(err, cartdomain.ErrInvalidID),
		errors.Is(err, cartdomain.ErrInvalidStore),
		errors.Is(err, capturedomain.ErrMissingStoreDomain),
		errors.Is(err, orderdomain.ErrMissingOrderID),
		errors.Is(err, customerdomain.ErrInvalidStore),
		errors.Is(err, storedomain.ErrInvalidDomain),
		errors.Is(err, storedomain.ErrInvalidPlatform):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, cartdomain.ErrNotFound),
		errors.Is(err, storedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
