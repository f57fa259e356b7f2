package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/smallbiznis/rescart/internal/order/domain"
)

// HandleOrderWebhook ingests order-created notifications. Delivery is
// at-least-once; reconciliation is idempotent, so duplicates answer 200.
func (s *Server) HandleOrderWebhook(c *gin.Context) {
	var event orderdomain.OrderCreatedEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if event.Platform == "" {
		event.Platform = strings.TrimSpace(c.Param("platform"))
	}

	result, err := s.orderSvc.Reconcile(c.Request.Context(), event)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
