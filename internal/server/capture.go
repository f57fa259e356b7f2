package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	capturedomain "github.com/smallbiznis/rescart/internal/capture/domain"
)

// HandleCapture accepts the beacon payload. The client falls back to form
// encoding on unreliable transports, so both body shapes are accepted.
func (s *Server) HandleCapture(c *gin.Context) {
	var raw capturedomain.RawEvent

	switch {
	case strings.HasPrefix(c.ContentType(), "application/x-www-form-urlencoded"),
		strings.HasPrefix(c.ContentType(), "multipart/form-data"):
		raw = captureFromForm(c)
	default:
		if err := c.ShouldBindJSON(&raw); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}

	resp, err := s.captureSvc.Ingest(c.Request.Context(), raw)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"cart_id": resp.Cart.ID.String(),
		"status":  resp.Cart.Status,
		"created": resp.Created,
	}})
}

func captureFromForm(c *gin.Context) capturedomain.RawEvent {
	cleared := strings.EqualFold(c.PostForm("cleared"), "true") || c.PostForm("cleared") == "1"
	return capturedomain.RawEvent{
		StoreDomain: c.PostForm("store_domain"),
		CartToken:   c.PostForm("cart_token"),
		SessionID:   c.PostForm("session_id"),
		CustomerID:  c.PostForm("customer_id"),
		Email:       c.PostForm("email"),
		Phone:       c.PostForm("phone"),
		Items:       c.PostForm("items"),
		Total:       c.PostForm("total"),
		Consents:    c.PostForm("consents"),
		Cleared:     cleared,
	}
}
