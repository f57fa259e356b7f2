package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	cartdomain "github.com/smallbiznis/rescart/internal/cart/domain"
	"github.com/smallbiznis/rescart/pkg/db/pagination"
)

func (s *Server) GetCartByID(c *gin.Context) {
	resp, err := s.cartSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAbandonedCarts(c *gin.Context) {
	storeID, err := s.parseStoreID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.cartSvc.ListAbandoned(c.Request.Context(), cartdomain.ListAbandonedRequest{
		StoreID:   storeID,
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type recordCheckoutRequest struct {
	CheckoutRef string `json:"checkout_ref"`
}

func (s *Server) RecordCartCheckout(c *gin.Context) {
	var req recordCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.cartSvc.RecordCheckout(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.CheckoutRef)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type sweepRequest struct {
	IdleThreshold string `json:"idle_threshold"`
}

// SweepIdleCarts lets recovery tooling trigger the idle sweep on demand.
func (s *Server) SweepIdleCarts(c *gin.Context) {
	storeID, err := s.parseStoreID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	threshold := s.cfg.IdleThreshold
	var req sweepRequest
	if err := c.ShouldBindJSON(&req); err == nil && strings.TrimSpace(req.IdleThreshold) != "" {
		parsed, err := time.ParseDuration(req.IdleThreshold)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		threshold = parsed
	}

	closed, err := s.cartSvc.CloseIdle(c.Request.Context(), storeID, threshold, s.cfg.SweepBatch)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"closed": closed}})
}

func (s *Server) parseStoreID(c *gin.Context) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("store_id")))
	if err != nil || id == 0 {
		return 0, ErrInvalidRequest
	}
	return id, nil
}
