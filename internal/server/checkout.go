package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	cartdomain "github.com/smallbiznis/rescart/internal/cart/domain"
)

type checkoutInitiatedRequest struct {
	StoreID     string                `json:"store_id"`
	CartToken   string                `json:"cart_token"`
	SessionID   string                `json:"session_id"`
	Items       []cartdomain.CartItem `json:"items"`
	CheckoutRef string                `json:"checkout_ref"`
	Customer    struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"customer"`
}

func (s *Server) HandleCheckoutInitiated(c *gin.Context) {
	var req checkoutInitiatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	storeID, err := snowflake.ParseString(strings.TrimSpace(req.StoreID))
	if err != nil || storeID == 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.cartSvc.RecordCheckoutEvent(c.Request.Context(), cartdomain.CheckoutEvent{
		StoreID: storeID,
		Keys: cartdomain.IdentityKeys{
			CartToken:  req.CartToken,
			SessionID:  req.SessionID,
			CustomerID: req.Customer.ID,
			Email:      req.Customer.Email,
			Phone:      req.Customer.Phone,
		},
		Items:       req.Items,
		CheckoutRef: req.CheckoutRef,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
