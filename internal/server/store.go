package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	storedomain "github.com/smallbiznis/rescart/internal/store/domain"
)

type connectStoreRequest struct {
	Domain      string `json:"domain"`
	Platform    string `json:"platform"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

func (s *Server) ConnectStore(c *gin.Context) {
	var req connectStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.storeSvc.Connect(c.Request.Context(), storedomain.ConnectStoreRequest{
		Domain:      req.Domain,
		Platform:    req.Platform,
		Name:        req.Name,
		AccessToken: req.AccessToken,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetStore(c *gin.Context) {
	resp, err := s.storeSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("store_id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// TeardownStore deletes the tenant and all dependents in referential order.
func (s *Server) TeardownStore(c *gin.Context) {
	err := s.storeSvc.Teardown(c.Request.Context(), strings.TrimSpace(c.Param("store_id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
