package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.toaster.Active()})
}

func (s *Server) DismissNotification(c *gin.Context) {
	if !s.toaster.Dismiss(c.Param("id")) {
		AbortWithError(c, ErrNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ClearNotifications(c *gin.Context) {
	s.toaster.Clear()
	c.Status(http.StatusNoContent)
}

func (s *Server) ListConfirmations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.confirmer.Pending()})
}

type resolveConfirmationRequest struct {
	Confirmed *bool `json:"confirmed"`
}

func (s *Server) ResolveConfirmation(c *gin.Context) {
	var req resolveConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Confirmed == nil {
		AbortWithError(c, newValidationError("confirmed", "required", "confirmed is required"))
		return
	}

	if err := s.confirmer.Resolve(c.Request.Context(), c.Param("id"), *req.Confirmed); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"confirmed": *req.Confirmed}})
}
