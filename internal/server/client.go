package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	clientdomain "github.com/smallbiznis/freelanceflow/internal/client/domain"
	"github.com/smallbiznis/freelanceflow/internal/notify"
)

func (s *Server) ListClients(c *gin.Context) {
	items, err := s.clientSvc.List(c.Request.Context(), clientdomain.ListClientRequest{
		Status: c.Query("status"),
		Search: c.Query("q"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) CreateClient(c *gin.Context) {
	var req clientdomain.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.clientSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.toaster.Success("Client added", item.Name+" has been added to your clients.")
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) GetClientByID(c *gin.Context) {
	item, err := s.clientSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) UpdateClient(c *gin.Context) {
	var req clientdomain.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.clientSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.toaster.Success("Client updated", item.Name+" has been updated.")
	c.JSON(http.StatusOK, gin.H{"data": item})
}

// RequestClientDeletion asks for confirmation; the client is removed when
// the confirmation resolves with true.
func (s *Server) RequestClientDeletion(c *gin.Context) {
	item, err := s.clientSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := item.ID.String()
	name := item.Name
	conf := s.confirmer.Request(notify.Prompt{
		Title:        "Delete Client",
		Message:      "Are you sure you want to delete " + name + "? This action cannot be undone.",
		ConfirmLabel: "Delete",
		Severity:     notify.SeverityDanger,
	}, func(ctx context.Context, confirmed bool) error {
		if !confirmed {
			return nil
		}
		if err := s.clientSvc.Delete(ctx, id); err != nil {
			return err
		}
		s.toaster.Success("Client deleted", name+" has been removed from your clients.")
		return nil
	})

	c.JSON(http.StatusAccepted, gin.H{"confirmation": conf})
}
