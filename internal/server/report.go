package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/freelanceflow/internal/invoice/domain"
)

func (s *Server) GetInvoiceSummary(c *gin.Context) {
	summary, err := s.reports.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (s *Server) ExportLedgerXLSX(c *gin.Context) {
	artifact, err := s.reports.LedgerXLSX(c.Request.Context(), ledgerRequest(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	writeAttachment(c, artifact)
}

func (s *Server) ExportLedgerCSV(c *gin.Context) {
	artifact, err := s.reports.LedgerCSV(c.Request.Context(), ledgerRequest(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	writeAttachment(c, artifact)
}

func ledgerRequest(c *gin.Context) invoicedomain.ListInvoiceRequest {
	return invoicedomain.ListInvoiceRequest{
		Status: c.Query("status"),
		Client: c.Query("client"),
	}
}
