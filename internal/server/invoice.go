package server

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/freelanceflow/internal/invoice/domain"
	"github.com/smallbiznis/freelanceflow/internal/invoice/export"
	"github.com/smallbiznis/freelanceflow/internal/notify"
	"go.uber.org/zap"
)

// invoiceView adds the status shown to users, which may be overdue.
type invoiceView struct {
	invoicedomain.Invoice
	DisplayStatus invoicedomain.InvoiceStatus `json:"displayStatus"`
}

func (s *Server) view(inv invoicedomain.Invoice) invoiceView {
	return invoiceView{Invoice: inv, DisplayStatus: inv.DisplayStatus(s.clock.Now())}
}

func (s *Server) ListInvoices(c *gin.Context) {
	items, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		Status: c.Query("status"),
		Client: c.Query("client"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	views := make([]invoiceView, 0, len(items))
	for _, item := range items {
		views = append(views, s.view(item))
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	item, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": s.view(item)})
}

func (s *Server) GetInvoiceDefaults(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.invoiceSvc.Defaults(c.Request.Context())})
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var draft invoicedomain.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.invoiceSvc.Create(c.Request.Context(), draft)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.toaster.Success("Invoice created", "Invoice "+item.InvoiceNumber+" has been created.")
	c.JSON(http.StatusCreated, gin.H{"data": s.view(item)})
}

func (s *Server) AddWorkItem(c *gin.Context) {
	var req invoicedomain.AddWorkItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.invoiceSvc.AddWorkItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": s.view(item)})
}

func (s *Server) UpdateWorkItem(c *gin.Context) {
	var req invoicedomain.UpdateWorkItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.invoiceSvc.UpdateWorkItem(c.Request.Context(), c.Param("id"), c.Param("itemID"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": s.view(item)})
}

func (s *Server) RemoveWorkItem(c *gin.Context) {
	item, err := s.invoiceSvc.RemoveWorkItem(c.Request.Context(), c.Param("id"), c.Param("itemID"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": s.view(item)})
}

type setTaxRateRequest struct {
	TaxRate *decimal.Decimal `json:"taxRate"`
}

func (s *Server) SetTaxRate(c *gin.Context) {
	var req setTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TaxRate == nil {
		AbortWithError(c, newValidationError("taxRate", "required", "Tax rate is required"))
		return
	}

	item, err := s.invoiceSvc.SetTaxRate(c.Request.Context(), c.Param("id"), *req.TaxRate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": s.view(item)})
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	item, err := s.invoiceSvc.MarkAsPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.toaster.Success("Invoice paid", "Invoice "+item.InvoiceNumber+" has been marked as paid.")
	c.JSON(http.StatusOK, gin.H{"data": s.view(item)})
}

func (s *Server) DuplicateInvoice(c *gin.Context) {
	item, err := s.invoiceSvc.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.toaster.Success("Invoice duplicated", "Invoice "+item.InvoiceNumber+" has been created.")
	c.JSON(http.StatusCreated, gin.H{"data": s.view(item)})
}

func (s *Server) UploadInvoiceLogo(c *gin.Context) {
	file, err := c.FormFile("logo")
	if err != nil {
		AbortWithError(c, invoicedomain.ErrEmptyLogo)
		return
	}
	if file.Size > invoicedomain.MaxLogoBytes {
		AbortWithError(c, invoicedomain.ErrLogoTooLarge)
		return
	}

	f, err := file.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, invoicedomain.MaxLogoBytes+1))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.invoiceSvc.SetLogo(c.Request.Context(), c.Param("id"), invoicedomain.SetLogoRequest{
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": s.view(item)})
}

// RequestInvoiceDeletion asks for confirmation instead of deleting. The
// invoice is removed when the confirmation is resolved with true.
func (s *Server) RequestInvoiceDeletion(c *gin.Context) {
	item, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := item.ID.String()
	number := item.InvoiceNumber
	conf := s.confirmer.Request(notify.Prompt{
		Title:        "Delete Invoice",
		Message:      "Are you sure you want to delete invoice " + number + "? This action cannot be undone.",
		ConfirmLabel: "Delete",
		Severity:     notify.SeverityDanger,
	}, func(ctx context.Context, confirmed bool) error {
		if !confirmed {
			return nil
		}
		if err := s.invoiceSvc.Delete(ctx, id); err != nil {
			return err
		}
		s.toaster.Success("Invoice deleted", "Invoice "+number+" has been deleted.")
		return nil
	})

	c.JSON(http.StatusAccepted, gin.H{"confirmation": conf})
}

func (s *Server) ExportInvoicePDF(c *gin.Context) {
	res, err := s.documents.ExportInvoice(c.Request.Context(), c.Param("id"), s.download(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.finishExport(c, res)
}

// ArchiveInvoicePDF saves the rendered document to the export directory
// and reports the outcome as JSON.
func (s *Server) ArchiveInvoicePDF(c *gin.Context) {
	res, err := s.documents.ExportInvoice(c.Request.Context(), c.Param("id"), s.archive)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.finishExport(c, res)
	if c.IsAborted() {
		return
	}

	s.toaster.Success("Invoice saved", res.Filename+" was saved to "+s.archive.Path(res.Filename)+".")
	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (s *Server) PreviewInvoicePDF(c *gin.Context) {
	var draft invoicedomain.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	res, err := s.documents.PreviewDraft(c.Request.Context(), draft, s.download(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.finishExport(c, res)
}

// download writes the artifact as an attachment on the response.
func (s *Server) download(c *gin.Context) export.Deliverer {
	return export.DelivererFunc(func(_ context.Context, artifact export.Artifact) error {
		writeAttachment(c, artifact)
		return nil
	})
}

func (s *Server) finishExport(c *gin.Context, res export.Result) {
	if res.Success {
		return
	}
	s.toaster.Error("Export failed", res.Error)
	s.log.Warn("export failed", zap.String("error", res.Error))
	AbortWithError(c, &exportError{message: res.Error})
}

func writeAttachment(c *gin.Context, artifact export.Artifact) {
	filename := strings.ReplaceAll(artifact.Filename, `"`, "")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}
