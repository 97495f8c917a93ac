package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	clientdomain "github.com/smallbiznis/freelanceflow/internal/client/domain"
	"github.com/smallbiznis/freelanceflow/internal/clock"
	"github.com/smallbiznis/freelanceflow/internal/config"
	invoicedomain "github.com/smallbiznis/freelanceflow/internal/invoice/domain"
	"github.com/smallbiznis/freelanceflow/internal/invoice/export"
	"github.com/smallbiznis/freelanceflow/internal/notify"
	"github.com/smallbiznis/freelanceflow/internal/observability"
	obsmiddleware "github.com/smallbiznis/freelanceflow/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/freelanceflow/internal/observability/metrics"
	obstracing "github.com/smallbiznis/freelanceflow/internal/observability/tracing"
	"github.com/smallbiznis/freelanceflow/internal/report"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

type EngineParams struct {
	fx.In

	ObsCfg   observability.Config
	Log      *zap.Logger
	Metrics  *obsmetrics.Metrics  `optional:"true"`
	Registry *prometheus.Registry `optional:"true"`
	Tracer   trace.TracerProvider `optional:"true"`
}

func NewEngine(p EngineParams) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(p.Log, obsmiddleware.MiddlewareConfig{
		Debug:           p.ObsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware(p.Tracer))
	r.Use(p.Metrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if p.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{})))
	}

	return r
}

func registerGin(p EngineParams) *gin.Engine {
	return NewEngine(p)
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, s *Server) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	log        *zap.Logger
	clock      clock.Clock
	invoiceSvc invoicedomain.Service
	clientSvc  clientdomain.Service
	documents  *export.Documents
	archive    *export.FileDeliverer
	reports    *report.Service
	toaster    *notify.Toaster
	confirmer  *notify.Confirmer
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Log        *zap.Logger
	Clock      clock.Clock
	InvoiceSvc invoicedomain.Service
	ClientSvc  clientdomain.Service
	Documents  *export.Documents
	Archive    *export.FileDeliverer `optional:"true"`
	Reports    *report.Service
	Toaster    *notify.Toaster
	Confirmer  *notify.Confirmer
}

func NewServer(p ServerParams) *Server {
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	svc := &Server{
		engine:     p.Gin,
		log:        p.Log.Named("http.server"),
		clock:      c,
		invoiceSvc: p.InvoiceSvc,
		clientSvc:  p.ClientSvc,
		documents:  p.Documents,
		archive:    p.Archive,
		reports:    p.Reports,
		toaster:    p.Toaster,
		confirmer:  p.Confirmer,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Clients --------
	api.GET("/clients", s.ListClients)
	api.POST("/clients", s.CreateClient)
	api.GET("/clients/:id", s.GetClientByID)
	api.PUT("/clients/:id", s.UpdateClient)
	api.DELETE("/clients/:id", s.RequestClientDeletion)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/defaults", s.GetInvoiceDefaults)
	api.GET("/invoices/summary", s.GetInvoiceSummary)
	api.GET("/invoices/export.xlsx", s.ExportLedgerXLSX)
	api.GET("/invoices/export.csv", s.ExportLedgerCSV)
	api.POST("/invoices/preview/pdf", s.PreviewInvoicePDF)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.DELETE("/invoices/:id", s.RequestInvoiceDeletion)
	api.POST("/invoices/:id/work-items", s.AddWorkItem)
	api.PATCH("/invoices/:id/work-items/:itemID", s.UpdateWorkItem)
	api.DELETE("/invoices/:id/work-items/:itemID", s.RemoveWorkItem)
	api.PUT("/invoices/:id/tax-rate", s.SetTaxRate)
	api.POST("/invoices/:id/pay", s.MarkInvoicePaid)
	api.POST("/invoices/:id/duplicate", s.DuplicateInvoice)
	api.POST("/invoices/:id/logo", s.UploadInvoiceLogo)
	api.GET("/invoices/:id/pdf", s.ExportInvoicePDF)
	if s.archive != nil {
		api.POST("/invoices/:id/pdf/archive", s.ArchiveInvoicePDF)
	}

	// -------- Notifications --------
	api.GET("/notifications", s.ListNotifications)
	api.DELETE("/notifications", s.ClearNotifications)
	api.DELETE("/notifications/:id", s.DismissNotification)
	api.GET("/confirmations", s.ListConfirmations)
	api.POST("/confirmations/:id", s.ResolveConfirmation)
}
