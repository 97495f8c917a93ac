package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/freelanceflow/internal/clock"
	"github.com/smallbiznis/freelanceflow/internal/config"
	"github.com/smallbiznis/freelanceflow/internal/invoice/domain"
	"github.com/smallbiznis/freelanceflow/internal/observability/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const kindPDF = "pdf"

// Result reports the outcome of an export. Exactly one of Filename and
// Error is set.
type Result struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
	Pages    int    `json:"pages,omitempty"`
}

type Params struct {
	fx.In

	Log            *zap.Logger
	Clock          clock.Clock
	Invoicing      *config.InvoicingConfigHolder
	Renderer       Renderer             `optional:"true"`
	Metrics        *metrics.Metrics     `optional:"true"`
	TracerProvider trace.TracerProvider `optional:"true"`
}

type Exporter struct {
	log       *zap.Logger
	clock     clock.Clock
	invoicing *config.InvoicingConfigHolder
	renderer  Renderer
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

func New(p Params) *Exporter {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	renderer := p.Renderer
	if renderer == nil {
		renderer = NewPDFRenderer(p.Invoicing.Get().BusinessName)
	}
	tp := p.TracerProvider
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	return &Exporter{
		log:       log.Named("invoice.export"),
		clock:     c,
		invoicing: p.Invoicing,
		renderer:  renderer,
		metrics:   p.Metrics,
		tracer:    tp.Tracer("freelanceflow/invoice/export"),
	}
}

// Plan lays out inv using the current invoicing settings. A logo that cannot
// be decoded is logged and left out.
func (e *Exporter) Plan(ctx context.Context, inv domain.Invoice) Plan {
	cfg := e.invoicing.Get()
	planner := NewPlanner(cfg.DescriptionLimit, cfg.Footer, cfg.CurrencySymbol)
	return planner.Plan(Document{
		Invoice:     inv,
		Logo:        e.loadLogo(ctx, inv),
		GeneratedAt: e.clock.Now(),
	})
}

// Export renders inv and hands the document to d. It never returns an
// error; failures, including panics in the rendering library, become a
// failed Result. A nil deliverer renders without delivering.
func (e *Exporter) Export(ctx context.Context, inv domain.Invoice, d Deliverer) (res Result) {
	started := time.Now()
	ctx, span := e.tracer.Start(ctx, "invoice.export", trace.WithAttributes(
		attribute.String("invoice.number", inv.InvoiceNumber),
		attribute.Int("invoice.work_items", len(inv.WorkItems)),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			res = e.fail(span, inv, fmt.Errorf("render panic: %v", r))
		}
		e.metrics.RecordExport(kindPDF, res.Success, res.Pages, time.Since(started))
	}()

	plan := e.Plan(ctx, inv)
	data, err := e.renderer.Render(ctx, plan)
	if err != nil {
		return e.fail(span, inv, err)
	}

	if d != nil {
		artifact := Artifact{Filename: plan.Filename, ContentType: ContentTypePDF, Data: data}
		if err := d.Deliver(ctx, artifact); err != nil {
			return e.fail(span, inv, fmt.Errorf("deliver: %w", err))
		}
	}

	span.SetAttributes(attribute.Int("export.pages", len(plan.Pages)), attribute.Int("export.bytes", len(data)))
	e.log.Info("invoice exported",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("filename", plan.Filename),
		zap.Int("pages", len(plan.Pages)),
	)
	return Result{Success: true, Filename: plan.Filename, Pages: len(plan.Pages)}
}

func (e *Exporter) fail(span trace.Span, inv domain.Invoice, err error) Result {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	e.log.Error("invoice export failed",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Error(err),
	)
	return Result{Success: false, Error: exportErrorMessage(err)}
}

func (e *Exporter) loadLogo(ctx context.Context, inv domain.Invoice) *Logo {
	if inv.LogoURL == "" {
		return nil
	}
	logo, err := DecodeLogo(inv.LogoURL)
	if err != nil {
		e.log.Warn("logo skipped",
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.Error(err),
		)
		trace.SpanFromContext(ctx).AddEvent("logo_skipped")
		e.metrics.RecordLogoFallback()
		return nil
	}
	return logo
}

func exportErrorMessage(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Export was cancelled. Please try again."
	case errors.Is(err, ErrEmptyPlan):
		return "Nothing to export."
	default:
		return "Failed to export invoice: " + err.Error()
	}
}
