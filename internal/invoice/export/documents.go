package export

import (
	"context"

	"github.com/smallbiznis/freelanceflow/internal/invoice/domain"
	"go.uber.org/fx"
)

type DocumentsParams struct {
	fx.In

	Invoices domain.Service
	Exporter *Exporter
}

// Documents exports stored invoices and unsaved drafts. Lookup and draft
// validation errors are returned as errors; rendering outcomes are Results.
type Documents struct {
	invoices domain.Service
	exporter *Exporter
}

func NewDocuments(p DocumentsParams) *Documents {
	return &Documents{invoices: p.Invoices, exporter: p.Exporter}
}

func (d *Documents) ExportInvoice(ctx context.Context, id string, dl Deliverer) (Result, error) {
	inv, err := d.invoices.GetByID(ctx, id)
	if err != nil {
		return Result{}, err
	}
	return d.exporter.Export(ctx, inv, dl), nil
}

func (d *Documents) PreviewDraft(ctx context.Context, draft domain.Draft, dl Deliverer) (Result, error) {
	inv, err := d.invoices.Preview(ctx, draft)
	if err != nil {
		return Result{}, err
	}
	return d.exporter.Export(ctx, inv, dl), nil
}
