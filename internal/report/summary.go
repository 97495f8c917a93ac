// Package report aggregates the invoice collection into dashboard figures
// and ledger downloads.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/freelanceflow/internal/clock"
	"github.com/smallbiznis/freelanceflow/internal/config"
	"github.com/smallbiznis/freelanceflow/internal/invoice/domain"
	"github.com/smallbiznis/freelanceflow/internal/invoice/format"
	"github.com/smallbiznis/freelanceflow/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Invoices  domain.Service
	Clock     clock.Clock
	Invoicing *config.InvoicingConfigHolder
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	invoices  domain.Service
	clock     clock.Clock
	invoicing *config.InvoicingConfigHolder
	metrics   *metrics.Metrics
}

func New(p Params) *Service {
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	return &Service{
		log:       p.Log.Named("report.service"),
		invoices:  p.Invoices,
		clock:     c,
		invoicing: p.Invoicing,
		metrics:   p.Metrics,
	}
}

// Figure is an aggregate amount with its headline rendering.
type Figure struct {
	Count     int             `json:"count"`
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted"`
}

type Summary struct {
	Total   Figure    `json:"total"`
	Paid    Figure    `json:"paid"`
	Pending Figure    `json:"pending"`
	Overdue Figure    `json:"overdue"`
	AsOf    time.Time `json:"asOf"`
}

// Summary totals every invoice by display status at the current time.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	invoices, err := s.invoices.List(ctx, domain.ListInvoiceRequest{})
	if err != nil {
		return Summary{}, err
	}
	now := s.clock.Now()
	return Summarize(invoices, now, format.NewMoney(s.invoicing.Get().CurrencySymbol)), nil
}

// Summarize is the pure aggregation behind Summary.
func Summarize(invoices []domain.Invoice, now time.Time, money format.Money) Summary {
	var sum Summary
	add := func(f *Figure, amount decimal.Decimal) {
		f.Count++
		f.Amount = f.Amount.Add(amount)
	}
	for _, inv := range invoices {
		add(&sum.Total, inv.Amount)
		switch inv.DisplayStatus(now) {
		case domain.StatusPaid:
			add(&sum.Paid, inv.Amount)
		case domain.StatusOverdue:
			add(&sum.Overdue, inv.Amount)
		default:
			add(&sum.Pending, inv.Amount)
		}
	}
	for _, f := range []*Figure{&sum.Total, &sum.Paid, &sum.Pending, &sum.Overdue} {
		f.Formatted = money.Headline(f.Amount)
	}
	sum.AsOf = now
	return sum
}
