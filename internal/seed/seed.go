package seed

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	clientdomain "github.com/smallbiznis/freelanceflow/internal/client/domain"
	"github.com/smallbiznis/freelanceflow/internal/clock"
	"github.com/smallbiznis/freelanceflow/internal/config"
	invoicedomain "github.com/smallbiznis/freelanceflow/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type demoInvoice struct {
	client    string
	dueInDays int
	paid      bool
	notes     string
	items     []invoicedomain.DraftWorkItem
}

var demoClients = []clientdomain.CreateClientRequest{
	{Name: "John Smith", Email: "john@techcorp.com", Company: "TechCorp Inc.", Phone: "+1 (555) 123-4567"},
	{Name: "Sarah Johnson", Email: "sarah@startupxyz.com", Company: "StartupXYZ", Phone: "+1 (555) 234-5678"},
	{Name: "Mike Davis", Email: "mike@localbusiness.com", Company: "Local Business Co.", Phone: "+1 (555) 345-6789"},
	{Name: "Emily Chen", Email: "emily@enterprise.com", Company: "Enterprise Ltd.", Phone: "+1 (555) 456-7890"},
	{Name: "David Wilson", Email: "david@growthhub.com", Company: "GrowthHub", Phone: "+1 (555) 567-8901"},
}

var demoInvoices = []demoInvoice{
	{
		client:    "TechCorp Inc.",
		dueInDays: 30,
		paid:      true,
		notes:     "Thank you for your business!",
		items: []invoicedomain.DraftWorkItem{
			item("Website Development", 40, 150),
			item("UI/UX Design", 20, 75),
		},
	},
	{
		client:    "StartupXYZ",
		dueInDays: 30,
		notes:     "Payment due within 30 days.",
		items: []invoicedomain.DraftWorkItem{
			item("Mobile App Development", 80, 125),
			item("API Integration", 20, 125),
		},
	},
	{
		client:    "Local Business Co.",
		dueInDays: 14,
		items: []invoicedomain.DraftWorkItem{
			item("Brand Identity Package", 1, 5000),
		},
	},
}

func item(description string, quantity, rate int64) invoicedomain.DraftWorkItem {
	return invoicedomain.DraftWorkItem{
		Description: description,
		Quantity:    decimal.NewFromInt(quantity),
		Rate:        decimal.NewFromInt(rate),
	}
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Clients  clientdomain.Service
	Invoices invoicedomain.Service
	Clock    clock.Clock
}

// Demo inserts the sample clients and invoices. Clients whose email is
// already registered are skipped; invoices are only created into an empty
// ledger, so reruns leave existing data alone.
func Demo(ctx context.Context, p Params) error {
	log := p.Log.Named("seed")

	for _, req := range demoClients {
		_, err := p.Clients.Create(ctx, req)
		if err != nil && !errors.Is(err, clientdomain.ErrEmailTaken) {
			return err
		}
	}

	existing, err := p.Invoices.List(ctx, invoicedomain.ListInvoiceRequest{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("seed skipped", zap.Int("invoices", len(existing)))
		return nil
	}

	today := clock.StartOfDay(p.Clock.Now())
	defaults := p.Invoices.Defaults(ctx)
	for _, demo := range demoInvoices {
		rate := defaults.TaxRate
		inv, err := p.Invoices.Create(ctx, invoicedomain.Draft{
			Client:    demo.client,
			DueDate:   today.AddDate(0, 0, demo.dueInDays).Format(invoicedomain.DateLayout),
			WorkItems: demo.items,
			TaxRate:   &rate,
			Notes:     demo.notes,
		})
		if err != nil {
			return err
		}
		if demo.paid {
			if _, err := p.Invoices.MarkAsPaid(ctx, inv.ID.String()); err != nil {
				return err
			}
		}
	}

	log.Info("demo data seeded",
		zap.Int("clients", len(demoClients)),
		zap.Int("invoices", len(demoInvoices)),
	)
	return nil
}

func run(lc fx.Lifecycle, cfg config.Config, p Params) {
	if !cfg.SeedDemo {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return Demo(ctx, p)
		},
	})
}

var Module = fx.Module("seed",
	fx.Invoke(run),
)
