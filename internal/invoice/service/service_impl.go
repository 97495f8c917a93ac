package service

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/freelanceflow/internal/clock"
	"github.com/smallbiznis/freelanceflow/internal/config"
	"github.com/smallbiznis/freelanceflow/internal/invoice/domain"
	"github.com/smallbiznis/freelanceflow/internal/invoice/format"
	"github.com/smallbiznis/freelanceflow/internal/observability/metrics"
	"github.com/smallbiznis/freelanceflow/pkg/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Clock     clock.Clock
	Invoicing *config.InvoicingConfigHolder
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	clock     clock.Clock
	invoicing *config.InvoicingConfigHolder
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		clock:     c,
		invoicing: p.Invoicing,
		metrics:   p.Metrics,
	}
}

func (s *Service) Defaults(ctx context.Context) domain.DraftDefaults {
	_ = ctx
	cfg := s.invoicing.Get()
	today := clock.StartOfDay(s.clock.Now())
	return domain.DraftDefaults{
		TaxRate:         decimal.NewFromFloat(cfg.DefaultTaxRate),
		DueDate:         today.AddDate(0, 0, cfg.PaymentTermDays).Format(domain.DateLayout),
		PaymentTermDays: cfg.PaymentTermDays,
	}
}

func (s *Service) Create(ctx context.Context, draft domain.Draft) (domain.Invoice, error) {
	now := s.clock.Now()
	if errs := domain.ValidateDraft(draft, now); len(errs) > 0 {
		s.metrics.RecordInvoiceOperation("create", errs)
		return domain.Invoice{}, errs
	}

	due, _ := domain.ParseDate(draft.DueDate)
	invoice := domain.Invoice{
		ID:         s.genID.Generate(),
		Client:     strings.TrimSpace(draft.Client),
		WorkItems:  draft.Items(),
		TaxRate:    taxRateOrZero(draft.TaxRate),
		Status:     domain.StatusPending,
		IssuedDate: clock.StartOfDay(now),
		DueDate:    due,
		LogoURL:    strings.TrimSpace(draft.LogoURL),
		Notes:      strings.TrimSpace(draft.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	invoice.Recalculate()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.nextNumber(ctx, tx, invoice.IssuedDate)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number
		return s.repo.Insert(ctx, tx, &invoice)
	})
	s.metrics.RecordInvoiceOperation("create", err)
	if err != nil {
		s.log.Error("create invoice failed", zap.Error(err))
		return domain.Invoice{}, err
	}

	s.log.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Int("work_items", len(invoice.WorkItems)),
	)
	return invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) ([]domain.Invoice, error) {
	status, err := parseStatusFilter(req.Status)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, s.db, domain.ListFilter{
		Status: status,
		Client: strings.TrimSpace(req.Client),
		Now:    s.clock.Now(),
	})
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	invoice, err := s.load(ctx, s.db, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) AddWorkItem(ctx context.Context, id string, req domain.AddWorkItemRequest) (domain.Invoice, error) {
	return s.mutate(ctx, "add_work_item", id, func(invoice *domain.Invoice) error {
		if !invoice.Editable() {
			return domain.ErrNotEditable
		}
		items, ok := domain.AddWorkItem(invoice.WorkItems, req.Description, req.Quantity, req.Rate)
		if !ok {
			errs := validation.Errors{}
			if strings.TrimSpace(req.Description) == "" {
				errs.Add("description", "Description is required")
			}
			if !req.Rate.IsPositive() {
				errs.Add("rate", "Rate must be greater than zero")
			}
			return errs
		}
		invoice.WorkItems = items
		return nil
	})
}

func (s *Service) UpdateWorkItem(ctx context.Context, id, itemID string, req domain.UpdateWorkItemRequest) (domain.Invoice, error) {
	return s.mutate(ctx, "update_work_item", id, func(invoice *domain.Invoice) error {
		if !invoice.Editable() {
			return domain.ErrNotEditable
		}
		if !req.Field.Valid() {
			return domain.ErrInvalidField
		}
		if req.Field == domain.FieldDescription && strings.TrimSpace(req.Value) == "" {
			return validation.Errors{"description": "Description is required"}
		}
		items, ok := domain.UpdateWorkItem(invoice.WorkItems, itemID, req.Field, req.Value)
		if !ok {
			return domain.ErrWorkItemNotFound
		}
		invoice.WorkItems = items
		return nil
	})
}

func (s *Service) RemoveWorkItem(ctx context.Context, id, itemID string) (domain.Invoice, error) {
	return s.mutate(ctx, "remove_work_item", id, func(invoice *domain.Invoice) error {
		if !invoice.Editable() {
			return domain.ErrNotEditable
		}
		items, ok := domain.RemoveWorkItem(invoice.WorkItems, itemID)
		if !ok {
			return domain.ErrWorkItemNotFound
		}
		if len(items) == 0 {
			return validation.Errors{"workItems": "At least one work item is required"}
		}
		invoice.WorkItems = items
		return nil
	})
}

func (s *Service) SetTaxRate(ctx context.Context, id string, rate decimal.Decimal) (domain.Invoice, error) {
	return s.mutate(ctx, "set_tax_rate", id, func(invoice *domain.Invoice) error {
		if errs := domain.ValidateTaxRate(rate); len(errs) > 0 {
			return errs
		}
		if !invoice.Editable() {
			return domain.ErrNotEditable
		}
		invoice.TaxRate = rate
		return nil
	})
}

func (s *Service) SetLogo(ctx context.Context, id string, req domain.SetLogoRequest) (domain.Invoice, error) {
	return s.mutate(ctx, "set_logo", id, func(invoice *domain.Invoice) error {
		if !invoice.Editable() {
			return domain.ErrNotEditable
		}
		contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
		if !strings.HasPrefix(contentType, "image/") {
			return domain.ErrUnsupportedLogo
		}
		if len(req.Data) == 0 {
			return domain.ErrEmptyLogo
		}
		if len(req.Data) > domain.MaxLogoBytes {
			return domain.ErrLogoTooLarge
		}
		invoice.LogoURL = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(req.Data)
		return nil
	})
}

func (s *Service) MarkAsPaid(ctx context.Context, id string) (domain.Invoice, error) {
	invoice, err := s.mutate(ctx, "mark_paid", id, func(invoice *domain.Invoice) error {
		if invoice.Status == domain.StatusPaid {
			return domain.ErrAlreadyPaid
		}
		paidAt := s.clock.Now()
		invoice.Status = domain.StatusPaid
		invoice.PaidAt = &paidAt
		return nil
	})
	if err == nil {
		s.log.Info("invoice paid",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("amount", invoice.Amount.String()),
		)
	}
	return invoice, err
}

func (s *Service) Duplicate(ctx context.Context, id string) (domain.Invoice, error) {
	var duplicate domain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		original, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		today := clock.StartOfDay(now)

		duplicate = original.Clone()
		duplicate.ID = s.genID.Generate()
		duplicate.Status = domain.StatusPending
		duplicate.PaidAt = nil
		duplicate.IssuedDate = today
		duplicate.DueDate = today.Add(original.PaymentTerm())
		duplicate.CreatedAt = now
		duplicate.UpdatedAt = now
		for i := range duplicate.WorkItems {
			duplicate.WorkItems[i].ID = domain.NewWorkItemID()
		}
		duplicate.Recalculate()

		number, err := s.nextNumber(ctx, tx, today)
		if err != nil {
			return err
		}
		duplicate.InvoiceNumber = number
		return s.repo.Insert(ctx, tx, &duplicate)
	})
	s.metrics.RecordInvoiceOperation("duplicate", err)
	if err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("invoice duplicated",
		zap.String("source_id", id),
		zap.String("invoice_id", duplicate.ID.String()),
		zap.String("invoice_number", duplicate.InvoiceNumber),
	)
	return duplicate, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	invoiceID, err := parseID(id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, s.db, invoiceID)
	if err == nil && !deleted {
		err = domain.ErrNotFound
	}
	s.metrics.RecordInvoiceOperation("delete", err)
	if err != nil {
		return err
	}
	s.log.Info("invoice deleted", zap.String("invoice_id", id))
	return nil
}

func (s *Service) Preview(ctx context.Context, draft domain.Draft) (domain.Invoice, error) {
	_ = ctx
	now := s.clock.Now()
	if errs := domain.ValidateDraft(draft, now); len(errs) > 0 {
		return domain.Invoice{}, errs
	}

	due, _ := domain.ParseDate(draft.DueDate)
	invoice := domain.Invoice{
		InvoiceNumber: format.ProvisionalNumber(now),
		Client:        strings.TrimSpace(draft.Client),
		WorkItems:     draft.Items(),
		TaxRate:       taxRateOrZero(draft.TaxRate),
		Status:        domain.StatusPending,
		IssuedDate:    clock.StartOfDay(now),
		DueDate:       due,
		LogoURL:       strings.TrimSpace(draft.LogoURL),
		Notes:         strings.TrimSpace(draft.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	invoice.Recalculate()
	return invoice, nil
}

// mutate loads the invoice, applies fn, recomputes totals and persists the
// result in one transaction.
func (s *Service) mutate(ctx context.Context, action, id string, fn func(*domain.Invoice) error) (domain.Invoice, error) {
	var out domain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(invoice); err != nil {
			return err
		}
		invoice.Recalculate()
		invoice.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, invoice); err != nil {
			return err
		}
		out = *invoice
		return nil
	})
	s.metrics.RecordInvoiceOperation(action, err)
	if err != nil {
		s.log.Debug("invoice mutation rejected",
			zap.String("action", action),
			zap.String("invoice_id", id),
			zap.Error(err),
		)
		return domain.Invoice{}, err
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, db *gorm.DB, id string) (*domain.Invoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	invoice, err := s.repo.FindByID(ctx, db, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func (s *Service) nextNumber(ctx context.Context, tx *gorm.DB, issued time.Time) (string, error) {
	seq, err := s.repo.NextSequence(ctx, tx, issued.Year())
	if err != nil {
		return "", err
	}
	template := s.invoicing.Get().NumberTemplate
	if template == "" {
		template = format.DefaultInvoiceNumberTemplate
	}
	return format.FormatInvoiceNumber(template, issued, seq)
}

func parseID(id string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return 0, domain.ErrInvalidID
	}
	return parsed, nil
}

func parseStatusFilter(raw string) (domain.InvoiceStatus, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "all" {
		return "", nil
	}
	status := domain.InvoiceStatus(raw)
	if !status.Valid() {
		return "", domain.ErrInvalidStatus
	}
	return status, nil
}

func taxRateOrZero(rate *decimal.Decimal) decimal.Decimal {
	if rate == nil {
		return decimal.Zero
	}
	return domain.NormalizeTaxRate(*rate)
}
