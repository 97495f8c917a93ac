package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type ListInvoiceRequest struct {
	// Status filters by display status: all, pending, paid or overdue.
	Status string
	Client string
}

type AddWorkItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

type UpdateWorkItemRequest struct {
	Field WorkItemField `json:"field"`
	Value string        `json:"value"`
}

type SetLogoRequest struct {
	ContentType string
	Data        []byte
}

// DraftDefaults pre-fills the creation form.
type DraftDefaults struct {
	TaxRate         decimal.Decimal `json:"taxRate"`
	DueDate         string          `json:"dueDate"`
	PaymentTermDays int             `json:"paymentTermDays"`
}

// MaxLogoBytes caps uploaded logo size.
const MaxLogoBytes = 2 << 20

type Service interface {
	Defaults(ctx context.Context) DraftDefaults
	Create(ctx context.Context, draft Draft) (Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) ([]Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	AddWorkItem(ctx context.Context, id string, req AddWorkItemRequest) (Invoice, error)
	UpdateWorkItem(ctx context.Context, id, itemID string, req UpdateWorkItemRequest) (Invoice, error)
	RemoveWorkItem(ctx context.Context, id, itemID string) (Invoice, error)
	SetTaxRate(ctx context.Context, id string, rate decimal.Decimal) (Invoice, error)
	SetLogo(ctx context.Context, id string, req SetLogoRequest) (Invoice, error)
	MarkAsPaid(ctx context.Context, id string) (Invoice, error)
	Duplicate(ctx context.Context, id string) (Invoice, error)
	Delete(ctx context.Context, id string) error
	// Preview builds an unsaved invoice from a draft with a provisional number.
	Preview(ctx context.Context, draft Draft) (Invoice, error)
}
