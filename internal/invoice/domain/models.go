// Package domain contains the invoice financial model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/freelanceflow/internal/clock"
)

// InvoiceStatus represents invoice lifecycle states. Only pending and paid
// are stored; overdue is derived from the due date at read time.
type InvoiceStatus string

const (
	StatusPending InvoiceStatus = "pending"
	StatusPaid    InvoiceStatus = "paid"
	StatusOverdue InvoiceStatus = "overdue"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue:
		return true
	default:
		return false
	}
}

// WorkItem is a single billable line on an invoice.
type WorkItem struct {
	ID          string          `gorm:"primaryKey;type:text" json:"id"`
	InvoiceID   snowflake.ID    `gorm:"not null;index" json:"-"`
	Position    int             `gorm:"not null" json:"-"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:text;not null" json:"quantity"`
	Rate        decimal.Decimal `gorm:"type:text;not null" json:"rate"`
	Amount      decimal.Decimal `gorm:"type:text;not null" json:"amount"`
}

// TableName sets the database table name.
func (WorkItem) TableName() string { return "work_items" }

// Invoice is a header plus an ordered list of work items. Subtotal,
// TaxAmount and Amount are derived; call Recalculate after any change to
// WorkItems or TaxRate.
type Invoice struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"type:text;not null;uniqueIndex" json:"invoiceNumber"`
	Client        string          `gorm:"type:text;not null;index" json:"client"`
	WorkItems     []WorkItem      `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"workItems"`
	TaxRate       decimal.Decimal `gorm:"type:text;not null" json:"taxRate"`
	Subtotal      decimal.Decimal `gorm:"type:text;not null" json:"subtotal"`
	TaxAmount     decimal.Decimal `gorm:"type:text;not null" json:"taxAmount"`
	Amount        decimal.Decimal `gorm:"type:text;not null" json:"amount"`
	Status        InvoiceStatus   `gorm:"type:text;not null;default:'pending'" json:"status"`
	IssuedDate    time.Time       `gorm:"not null" json:"issuedDate"`
	DueDate       time.Time       `gorm:"not null;index" json:"dueDate"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
	LogoURL       string          `gorm:"type:text" json:"logoUrl,omitempty"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updatedAt"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceSequence holds the last issued number sequence per calendar year.
type InvoiceSequence struct {
	Year      int   `gorm:"primaryKey;autoIncrement:false"`
	LastValue int64 `gorm:"not null"`
}

// TableName sets the database table name.
func (InvoiceSequence) TableName() string { return "invoice_sequences" }

// Recalculate derives every item amount and the invoice totals.
func (inv *Invoice) Recalculate() {
	for i := range inv.WorkItems {
		inv.WorkItems[i].Amount = ComputeAmount(inv.WorkItems[i].Quantity, inv.WorkItems[i].Rate)
		inv.WorkItems[i].Position = i
	}
	inv.Subtotal = ComputeSubtotal(inv.WorkItems)
	inv.TaxAmount = ComputeTax(inv.Subtotal, inv.TaxRate)
	inv.Amount = ComputeTotal(inv.Subtotal, inv.TaxAmount)
}

// HasTax reports whether a tax line applies.
func (inv Invoice) HasTax() bool {
	return inv.TaxRate.IsPositive()
}

// IsOverdue reports whether the invoice is unpaid with a due date before today.
func (inv Invoice) IsOverdue(now time.Time) bool {
	if inv.Status == StatusPaid {
		return false
	}
	return inv.DueDate.Before(clock.StartOfDay(now))
}

// DisplayStatus returns the status shown to users at instant now.
func (inv Invoice) DisplayStatus(now time.Time) InvoiceStatus {
	if inv.IsOverdue(now) {
		return StatusOverdue
	}
	if inv.Status == "" {
		return StatusPending
	}
	return inv.Status
}

// Editable reports whether work items and tax may still change.
func (inv Invoice) Editable() bool {
	return inv.Status != StatusPaid
}

// Clone returns a deep copy; mutating the copy's work items leaves inv untouched.
func (inv Invoice) Clone() Invoice {
	out := inv
	out.WorkItems = CloneWorkItems(inv.WorkItems)
	if inv.PaidAt != nil {
		paid := *inv.PaidAt
		out.PaidAt = &paid
	}
	return out
}

// PaymentTerm is the span between issue and due date, never negative.
func (inv Invoice) PaymentTerm() time.Duration {
	term := clock.StartOfDay(inv.DueDate).Sub(clock.StartOfDay(inv.IssuedDate))
	if term < 0 {
		return 0
	}
	return term
}
