package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/freelanceflow/internal/clock"
	"github.com/smallbiznis/freelanceflow/internal/config"
	"github.com/smallbiznis/freelanceflow/internal/invoice/domain"
	"github.com/smallbiznis/freelanceflow/internal/invoice/repository"
	"github.com/smallbiznis/freelanceflow/internal/observability/metrics"
	"github.com/smallbiznis/freelanceflow/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	clock *clock.FakeClock
	reg   *prometheus.Registry
}

func setup(t *testing.T) fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	require.NoError(t, repository.Migrate(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg, metrics.Config{})
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repository.Provide(),
		Clock:     fc,
		Invoicing: config.NewStaticInvoicingConfig(config.DefaultInvoicingConfig()),
		Metrics:   m,
	})
	return fixture{svc: svc, db: db, clock: fc, reg: reg}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleDraft() domain.Draft {
	rate := dec("8")
	return domain.Draft{
		Client:  "Acme Corp",
		DueDate: "2026-04-09",
		TaxRate: &rate,
		Notes:   "Net 30",
		WorkItems: []domain.DraftWorkItem{
			{Description: "Website redesign", Quantity: dec("40"), Rate: dec("150")},
			{Description: "Content migration", Quantity: dec("20"), Rate: dec("75")},
		},
	}
}

func TestCreateAssignsSequentialNumbers(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	first, err := f.svc.Create(ctx, sampleDraft())
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, sampleDraft())
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-001", first.InvoiceNumber)
	assert.Equal(t, "INV-2026-002", second.InvoiceNumber)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, domain.StatusPending, first.Status)
	assert.True(t, dec("7500").Equal(first.Subtotal))
	assert.True(t, dec("600").Equal(first.TaxAmount))
	assert.True(t, dec("8100").Equal(first.Amount))
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), first.IssuedDate)
	series, err := testutil.GatherAndCount(f.reg, "freelanceflow_invoice_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series)
}

func TestCreateNumbersSurviveDeletes(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	first, err := f.svc.Create(ctx, sampleDraft())
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, first.ID.String()))

	second, err := f.svc.Create(ctx, sampleDraft())
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-002", second.InvoiceNumber)
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	draft := sampleDraft()
	draft.Client = ""
	draft.WorkItems = nil
	draft.DueDate = "2026-03-01"

	_, err := f.svc.Create(ctx, draft)
	errs, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, "Client is required", errs["client"])
	assert.Equal(t, "At least one work item is required", errs["workItems"])
	assert.Equal(t, "Due date cannot be in the past", errs["dueDate"])

	list, err := f.svc.List(ctx, domain.ListInvoiceRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateWithoutTaxRate(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	draft := sampleDraft()
	draft.TaxRate = nil
	inv, err := f.svc.Create(ctx, draft)
	require.NoError(t, err)
	assert.False(t, inv.HasTax())
	assert.True(t, inv.TaxAmount.IsZero())
	assert.True(t, inv.Amount.Equal(inv.Subtotal))
}

func TestUpdateWorkItemRateChangesSubtotalByDelta(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	inv, err := f.svc.Create(ctx, sampleDraft())
	require.NoError(t, err)
	target := inv.WorkItems[0]
	other := inv.WorkItems[1]

	updated, err := f.svc.UpdateWorkItem(ctx, inv.ID.String(), target.ID, domain.UpdateWorkItemRequest{
		Field: domain.FieldRate,
		Value: "200",
	})
	require.NoError(t, err)

	assert.True(t, dec("8000").Equal(updated.WorkItems[0].Amount))
	assert.True(t, updated.Subtotal.Sub(inv.Subtotal).Equal(dec("2000")))
	assert.True(t, other.Amount.Equal(updated.WorkItems[1].Amount))
	assert.True(t, updated.Amount.Equal(updated.Subtotal.Add(updated.TaxAmount)))

	stored, err := f.svc.GetByID(ctx, inv.ID.String())
	require.NoError(t, err)
	assert.True(t, dec("9500").Equal(stored.Subtotal))
}

func TestWorkItemErrors(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	inv, err := f.svc.Create(ctx, sampleDraft())
	require.NoError(t, err)
	id := inv.ID.String()

	_, err = f.svc.UpdateWorkItem(ctx, id, "missing", domain.UpdateWorkItemRequest{Field: domain.FieldRate, Value: "1"})
	assert.ErrorIs(t, err, domain.ErrWorkItemNotFound)

	_, err = f.svc.UpdateWorkItem(ctx, id, inv.WorkItems[0].ID, domain.UpdateWorkItemRequest{Field: "amount", Value: "1"})
	assert.ErrorIs(t, err, domain.ErrInvalidField)

	_, err = f.svc.RemoveWorkItem(ctx, id, "missing")
	assert.ErrorIs(t, err, domain.ErrWorkItemNotFound)

	_, err = f.svc.AddWorkItem(ctx, id, domain.AddWorkItemRequest{Description: " ", Quantity: dec("1"), Rate: dec("0")})
	errs, ok := validation.As(err)
	require.True(t, ok)
	assert.Contains(t, errs, "description")
	assert.Contains(t, errs, "rate")

	_, err = f.svc.GetByID(ctx, "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestAddAndRemoveWorkItems(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	inv, err := f.svc.Create(ctx, sampleDraft())
	require.NoError(t, err)
	id := inv.ID.String()

	inv, err = f.svc.AddWorkItem(ctx, id, domain.AddWorkItemRequest{Description: "Hosting", Quantity: dec("12"), Rate: dec("10")})
	require.NoError(t, err)
	require.Len(t, inv.WorkItems, 3)
	assert.Equal(t, "Hosting", inv.WorkItems[2].Description)
	assert.True(t, dec("7620").Equal(inv.Subtotal))

	inv, err = f.svc.RemoveWorkItem(ctx, id, inv.WorkItems[0].ID)
	require.NoError(t, err)
	inv, err = f.svc.RemoveWorkItem(ctx, id, inv.WorkItems[0].ID)
	require.NoError(t, err)
	require.Len(t, inv.WorkItems, 1)

	_, err = f.svc.RemoveWorkItem(ctx, id, inv.WorkItems[0].ID)
	errs, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, "At least one work item is required", errs["workItems"])
}

func TestSetTaxRate(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	inv, err := f.svc.Create(ctx, sampleDraft())
	require.NoError(t, err)

	inv, err = f.svc.SetTaxRate(ctx, inv.ID.String(), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, inv.TaxAmount.IsZero())
	assert.True(t, dec("7500").Equal(inv.Amount))

	_, err = f.svc.SetTaxRate(ctx, inv.ID.String(), dec("150"))
	_, ok := validation.As(err)
	assert.True(t, ok)
}

func TestMarkAsPaidClearsOverdue(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	inv, err := f.svc.Create(ctx, sampleDraft())
	require.NoError(t, err)

	f.clock.Advance(60 * 24 * time.Hour)
	now := f.clock.Now()
	assert.Equal(t, domain.StatusOverdue, inv.DisplayStatus(now))

	overdue, err := f.svc.List(ctx, domain.ListInvoiceRequest{Status: "overdue"})
	require.NoError(t, err)
	assert.Len(t, overdue, 1)

	paid, err := f.svc.MarkAsPaid(ctx, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.DisplayStatus(now))
	assert.False(t, paid.IsOverdue(now))
	assert.True(t, paid.DueDate.Equal(inv.DueDate))
	require.NotNil(t, paid.PaidAt)

	_, err = f.svc.MarkAsPaid(ctx, inv.ID.String())
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)

	_, err = f.svc.AddWorkItem(ctx, inv.ID.String(), domain.AddWorkItemRequest{Description: "Late fee", Quantity: dec("1"), Rate: dec("50")})
	assert.ErrorIs(t, err, domain.ErrNotEditable)

	overdue, err = f.svc.List(ctx, domain.ListInvoiceRequest{Status: "overdue"})
	require.NoError(t, err)
	assert.Empty(t, overdue)
}

func TestDuplicateDeepCopies(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	original, err := f.svc.Create(ctx, sampleDraft())
	require.NoError(t, err)
	_, err = f.svc.MarkAsPaid(ctx, original.ID.String())
	require.NoError(t, err)

	f.clock.Advance(5 * 24 * time.Hour)
	dup, err := f.svc.Duplicate(ctx, original.ID.String())
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, dup.ID)
	assert.NotEqual(t, original.InvoiceNumber, dup.InvoiceNumber)
	assert.Equal(t, domain.StatusPending, dup.Status)
	assert.Nil(t, dup.PaidAt)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), dup.IssuedDate)
	assert.Equal(t, time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC), dup.DueDate)
	require.Len(t, dup.WorkItems, len(original.WorkItems))
	for i := range dup.WorkItems {
		assert.NotEqual(t, original.WorkItems[i].ID, dup.WorkItems[i].ID)
		assert.Equal(t, original.WorkItems[i].Description, dup.WorkItems[i].Description)
	}
	assert.True(t, original.Amount.Equal(dup.Amount))

	_, err = f.svc.UpdateWorkItem(ctx, dup.ID.String(), dup.WorkItems[0].ID, domain.UpdateWorkItemRequest{
		Field: domain.FieldDescription,
		Value: "Changed on duplicate",
	})
	require.NoError(t, err)

	stored, err := f.svc.GetByID(ctx, original.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Website redesign", stored.WorkItems[0].Description)
}

func TestDeleteIsPermanent(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	inv, err := f.svc.Create(ctx, sampleDraft())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, inv.ID.String()))
	_, err = f.svc.GetByID(ctx, inv.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, inv.ID.String()), domain.ErrNotFound)
}

func TestSetLogo(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	inv, err := f.svc.Create(ctx, sampleDraft())
	require.NoError(t, err)
	id := inv.ID.String()

	inv, err = f.svc.SetLogo(ctx, id, domain.SetLogoRequest{ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(inv.LogoURL, "data:image/png;base64,"))

	_, err = f.svc.SetLogo(ctx, id, domain.SetLogoRequest{ContentType: "application/pdf", Data: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedLogo)

	_, err = f.svc.SetLogo(ctx, id, domain.SetLogoRequest{ContentType: "image/png", Data: make([]byte, domain.MaxLogoBytes+1)})
	assert.ErrorIs(t, err, domain.ErrLogoTooLarge)

	_, err = f.svc.MarkAsPaid(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.SetLogo(ctx, id, domain.SetLogoRequest{ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}})
	assert.ErrorIs(t, err, domain.ErrNotEditable)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	f := setup(t)
	_, err := f.svc.List(context.Background(), domain.ListInvoiceRequest{Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestPreviewUsesProvisionalNumber(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	inv, err := f.svc.Preview(ctx, sampleDraft())
	require.NoError(t, err)
	assert.Regexp(t, `^INV-\d{6}$`, inv.InvoiceNumber)
	assert.True(t, dec("8100").Equal(inv.Amount))

	list, err := f.svc.List(ctx, domain.ListInvoiceRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDefaults(t *testing.T) {
	f := setup(t)
	defaults := f.svc.Defaults(context.Background())
	assert.True(t, dec("8").Equal(defaults.TaxRate))
	assert.Equal(t, "2026-04-09", defaults.DueDate)
}
