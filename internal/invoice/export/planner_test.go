package export

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/freelanceflow/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generatedAt = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func sampleInvoice(items int, taxRate string) domain.Invoice {
	inv := domain.Invoice{
		InvoiceNumber: "INV-2026-001",
		Client:        "Acme Corp",
		TaxRate:       decimal.RequireFromString(taxRate),
		Status:        domain.StatusPending,
		IssuedDate:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC),
	}
	for i := 0; i < items; i++ {
		inv.WorkItems = append(inv.WorkItems, domain.WorkItem{
			ID:          fmt.Sprintf("item-%02d", i),
			Description: fmt.Sprintf("Design sprint %d", i+1),
			Quantity:    decimal.NewFromInt(10),
			Rate:        decimal.NewFromInt(75),
		})
	}
	inv.Recalculate()
	return inv
}

func planFor(inv domain.Invoice) Plan {
	return NewPlanner(50, "Thank you for your business!", "$").Plan(Document{
		Invoice:     inv,
		GeneratedAt: generatedAt,
	})
}

func texts(plan Plan) []string {
	var out []string
	for _, p := range plan.Pages {
		for _, r := range p.Rows() {
			for _, c := range r.Cells {
				if c.Text != "" {
					out = append(out, c.Text)
				}
			}
		}
	}
	return out
}

func TestPlanSinglePageLayoutOrder(t *testing.T) {
	plan := planFor(sampleInvoice(3, "8"))

	require.Len(t, plan.Pages, 1)
	assert.Equal(t, "INV-2026-001.pdf", plan.Filename)

	got := texts(plan)
	order := []string{
		"INVOICE",
		"Invoice Number: INV-2026-001",
		"Issue Date: March 10, 2026",
		"Due Date: April 9, 2026",
		"Bill To:",
		"Acme Corp",
		"Work Items:",
		"Description",
		"Design sprint 1",
		"Subtotal:",
		"$2,250.00",
		"Tax (8%):",
		"$180.00",
		"Total:",
		"$2,430.00",
		"Status: Pending",
		"Thank you for your business!",
		"Generated on March 10, 2026 09:30 UTC",
	}
	idx := 0
	for _, s := range got {
		if idx < len(order) && s == order[idx] {
			idx++
		}
	}
	assert.Equal(t, len(order), idx, "missing or out of order: %v", order[min(idx, len(order)-1)])
}

func TestPlanOmitsTaxLineWithoutTax(t *testing.T) {
	for _, rate := range []string{"0", "-5"} {
		plan := planFor(sampleInvoice(2, rate))
		for _, s := range texts(plan) {
			assert.False(t, strings.HasPrefix(s, "Tax ("), "rate %s produced %q", rate, s)
		}
	}
}

func TestPlanTruncatesLongDescriptions(t *testing.T) {
	inv := sampleInvoice(1, "0")
	inv.WorkItems[0].Description = strings.Repeat("a", 80)

	plan := planFor(inv)

	want := strings.Repeat("a", 47) + "..."
	assert.Contains(t, texts(plan), want)
}

func TestPlanPaginatesOnBlockBoundaries(t *testing.T) {
	inv := sampleInvoice(60, "8")
	plan := planFor(inv)

	require.Greater(t, len(plan.Pages), 1)

	items := 0
	for i, p := range plan.Pages {
		assert.LessOrEqual(t, p.Used, DefaultPageBudget, "page %d overflows", i)
		var used float64
		for _, b := range p.Blocks {
			used += b.Height()
			if b.Kind == BlockItem {
				for _, r := range b.Rows {
					if len(r.Cells) == 4 && strings.HasPrefix(r.Cells[0].Text, "Design sprint") {
						items++
					}
				}
			}
		}
		assert.InDelta(t, p.Used, used, 0.0001)
	}
	assert.Equal(t, 60, items)

	second := plan.Pages[1]
	require.NotEmpty(t, second.Blocks)
	assert.Equal(t, BlockItems, second.Blocks[0].Kind)
	assert.Equal(t, "Description", second.Blocks[0].Rows[0].Cells[0].Text)

	last := plan.Pages[len(plan.Pages)-1]
	assert.Equal(t, BlockFooter, last.Blocks[len(last.Blocks)-1].Kind)
}

func TestPlanKeepsHeadingWithFirstItem(t *testing.T) {
	planner := NewPlanner(50, "", "$")
	planner.Budget = 60

	plan := planner.Plan(Document{Invoice: sampleInvoice(2, "0"), GeneratedAt: generatedAt})

	for _, p := range plan.Pages {
		for _, b := range p.Blocks {
			if b.Rows[0].Cells[0].Text == "Work Items:" {
				last := b.Rows[len(b.Rows)-1]
				assert.Equal(t, "Design sprint 1", last.Cells[0].Text)
				return
			}
		}
	}
	t.Fatal("items heading not found")
}

func TestPlanIsDeterministicExceptGeneratedAt(t *testing.T) {
	inv := sampleInvoice(25, "8")
	inv.Notes = strings.Repeat("Payment by bank transfer please. ", 12)

	first := planFor(inv)
	second := planFor(inv)
	assert.Equal(t, first, second)

	later := NewPlanner(50, "Thank you for your business!", "$").Plan(Document{
		Invoice:     inv,
		GeneratedAt: generatedAt.Add(time.Hour),
	})
	a, b := texts(first), texts(later)
	require.Equal(t, len(a), len(b))
	var diffs []string
	for i := range a {
		if a[i] != b[i] {
			diffs = append(diffs, b[i])
		}
	}
	assert.Equal(t, []string{"Generated on March 10, 2026 10:30 UTC"}, diffs)
}

func TestPlanNotesBlock(t *testing.T) {
	inv := sampleInvoice(1, "0")
	inv.Notes = "Line one\nLine two"

	got := texts(planFor(inv))

	assert.Contains(t, got, "Notes:")
	assert.Contains(t, got, "Line one")
	assert.Contains(t, got, "Line two")
}

func TestPlanLogoCell(t *testing.T) {
	logo := &Logo{Data: []byte{1}, Format: LogoFormatPNG}
	plan := NewPlanner(50, "", "$").Plan(Document{Invoice: sampleInvoice(1, "0"), Logo: logo, GeneratedAt: generatedAt})

	header := plan.Pages[0].Blocks[0].Rows[0]
	assert.Equal(t, 30.0, header.Height)
	assert.Same(t, logo, header.Cells[1].Image)
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"alpha beta", "gamma"}, wrapText("alpha beta gamma", 10))
	assert.Equal(t, []string{"abcde", "fghij", "k"}, wrapText("abcdefghijk", 5))
	assert.Equal(t, []string{"one", "", "two"}, wrapText("one\n\ntwo", 20))
}

func statusCell(t *testing.T, plan Plan) Cell {
	t.Helper()
	for _, p := range plan.Pages {
		for _, r := range p.Rows() {
			for _, c := range r.Cells {
				if strings.HasPrefix(c.Text, "Status: ") {
					return c
				}
			}
		}
	}
	t.Fatal("no status row")
	return Cell{}
}

func TestPlanStatusUsesDisplayStatus(t *testing.T) {
	pending := sampleInvoice(1, "8")
	cell := statusCell(t, planFor(pending))
	assert.Equal(t, "Status: Pending", cell.Text)
	assert.Equal(t, &RGB{R: 245, G: 158, B: 11}, cell.Style.Color)

	overdue := sampleInvoice(1, "8")
	overdue.DueDate = generatedAt.AddDate(0, 0, -3)
	cell = statusCell(t, planFor(overdue))
	assert.Equal(t, "Status: Overdue", cell.Text)
	assert.Equal(t, &RGB{R: 239, G: 68, B: 68}, cell.Style.Color)

	paid := overdue
	paid.Status = domain.StatusPaid
	cell = statusCell(t, planFor(paid))
	assert.Equal(t, "Status: Paid", cell.Text)
	assert.Equal(t, &RGB{R: 34, G: 197, B: 94}, cell.Style.Color)
}
