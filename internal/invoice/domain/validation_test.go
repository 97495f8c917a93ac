package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var validationNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func validDraft() Draft {
	rate := d("8")
	return Draft{
		Client:  "Acme Corp",
		DueDate: "2026-04-09",
		TaxRate: &rate,
		WorkItems: []DraftWorkItem{
			{Description: "Website redesign", Quantity: d("40"), Rate: d("150")},
		},
	}
}

func TestValidateDraftAcceptsValidDraft(t *testing.T) {
	assert.Empty(t, ValidateDraft(validDraft(), validationNow))
}

func TestValidateDraftDueToday(t *testing.T) {
	draft := validDraft()
	draft.DueDate = "2026-03-10"
	assert.Empty(t, ValidateDraft(draft, validationNow))
}

func TestValidateDraftErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Draft)
		field  string
		msg    string
	}{
		{"missing client", func(d *Draft) { d.Client = "" }, "client", "Client is required"},
		{"blank client", func(d *Draft) { d.Client = "   " }, "client", "Client is required"},
		{"no work items", func(d *Draft) { d.WorkItems = nil }, "workItems", "At least one work item is required"},
		{"blank item", func(d *Draft) { d.WorkItems[0].Description = " " }, "workItems", "Work item description is required"},
		{"free item", func(d *Draft) { d.WorkItems[0].Rate = decimal.Zero }, "workItems", "Work item rate must be greater than zero"},
		{"missing due date", func(d *Draft) { d.DueDate = "" }, "dueDate", "Due date is required"},
		{"malformed due date", func(d *Draft) { d.DueDate = "04/09/2026" }, "dueDate", "Due date must be a valid date (YYYY-MM-DD)"},
		{"past due date", func(d *Draft) { d.DueDate = "2026-03-09" }, "dueDate", "Due date cannot be in the past"},
		{"tax too high", func(d *Draft) { r := d2("101"); d.TaxRate = &r }, "taxRate", "Tax rate must be between 0 and 100"},
		{"negative tax", func(d *Draft) { r := d2("-1"); d.TaxRate = &r }, "taxRate", "Tax rate must be between 0 and 100"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft := validDraft()
			tc.mutate(&draft)
			errs := ValidateDraft(draft, validationNow)
			assert.Equal(t, tc.msg, errs[tc.field])
			assert.Len(t, errs, 1)
		})
	}
}

func TestDraftItemsGetFreshIDs(t *testing.T) {
	draft := validDraft()
	draft.WorkItems = append(draft.WorkItems, DraftWorkItem{Description: "Hosting", Quantity: d("1"), Rate: d("20")})

	first := draft.Items()
	second := draft.Items()
	assert.NotEqual(t, first[0].ID, second[0].ID)
	assert.True(t, d("6000").Equal(first[0].Amount))
}

func d2(s string) decimal.Decimal { return d(s) }
