package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddWorkItemAppendsInOrder(t *testing.T) {
	items, ok := AddWorkItem(nil, "Design", d("2"), d("50"))
	require.True(t, ok)
	items, ok = AddWorkItem(items, "Build", d("3"), d("80"))
	require.True(t, ok)

	require.Len(t, items, 2)
	assert.Equal(t, "Design", items[0].Description)
	assert.Equal(t, "Build", items[1].Description)
	assert.True(t, d("240").Equal(items[1].Amount))
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestAddWorkItemRejectsInvalidInput(t *testing.T) {
	base, _ := AddWorkItem(nil, "Design", d("1"), d("50"))

	cases := map[string]struct {
		description string
		rate        decimal.Decimal
	}{
		"blank description": {description: "   ", rate: d("10")},
		"zero rate":         {description: "Build", rate: decimal.Zero},
		"negative rate":     {description: "Build", rate: d("-1")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			out, ok := AddWorkItem(base, tc.description, d("1"), tc.rate)
			assert.False(t, ok)
			assert.Equal(t, base, out)
		})
	}
}

func TestAddWorkItemDoesNotMutateInput(t *testing.T) {
	base := make([]WorkItem, 1, 4)
	base[0] = NewWorkItem("Design", d("1"), d("50"))

	out, ok := AddWorkItem(base, "Build", d("1"), d("10"))
	require.True(t, ok)
	out[0].Description = "changed"
	assert.Equal(t, "Design", base[0].Description)
}

func TestUpdateWorkItemRecomputesAmount(t *testing.T) {
	inv := sampleInvoice()
	target := inv.WorkItems[0]
	other := inv.WorkItems[1]
	before := inv.Subtotal

	items, ok := UpdateWorkItem(inv.WorkItems, target.ID, FieldRate, "200")
	require.True(t, ok)

	updated := Invoice{WorkItems: items, TaxRate: inv.TaxRate}
	updated.Recalculate()

	assert.True(t, d("6000").Equal(target.Amount))
	assert.True(t, d("8000").Equal(updated.WorkItems[0].Amount))
	assert.True(t, updated.Subtotal.Sub(before).Equal(d("2000")))
	assert.Equal(t, other, updated.WorkItems[1])
	// original untouched
	assert.True(t, d("150").Equal(inv.WorkItems[0].Rate))
}

func TestUpdateWorkItemDegradesInvalidNumbers(t *testing.T) {
	inv := sampleInvoice()
	other := inv.WorkItems[1]

	for _, raw := range []string{"NaN", "abc", "-3", ""} {
		items, ok := UpdateWorkItem(inv.WorkItems, inv.WorkItems[0].ID, FieldQuantity, raw)
		require.True(t, ok, raw)
		assert.True(t, items[0].Quantity.IsZero(), raw)
		assert.True(t, items[0].Amount.IsZero(), raw)
		assert.Equal(t, other, items[1], raw)
	}
}

func TestUpdateWorkItemUnknownIDIsNoop(t *testing.T) {
	inv := sampleInvoice()
	items, ok := UpdateWorkItem(inv.WorkItems, "missing", FieldRate, "1")
	assert.False(t, ok)
	assert.Equal(t, inv.WorkItems, items)

	items, ok = UpdateWorkItem(inv.WorkItems, inv.WorkItems[0].ID, WorkItemField("amount"), "1")
	assert.False(t, ok)
	assert.Equal(t, inv.WorkItems, items)
}

func TestUpdateWorkItemDescription(t *testing.T) {
	inv := sampleInvoice()
	items, ok := UpdateWorkItem(inv.WorkItems, inv.WorkItems[1].ID, FieldDescription, "Copywriting")
	require.True(t, ok)
	assert.Equal(t, "Copywriting", items[1].Description)
	assert.True(t, inv.WorkItems[1].Amount.Equal(items[1].Amount))
}

func TestRemoveWorkItem(t *testing.T) {
	inv := sampleInvoice()

	items, ok := RemoveWorkItem(inv.WorkItems, inv.WorkItems[0].ID)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, inv.WorkItems[1].ID, items[0].ID)
	assert.Len(t, inv.WorkItems, 2)

	items, ok = RemoveWorkItem(inv.WorkItems, "missing")
	assert.False(t, ok)
	assert.Len(t, items, 2)
}

func TestParseAmountInput(t *testing.T) {
	assert.True(t, d("12.5").Equal(ParseAmountInput(" 12.5 ")))
	assert.True(t, ParseAmountInput("NaN").IsZero())
	assert.True(t, ParseAmountInput("-1").IsZero())
	assert.True(t, ParseAmountInput("").IsZero())
}
