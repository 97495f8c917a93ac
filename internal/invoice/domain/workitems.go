package domain

import (
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// WorkItemField names an editable work item attribute.
type WorkItemField string

const (
	FieldDescription WorkItemField = "description"
	FieldQuantity    WorkItemField = "quantity"
	FieldRate        WorkItemField = "rate"
)

func (f WorkItemField) Valid() bool {
	switch f {
	case FieldDescription, FieldQuantity, FieldRate:
		return true
	default:
		return false
	}
}

// NewWorkItemID returns a fresh, lexically sortable work item id.
func NewWorkItemID() string {
	return ulid.Make().String()
}

// NewWorkItem builds an item with its amount derived. Negative quantities
// and rates degrade to zero.
func NewWorkItem(description string, quantity, rate decimal.Decimal) WorkItem {
	quantity = nonNegative(quantity)
	rate = nonNegative(rate)
	return WorkItem{
		ID:          NewWorkItemID(),
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		Rate:        rate,
		Amount:      ComputeAmount(quantity, rate),
	}
}

// AddWorkItem returns a new list with the item appended. It returns the
// input unchanged and false when the description is blank or the rate is
// not positive.
func AddWorkItem(items []WorkItem, description string, quantity, rate decimal.Decimal) ([]WorkItem, bool) {
	if strings.TrimSpace(description) == "" || !rate.IsPositive() {
		return CloneWorkItems(items), false
	}
	out := make([]WorkItem, 0, len(items)+1)
	out = append(out, items...)
	out = append(out, NewWorkItem(description, quantity, rate))
	return out, true
}

// UpdateWorkItem returns a new list where the item matching id has field
// set to value. Quantity and rate values are parsed with ParseAmountInput
// and the amount is recomputed. The second result is false if id is unknown
// or the field is not editable.
func UpdateWorkItem(items []WorkItem, id string, field WorkItemField, value string) ([]WorkItem, bool) {
	out := CloneWorkItems(items)
	if !field.Valid() {
		return out, false
	}
	for i := range out {
		if out[i].ID != id {
			continue
		}
		switch field {
		case FieldDescription:
			out[i].Description = value
		case FieldQuantity:
			out[i].Quantity = ParseAmountInput(value)
		case FieldRate:
			out[i].Rate = ParseAmountInput(value)
		}
		out[i].Amount = ComputeAmount(out[i].Quantity, out[i].Rate)
		return out, true
	}
	return out, false
}

// RemoveWorkItem returns a new list without the item matching id.
func RemoveWorkItem(items []WorkItem, id string) ([]WorkItem, bool) {
	out := make([]WorkItem, 0, len(items))
	found := false
	for _, item := range items {
		if item.ID == id {
			found = true
			continue
		}
		out = append(out, item)
	}
	return out, found
}

// CloneWorkItems copies items into a new backing array.
func CloneWorkItems(items []WorkItem) []WorkItem {
	if items == nil {
		return nil
	}
	out := make([]WorkItem, len(items))
	copy(out, items)
	return out
}

// ParseAmountInput parses a form value. Blank, malformed or negative input
// degrades to zero rather than failing.
func ParseAmountInput(value string) decimal.Decimal {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return nonNegative(d)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
