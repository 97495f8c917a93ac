package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/freelanceflow/internal/clock"
	"github.com/smallbiznis/freelanceflow/pkg/validation"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DraftWorkItem is a work item as submitted by the form layer.
type DraftWorkItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

// Draft is unsaved invoice data collected from the form layer.
type Draft struct {
	Client    string           `json:"client" validate:"required"`
	DueDate   string           `json:"dueDate" validate:"required,datetime=2006-01-02"`
	WorkItems []DraftWorkItem  `json:"workItems" validate:"gte=1"`
	TaxRate   *decimal.Decimal `json:"taxRate,omitempty"`
	Notes     string           `json:"notes,omitempty" validate:"max=2000"`
	LogoURL   string           `json:"logoUrl,omitempty"`
}

var draftMessages = map[string]string{
	"client":           "Client is required",
	"dueDate.required": "Due date is required",
	"dueDate.datetime": "Due date must be a valid date (YYYY-MM-DD)",
	"workItems":        "At least one work item is required",
	"notes":            "Notes must be at most 2000 characters",
}

// ValidateDraft checks a draft against the creation rules and returns a
// field keyed message map. An empty map means the draft is valid.
func ValidateDraft(d Draft, now time.Time) validation.Errors {
	errs := validation.Struct(d, draftMessages)

	if _, failed := errs["client"]; !failed && strings.TrimSpace(d.Client) == "" {
		errs.Add("client", draftMessages["client"])
	}

	if _, failed := errs["workItems"]; !failed {
		for _, item := range d.WorkItems {
			if strings.TrimSpace(item.Description) == "" {
				errs.Add("workItems", "Work item description is required")
				break
			}
			if !item.Rate.IsPositive() {
				errs.Add("workItems", "Work item rate must be greater than zero")
				break
			}
		}
	}

	if _, failed := errs["dueDate"]; !failed {
		if due, err := ParseDate(d.DueDate); err == nil && due.Before(clock.StartOfDay(now)) {
			errs.Add("dueDate", "Due date cannot be in the past")
		}
	}

	if d.TaxRate != nil && (d.TaxRate.IsNegative() || d.TaxRate.GreaterThan(hundred)) {
		errs.Add("taxRate", "Tax rate must be between 0 and 100")
	}

	return errs
}

// ValidateTaxRate checks a standalone tax rate edit.
func ValidateTaxRate(rate decimal.Decimal) validation.Errors {
	errs := validation.Errors{}
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		errs.Add("taxRate", "Tax rate must be between 0 and 100")
	}
	return errs
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
}

// Items converts the draft lines into work items with fresh ids.
func (d Draft) Items() []WorkItem {
	items := make([]WorkItem, 0, len(d.WorkItems))
	for _, line := range d.WorkItems {
		items = append(items, NewWorkItem(line.Description, line.Quantity, line.Rate))
	}
	return items
}
