package domain

import (
	"regexp"
	"strings"

	"github.com/smallbiznis/freelanceflow/pkg/validation"
)

var (
	phonePattern    = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

var clientMessages = map[string]string{
	"name.required":  "Name is required",
	"name.min":       "Name must be at least 2 characters",
	"name.max":       "Name must be less than 100 characters",
	"email.required": "Email is required",
	"email.email":    "Please enter a valid email address",
	"company.min":    "Company must be at least 2 characters",
	"company.max":    "Company must be less than 100 characters",
	"address":        "Address must be at most 500 characters",
	"notes":          "Notes must be at most 2000 characters",
}

// Normalize trims every text field and lowercases the email.
func (r CreateClientRequest) Normalize() CreateClientRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Company = strings.TrimSpace(r.Company)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
	r.Notes = strings.TrimSpace(r.Notes)
	if r.Status == "" {
		r.Status = StatusActive
	}
	return r
}

// ValidateCreate checks a normalized request against the client form rules.
func ValidateCreate(r CreateClientRequest) validation.Errors {
	errs := validation.Struct(r, clientMessages)
	if r.Phone != "" && !ValidPhone(r.Phone) {
		errs.Add("phone", "Please enter a valid phone number")
	}
	if !r.Status.Valid() {
		errs.Add("status", "Status must be active or inactive")
	}
	return errs
}

// ValidPhone accepts an optional leading plus and up to 16 digits once
// spaces, dashes and parentheses are removed.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phoneSeparators.Replace(phone))
}
