// Package validation turns struct-tag validation failures into the
// field→message maps returned to form callers.
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Errors maps a field key to a human-readable message.
type Errors map[string]string

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation error"
	}
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already carries a message.
func (e Errors) Add(field, msg string) {
	if _, exists := e[field]; exists {
		return
	}
	e[field] = msg
}

// Err returns nil when no field failed.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// As extracts Errors from err.
func As(err error) (Errors, bool) {
	var verrs Errors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator keyed by json field names.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v and converts failures into Errors. messages maps
// "field" or "field.tag" to the message to report; unmatched failures fall
// back to a generic message.
func Struct(v any, messages map[string]string) Errors {
	errs := Errors{}
	err := Validator().Struct(v)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Add("request", err.Error())
		return errs
	}

	for _, fe := range fieldErrs {
		field := fe.Field()
		if msg, ok := messages[field+"."+fe.Tag()]; ok {
			errs.Add(field, msg)
			continue
		}
		if msg, ok := messages[field]; ok {
			errs.Add(field, msg)
			continue
		}
		errs.Add(field, field+" is invalid")
	}
	return errs
}
