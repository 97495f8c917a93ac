package server

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	clientdomain "github.com/smallbiznis/freelanceflow/internal/client/domain"
	invoicedomain "github.com/smallbiznis/freelanceflow/internal/invoice/domain"
	"github.com/smallbiznis/freelanceflow/internal/notify"
	"github.com/smallbiznis/freelanceflow/pkg/validation"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrExportFailed   = errors.New("export_failed")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// exportError carries the human-readable message from a failed export.
type exportError struct {
	message string
}

func (e *exportError) Error() string { return e.message }

func (e *exportError) Unwrap() error { return ErrExportFailed }

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if fieldErrs, ok := validation.As(err); ok {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  fromFieldErrors(fieldErrs),
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(err),
					Code:    code,
					Message: validationErrorMessage(err),
				},
			},
		}
	}

	var expErr *exportError
	switch {
	case errors.As(err, &expErr):
		return http.StatusInternalServerError, errorPayload{
			Type:    "export_failed",
			Message: expErr.message,
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, invoicedomain.ErrAlreadyPaid),
		errors.Is(err, invoicedomain.ErrNotEditable),
		errors.Is(err, clientdomain.ErrEmailTaken):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func fromFieldErrors(errs validation.Errors) []ValidationError {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]ValidationError, 0, len(fields))
	for _, field := range fields {
		out = append(out, ValidationError{Field: field, Code: "invalid", Message: errs[field]})
	}
	return out
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidStatus),
		errors.Is(err, invoicedomain.ErrInvalidField),
		errors.Is(err, invoicedomain.ErrUnsupportedLogo),
		errors.Is(err, invoicedomain.ErrLogoTooLarge),
		errors.Is(err, invoicedomain.ErrEmptyLogo),
		errors.Is(err, clientdomain.ErrInvalidID),
		errors.Is(err, clientdomain.ErrInvalidStatus):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrWorkItemNotFound),
		errors.Is(err, clientdomain.ErrNotFound),
		errors.Is(err, notify.ErrUnknownConfirmation),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(err error) string {
	switch {
	case errors.Is(err, invoicedomain.ErrInvalidID), errors.Is(err, clientdomain.ErrInvalidID):
		return "id"
	case errors.Is(err, invoicedomain.ErrInvalidStatus), errors.Is(err, clientdomain.ErrInvalidStatus):
		return "status"
	case errors.Is(err, invoicedomain.ErrInvalidField):
		return "field"
	case errors.Is(err, invoicedomain.ErrUnsupportedLogo),
		errors.Is(err, invoicedomain.ErrLogoTooLarge),
		errors.Is(err, invoicedomain.ErrEmptyLogo):
		return "logo"
	default:
		return "request"
	}
}

func validationErrorMessage(err error) string {
	switch {
	case errors.Is(err, invoicedomain.ErrUnsupportedLogo):
		return "File must be an image"
	case errors.Is(err, invoicedomain.ErrLogoTooLarge):
		return "File size must be less than 2MB"
	case errors.Is(err, invoicedomain.ErrEmptyLogo):
		return "No file received"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid request"
	default:
		return "invalid value"
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, invoicedomain.ErrAlreadyPaid):
		return "invoice is already paid"
	case errors.Is(err, invoicedomain.ErrNotEditable):
		return "paid invoices cannot be edited"
	case errors.Is(err, clientdomain.ErrEmailTaken):
		return "a client with this email already exists"
	default:
		return "conflict"
	}
}

// classifyErrorForLog labels request errors in access logs.
func classifyErrorForLog(err error) string {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return "internal"
	}
	return payload.Type
}
