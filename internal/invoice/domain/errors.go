package domain

import "errors"

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("invoice_not_found")
	ErrWorkItemNotFound = errors.New("work_item_not_found")
	ErrAlreadyPaid      = errors.New("invoice_already_paid")
	ErrNotEditable      = errors.New("invoice_not_editable")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidField     = errors.New("invalid_work_item_field")
	ErrUnsupportedLogo  = errors.New("unsupported_logo_type")
	ErrLogoTooLarge     = errors.New("logo_too_large")
	ErrEmptyLogo        = errors.New("empty_logo")
)
