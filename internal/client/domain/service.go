package domain

import (
	"context"
	"errors"
)

type ListClientRequest struct {
	Status string
	Search string
}

type CreateClientRequest struct {
	Name    string       `json:"name" validate:"required,min=2,max=100"`
	Email   string       `json:"email" validate:"required,email"`
	Company string       `json:"company,omitempty" validate:"omitempty,min=2,max=100"`
	Phone   string       `json:"phone,omitempty"`
	Address string       `json:"address,omitempty" validate:"max=500"`
	Status  ClientStatus `json:"status,omitempty"`
	Notes   string       `json:"notes,omitempty" validate:"max=2000"`
}

// UpdateClientRequest replaces every editable field of a client.
type UpdateClientRequest CreateClientRequest

type Service interface {
	Create(context.Context, CreateClientRequest) (Client, error)
	List(context.Context, ListClientRequest) ([]Client, error)
	GetByID(ctx context.Context, id string) (Client, error)
	Update(ctx context.Context, id string, req UpdateClientRequest) (Client, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrNotFound      = errors.New("client_not_found")
	ErrEmailTaken    = errors.New("client_email_taken")
)
