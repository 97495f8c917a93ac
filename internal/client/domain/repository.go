package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type ListClientFilter struct {
	Status ClientStatus
	Search string
}

type Repository interface {
	Insert(ctx context.Context, client *Client) error
	FindByID(ctx context.Context, id snowflake.ID) (*Client, error)
	List(ctx context.Context, filter ListClientFilter) ([]*Client, error)
	// EmailTaken reports whether another client than except uses email.
	// A zero except checks every client.
	EmailTaken(ctx context.Context, email string, except snowflake.ID) (bool, error)
	Update(ctx context.Context, client *Client) error
	Delete(ctx context.Context, id snowflake.ID) (bool, error)
}
