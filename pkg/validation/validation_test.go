package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
}

func TestStructMapsFieldMessages(t *testing.T) {
	errs := Struct(sample{Name: "a", Email: "nope"}, map[string]string{
		"name.min": "Name must be at least 2 characters",
		"email":    "Please enter a valid email address",
	})

	require.Len(t, errs, 2)
	assert.Equal(t, "Name must be at least 2 characters", errs["name"])
	assert.Equal(t, "Please enter a valid email address", errs["email"])
}

func TestStructValid(t *testing.T) {
	errs := Struct(sample{Name: "Ada", Email: "ada@example.com"}, nil)
	assert.Empty(t, errs)
	assert.NoError(t, errs.Err())
}

func TestErrorsKeepFirstMessage(t *testing.T) {
	errs := Errors{}
	errs.Add("dueDate", "Due date is required")
	errs.Add("dueDate", "Due date cannot be in the past")
	assert.Equal(t, "Due date is required", errs["dueDate"])
}

func TestAsUnwraps(t *testing.T) {
	err := fmt.Errorf("create: %w", Errors{"client": "Client is required"})
	errs, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "Client is required", errs["client"])

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestErrorStringIsSorted(t *testing.T) {
	errs := Errors{"workItems": "b", "client": "a"}
	assert.Equal(t, "validation error: client: a; workItems: b", errs.Error())
}
