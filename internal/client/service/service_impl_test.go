package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/freelanceflow/internal/client/domain"
	"github.com/smallbiznis/freelanceflow/internal/client/repository"
	"github.com/smallbiznis/freelanceflow/internal/clock"
	"github.com/smallbiznis/freelanceflow/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repository.Migrate(db))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	return New(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(db),
		Clock: clock.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)),
	})
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	created, err := svc.Create(ctx, domain.CreateClientRequest{
		Name:  " Acme Corp ",
		Email: "Billing@Acme.test",
		Phone: "+1 (555) 123-4567",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", created.Name)
	assert.Equal(t, "billing@acme.test", created.Email)
	assert.Equal(t, domain.StatusActive, created.Status)

	got, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "+1 (555) 123-4567", got.Phone)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := setup(t)

	_, err := svc.Create(context.Background(), domain.CreateClientRequest{Name: "A", Email: "nope"})

	verrs, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, "Name must be at least 2 characters", verrs["name"])
	assert.Equal(t, "Please enter a valid email address", verrs["email"])
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	_, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Acme", Email: "a@acme.test"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateClientRequest{Name: "Acme Two", Email: "A@acme.test"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestListFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	for _, req := range []domain.CreateClientRequest{
		{Name: "Zeta Labs", Email: "z@zeta.test"},
		{Name: "Acme Corp", Email: "a@acme.test", Company: "Acme Holdings"},
		{Name: "Old Client", Email: "o@old.test", Status: domain.StatusInactive},
	} {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, domain.ListClientRequest{Status: "all"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Acme Corp", all[0].Name)

	active, err := svc.List(ctx, domain.ListClientRequest{Status: "active"})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	found, err := svc.List(ctx, domain.ListClientRequest{Search: "holdings"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Acme Corp", found[0].Name)

	_, err = svc.List(ctx, domain.ListClientRequest{Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestGetByIDErrors(t *testing.T) {
	svc := setup(t)

	_, err := svc.GetByID(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.GetByID(context.Background(), "12345")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateReplacesFields(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	created, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Acme", Email: "a@acme.test"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID.String(), domain.UpdateClientRequest{
		Name:    "Acme Holdings",
		Email:   "A@Acme.test",
		Company: "Acme Holdings Ltd",
		Status:  domain.StatusInactive,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "a@acme.test", updated.Email)
	assert.Equal(t, domain.StatusInactive, updated.Status)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	got, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Acme Holdings", got.Name)
	assert.Equal(t, "Acme Holdings Ltd", got.Company)
}

func TestUpdateRejectsEmailOfAnotherClient(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	_, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Acme", Email: "a@acme.test"})
	require.NoError(t, err)
	other, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Globex", Email: "g@globex.test"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, other.ID.String(), domain.UpdateClientRequest{Name: "Globex", Email: "a@acme.test"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUpdateErrors(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	created, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Acme", Email: "a@acme.test"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "nope", domain.UpdateClientRequest{Name: "Acme", Email: "a@acme.test"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.Update(ctx, "42", domain.UpdateClientRequest{Name: "Acme", Email: "a@acme.test"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Update(ctx, created.ID.String(), domain.UpdateClientRequest{Name: "A", Email: "a@acme.test"})
	verrs, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, "Name must be at least 2 characters", verrs["name"])
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	created, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Acme", Email: "a@acme.test"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID.String()))

	_, err = svc.GetByID(ctx, created.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID.String()), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "0"), domain.ErrInvalidID)

	_, err = svc.Create(ctx, domain.CreateClientRequest{Name: "Acme Again", Email: "a@acme.test"})
	assert.NoError(t, err)
}
