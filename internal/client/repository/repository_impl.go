package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/freelanceflow/internal/client/domain"
	"github.com/smallbiznis/freelanceflow/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	store repository.Repository[domain.Client]
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{store: repository.ProvideStore[domain.Client](db)}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Client{})
}

func (r *repo) Insert(ctx context.Context, client *domain.Client) error {
	return r.store.Create(ctx, client)
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Client, error) {
	return r.store.FindOne(ctx, &domain.Client{ID: id})
}

func (r *repo) List(ctx context.Context, filter domain.ListClientFilter) ([]*domain.Client, error) {
	opts := []repository.QueryOption{repository.WithOrder("name asc, id asc")}
	if filter.Status != "" {
		opts = append(opts, repository.WithWhere("status = ?", filter.Status))
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		opts = append(opts, repository.WithWhere("(LOWER(name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(email) LIKE ?)", like, like, like))
	}
	return r.store.Find(ctx, nil, opts...)
}

func (r *repo) EmailTaken(ctx context.Context, email string, except snowflake.ID) (bool, error) {
	var opts []repository.QueryOption
	if except != 0 {
		opts = append(opts, repository.WithWhere("id <> ?", except))
	}
	n, err := r.store.Count(ctx, &domain.Client{Email: email}, opts...)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repo) Update(ctx context.Context, client *domain.Client) error {
	return r.store.Save(ctx, client)
}

func (r *repo) Delete(ctx context.Context, id snowflake.ID) (bool, error) {
	n, err := r.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
