package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/freelanceflow/internal/clock"
	"github.com/smallbiznis/freelanceflow/internal/invoice/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Migrate creates the invoice tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Invoice{}, &domain.WorkItem{}, &domain.InvoiceSequence{})
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(invoice).Error; err != nil {
			return err
		}
		return insertItems(tx, invoice)
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).
		Preload("WorkItems", byPosition).
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	invoice.Recalculate()
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Invoice, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Preload("WorkItems", byPosition)

	today := clock.StartOfDay(filter.Now)
	switch filter.Status {
	case domain.StatusPaid:
		stmt = stmt.Where("status = ?", domain.StatusPaid)
	case domain.StatusPending:
		stmt = stmt.Where("status <> ? AND due_date >= ?", domain.StatusPaid, today)
	case domain.StatusOverdue:
		stmt = stmt.Where("status <> ? AND due_date < ?", domain.StatusPaid, today)
	}
	if filter.Client != "" {
		stmt = stmt.Where("client = ?", filter.Client)
	}

	var invoices []domain.Invoice
	if err := stmt.Order("issued_date desc, id desc").Find(&invoices).Error; err != nil {
		return nil, err
	}
	for i := range invoices {
		invoices[i].Recalculate()
	}
	return invoices, nil
}

// Update rewrites the header and replaces the work item list.
func (r *repo) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(invoice).
			Select("*").
			Omit(clause.Associations, "id", "created_at").
			Updates(invoice)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&domain.WorkItem{}).Error; err != nil {
			return err
		}
		return insertItems(tx, invoice)
	})
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var deleted bool
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&domain.WorkItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Invoice{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// NextSequence increments and returns the invoice number sequence for year.
// Sequences never go backwards, so numbers are not reused after deletes.
func (r *repo) NextSequence(ctx context.Context, db *gorm.DB, year int) (int64, error) {
	var next int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		if tx.Dialector.Name() != "sqlite" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var seq domain.InvoiceSequence
		err := query.Where("year = ?", year).First(&seq).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			seq = domain.InvoiceSequence{Year: year, LastValue: 1}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			seq.LastValue++
			if err := tx.Model(&domain.InvoiceSequence{}).
				Where("year = ?", year).
				Update("last_value", seq.LastValue).Error; err != nil {
				return err
			}
		}
		next = seq.LastValue
		return nil
	})
	return next, err
}

func insertItems(tx *gorm.DB, invoice *domain.Invoice) error {
	if len(invoice.WorkItems) == 0 {
		return nil
	}
	for i := range invoice.WorkItems {
		invoice.WorkItems[i].InvoiceID = invoice.ID
		invoice.WorkItems[i].Position = i
	}
	return tx.Create(&invoice.WorkItems).Error
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}
