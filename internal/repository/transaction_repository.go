package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/nany306/bunny-assistant/internal/model"
)

// TransactionRepository persists ledger entries.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// SaveAll upserts every entry in one transaction. An entry without an id is
// inserted and gets the assigned id written back; one with an id is updated
// in place. As with events, id write-backs are applied only after the
// transaction commits.
func (r *TransactionRepository) SaveAll(ctx context.Context, entries []*model.Transaction) error {
	staged := make([]model.Transaction, len(entries))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, entry := range entries {
			staged[i] = *entry
			if staged[i].ID == 0 {
				if err := tx.Create(&staged[i]).Error; err != nil {
					return fmt.Errorf("insert transaction: %w", err)
				}
				continue
			}
			if err := tx.Save(&staged[i]).Error; err != nil {
				return fmt.Errorf("update transaction %d: %w", staged[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i, entry := range entries {
		entry.ID = staged[i].ID
		entry.CreatedAt = staged[i].CreatedAt
	}
	return nil
}

// LoadAll returns every ledger entry, oldest first.
func (r *TransactionRepository) LoadAll(ctx context.Context) ([]*model.Transaction, error) {
	var entries []*model.Transaction
	if err := r.db.WithContext(ctx).
		Order("created_at, id").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return entries, nil
}
