package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/timmy/tmimport/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TranslationStateRepository records which locales an item has been translated into.
type TranslationStateRepository struct {
	db *gorm.DB
}

// NewTranslationStateRepository creates a new TranslationStateRepository.
func NewTranslationStateRepository(db *gorm.DB) *TranslationStateRepository {
	return &TranslationStateRepository{db: db}
}

// MarkTranslated adds locale to the translated set of the item. Marking an
// already translated locale is a no-op.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - itemType: type of the catalog item.
//   - itemID: catalog identifier of the item.
//   - locale: catalog locale code.
// Returns:
//   - error: wraps domain.ErrStorage if the insert fails.
func (r *TranslationStateRepository) MarkTranslated(ctx context.Context, itemType domain.ItemType, itemID, locale string) error {
	state := &domain.TranslationState{
		ItemType:     itemType,
		ItemID:       itemID,
		Locale:       locale,
		TranslatedAt: time.Now(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_type"}, {Name: "item_id"}, {Name: "locale"}},
		DoNothing: true,
	}).Create(state).Error
	if err != nil {
		return fmt.Errorf("%w: failed to mark %s %s translated: %v", domain.ErrStorage, itemType, itemID, err)
	}
	return nil
}

// ListLocales returns the translated locales of an item in alphabetical order.
func (r *TranslationStateRepository) ListLocales(ctx context.Context, itemType domain.ItemType, itemID string) ([]string, error) {
	var locales []string
	err := r.db.WithContext(ctx).
		Model(&domain.TranslationState{}).
		Where("item_type = ? AND item_id = ?", itemType, itemID).
		Order("locale ASC").
		Pluck("locale", &locales).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list locales: %v", domain.ErrStorage, err)
	}
	return locales, nil
}
