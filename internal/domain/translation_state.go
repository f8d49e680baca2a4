package domain

import "time"

// TranslationState marks an item as translated into a locale.
type TranslationState struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	ItemType     ItemType  `gorm:"type:text;not null;uniqueIndex:idx_translation_states_item" json:"item_type"`
	ItemID       string    `gorm:"type:text;not null;uniqueIndex:idx_translation_states_item" json:"item_id"`
	Locale       string    `gorm:"type:text;not null;uniqueIndex:idx_translation_states_item" json:"locale"`
	TranslatedAt time.Time `json:"translated_at"`
}

// TableName returns the database table name for TranslationState.
func (TranslationState) TableName() string {
	return "translation_states"
}
