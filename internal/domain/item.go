package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ItemType is the kind of catalog entity a translation belongs to.
// Values are ItemTypeProduct, ItemTypeCategory and ItemTypeContent.
type ItemType string

const (
	ItemTypeProduct  ItemType = "product"
	ItemTypeCategory ItemType = "category"
	ItemTypeContent  ItemType = "content"
)

// ErrUnknownItemType is returned when an item type string is not one of the known kinds.
var ErrUnknownItemType = errors.New("unknown item type")

// ItemTypes lists every supported item type in a stable order.
var ItemTypes = []ItemType{ItemTypeProduct, ItemTypeCategory, ItemTypeContent}

// ParseItemType converts a raw provider value into an ItemType.
// Parameters:
//   - raw: item type string, matched case-insensitively.
// Returns:
//   - ItemType: parsed item type.
//   - error: ErrUnknownItemType when raw is not recognized.
func ParseItemType(raw string) (ItemType, error) {
	switch ItemType(strings.ToLower(strings.TrimSpace(raw))) {
	case ItemTypeProduct:
		return ItemTypeProduct, nil
	case ItemTypeCategory:
		return ItemTypeCategory, nil
	case ItemTypeContent:
		return ItemTypeContent, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownItemType, raw)
	}
}

// Family returns the root element of the import document for the item type.
func (t ItemType) Family() string {
	switch t {
	case ItemTypeProduct, ItemTypeCategory:
		return "catalog"
	case ItemTypeContent:
		return "library"
	}
	return ""
}

// ElementName returns the element that wraps a single item in the import document.
// Content items are written as <content content-id="..."> as the library import
// schema expects, not as content-asset.
func (t ItemType) ElementName() string {
	return string(t)
}

// IDAttribute returns the attribute carrying the item identifier, e.g. "product-id".
func (t ItemType) IDAttribute() string {
	return string(t) + "-id"
}

// JobKind selects which downstream import job handles the item type.
type JobKind string

const (
	JobKindProductImport JobKind = "product-import"
	JobKindCatalogImport JobKind = "catalog-import"
	JobKindContentImport JobKind = "content-import"
)

// JobKind returns the downstream import job for the item type.
func (t ItemType) JobKind() JobKind {
	switch t {
	case ItemTypeProduct:
		return JobKindProductImport
	case ItemTypeCategory:
		return JobKindCatalogImport
	case ItemTypeContent:
		return JobKindContentImport
	}
	return ""
}

// RequiresCatalog reports whether an import of this item type cannot be built without a catalog id.
func (t ItemType) RequiresCatalog() bool {
	return t == ItemTypeProduct
}
