package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/timmy/tmimport/internal/domain"
	"github.com/timmy/tmimport/internal/schema"
)

// Project is the provider project payload. Only the fields the import reads are decoded.
type Project struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	CustomData ProjectCustomData `json:"custom_data"`
}

// ProjectCustomData is the metadata attached to a project when it was ordered.
type ProjectCustomData struct {
	ItemType       string `json:"itemType"`
	CatalogID      string `json:"catalogID"`
	SFCCLanguageTo string `json:"sfccLanguageTo"`
}

// Document is the provider document payload.
type Document struct {
	ID         string                     `json:"id"`
	Status     string                     `json:"status"`
	CustomData DocumentCustomData         `json:"custom_data"`
	AuthorWork map[string]json.RawMessage `json:"author_work"`
}

// DocumentCustomData is the metadata attached to a document when it was ordered.
type DocumentCustomData struct {
	Item      DocumentItem          `json:"item"`
	Attribute []domain.AttributeRef `json:"attribute"`
}

// DocumentItem identifies the catalog item a document translates.
type DocumentItem struct {
	ID string `json:"id"`
}

// LocaleResolver converts a provider language code into a catalog locale.
type LocaleResolver interface {
	ToCatalog(code string) string
}

// CheckProject validates the project settings needed before the document is read.
// Parameters:
//   - p: decoded project payload.
// Returns:
//   - domain.ItemType: the item type the project translates.
//   - error: wraps domain.ErrProvider for a missing or unknown item type, or
//     domain.ErrInvalidConfiguration for a product project without a catalog.
func CheckProject(p *Project) (domain.ItemType, error) {
	if p == nil || strings.TrimSpace(p.CustomData.ItemType) == "" {
		return "", fmt.Errorf("%w: project has no item type", domain.ErrProvider)
	}
	itemType, err := domain.ParseItemType(p.CustomData.ItemType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}
	if itemType.RequiresCatalog() && strings.TrimSpace(p.CustomData.CatalogID) == "" {
		return "", fmt.Errorf("%w: %s project %s has no catalog", domain.ErrInvalidConfiguration, itemType, p.ID)
	}
	return itemType, nil
}

// Normalize builds the domain document out of the two provider payloads.
// A document in a non importable status is returned together with domain.ErrNotReady.
func Normalize(projectID, documentID string, p *Project, d *Document, locales LocaleResolver) (*domain.TranslatedDocument, error) {
	itemType, err := CheckProject(p)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: empty document payload", domain.ErrProvider)
	}

	locale := p.CustomData.SFCCLanguageTo
	if locales != nil {
		locale = locales.ToCatalog(locale)
	}

	doc := &domain.TranslatedDocument{
		ProjectID:    projectID,
		DocumentID:   documentID,
		Status:       domain.ParseDocumentStatus(d.Status),
		ItemID:       d.CustomData.Item.ID,
		ItemType:     itemType,
		CatalogID:    p.CustomData.CatalogID,
		TargetLocale: locale,
		Attributes:   append([]domain.AttributeRef{}, d.CustomData.Attribute...),
		Fields:       make(map[string]string, len(d.AuthorWork)),
		PageFields:   make(map[string]string),
	}
	for id, raw := range d.AuthorWork {
		doc.Fields[id] = rawText(raw)
	}
	for _, attr := range doc.Attributes {
		if attr.Type != domain.AttributeTypeSystem || !schema.IsPageAttribute(attr.ID) {
			continue
		}
		if v := doc.Fields[attr.ID]; v != "" {
			doc.PageFields[attr.ID] = v
		}
	}

	if !doc.Importable() {
		return doc, fmt.Errorf("document %s is %s: %w", documentID, strings.ToLower(d.Status), domain.ErrNotReady)
	}
	return doc, nil
}

// rawText returns JSON strings unquoted and any other value as its JSON text.
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}
