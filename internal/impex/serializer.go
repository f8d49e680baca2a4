package impex

import (
	"github.com/timmy/tmimport/internal/domain"
	"github.com/timmy/tmimport/internal/schema"
)

// SchemaVersion is the impex schema date carried in the root namespace.
const SchemaVersion = "2006-10-31"

const namespaceBase = "http://www.demandware.com/xml/impex/"

// LibraryConfig describes the content library the site imports into.
type LibraryConfig struct {
	Shared bool
	ID     string
}

// Serializer turns translated documents into import documents.
type Serializer struct {
	schema  *schema.Schema
	library LibraryConfig
}

// NewSerializer creates a serializer over an attribute schema.
// Parameters:
//   - s: attribute schema; nil uses the built-in schema.
//   - library: content library settings used for library roots.
// Returns:
//   - *Serializer: initialized serializer.
func NewSerializer(s *schema.Schema, library LibraryConfig) *Serializer {
	if s == nil {
		s = schema.Default()
	}
	return &Serializer{schema: s, library: library}
}

// Namespace returns the root namespace for an item family.
func Namespace(family string) string {
	return namespaceBase + family + "/" + SchemaVersion
}

// Serialize builds the import document for doc. The element order is a contract
// with the downstream importer:
//
//	root > item > schema attributes > page-attributes > custom-attributes
//
// A document that is not importable yields the root element alone.
func (s *Serializer) Serialize(doc *domain.TranslatedDocument) *Document {
	root := s.root(doc)
	if !doc.Importable() {
		return &Document{Root: root}
	}

	item := NewElement(doc.ItemType.ElementName(), Attr{Name: doc.ItemType.IDAttribute(), Value: doc.ItemID})
	item.Append(s.systemAttributes(doc)...)
	item.Append(pageAttributes(doc), customAttributes(doc))
	root.Append(item)

	return &Document{Root: root}
}

func (s *Serializer) root(doc *domain.TranslatedDocument) *Element {
	itemType := domain.ItemTypeContent
	catalogID := ""
	if doc != nil {
		itemType = doc.ItemType
		catalogID = doc.CatalogID
	}

	family := itemType.Family()
	root := NewElement(family, Attr{Name: "xmlns", Value: Namespace(family)})

	switch itemType {
	case domain.ItemTypeProduct, domain.ItemTypeCategory:
		root.Attrs = append(root.Attrs, Attr{Name: "catalog-id", Value: catalogID})
	case domain.ItemTypeContent:
		if s.library.Shared {
			root.Attrs = append(root.Attrs, Attr{Name: "library-id", Value: s.library.ID})
		}
	}
	return root
}

// systemAttributes emits the schema attributes in schema order, page attributes excluded.
func (s *Serializer) systemAttributes(doc *domain.TranslatedDocument) []*Element {
	var out []*Element
	for _, id := range s.schema.Attributes(doc.ItemType) {
		if schema.IsPageAttribute(id) {
			continue
		}
		value := doc.Value(id)
		if value == "" {
			continue
		}
		out = append(out, localized(schema.TagName(id), doc.TargetLocale, value))
	}
	return out
}

// pageAttributes emits the reserved page attributes in their fixed order.
func pageAttributes(doc *domain.TranslatedDocument) *Element {
	group := NewElement("page-attributes")
	for _, id := range schema.PageAttributes {
		value, ok := doc.PageFields[id]
		if !ok || value == "" {
			continue
		}
		group.Append(localized(schema.TagName(id), doc.TargetLocale, value))
	}
	return group
}

// customAttributes emits custom attributes in the provider's attribute list order.
func customAttributes(doc *domain.TranslatedDocument) *Element {
	group := NewElement("custom-attributes")
	for _, ref := range doc.Attributes {
		if ref.Type != domain.AttributeTypeCustom {
			continue
		}
		value := doc.Value(ref.ID)
		if value == "" {
			continue
		}
		e := NewElement("custom-attribute",
			Attr{Name: "attribute-id", Value: ref.ID},
			Attr{Name: "xml:lang", Value: doc.TargetLocale},
		)
		e.Text = value
		group.Append(e)
	}
	return group
}

func localized(tag, locale, value string) *Element {
	e := NewElement(tag, Attr{Name: "xml:lang", Value: locale})
	e.Text = value
	return e
}
