// Package schema holds the ordered attribute lists the import serializer walks for each item type.
package schema

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/timmy/tmimport/internal/domain"
	"gopkg.in/yaml.v3"
)

// PagePrefix marks attributes that belong to the page-attributes group.
const PagePrefix = "page"

// PageAttributes is the reserved order of the page-attributes group.
var PageAttributes = []string{"pageTitle", "pageDescription", "pageKeywords", "pageURL"}

var defaultAttributes = map[domain.ItemType][]string{
	domain.ItemTypeProduct: {
		"name", "shortDescription", "longDescription",
		"pageTitle", "pageDescription", "pageKeywords", "pageURL",
	},
	domain.ItemTypeCategory: {
		"name", "description",
		"pageTitle", "pageDescription", "pageKeywords", "pageURL",
	},
	domain.ItemTypeContent: {
		"name", "description",
		"pageTitle", "pageDescription", "pageKeywords", "pageURL",
	},
}

// Schema is the per item type ordered attribute table. It is immutable once built.
type Schema struct {
	attributes map[domain.ItemType][]string
}

// Default returns the built-in schema.
func Default() *Schema {
	s, _ := New(nil)
	return s
}

// New builds a schema from overrides layered over the built-in lists.
// Parameters:
//   - overrides: ordered attribute ids per item type; item types left out keep the defaults.
// Returns:
//   - *Schema: immutable schema.
//   - error: non-nil if an override contains an empty or duplicate id.
func New(overrides map[domain.ItemType][]string) (*Schema, error) {
	attrs := make(map[domain.ItemType][]string, len(domain.ItemTypes))
	for _, itemType := range domain.ItemTypes {
		list := defaultAttributes[itemType]
		if o, ok := overrides[itemType]; ok {
			if err := validate(itemType, o); err != nil {
				return nil, err
			}
			list = o
		}
		attrs[itemType] = append([]string(nil), list...)
	}
	return &Schema{attributes: attrs}, nil
}

func validate(itemType domain.ItemType, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("schema for %s contains an empty attribute id", itemType)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("schema for %s lists %q twice", itemType, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// fileSchema is the YAML layout of a schema override file.
type fileSchema struct {
	Product  []string `yaml:"product"`
	Category []string `yaml:"category"`
	Content  []string `yaml:"content"`
}

// Load reads a YAML override file. An empty path yields the built-in schema.
func Load(path string) (*Schema, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML schema document.
func Parse(data []byte) (*Schema, error) {
	var fs fileSchema
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}

	overrides := make(map[domain.ItemType][]string)
	if fs.Product != nil {
		overrides[domain.ItemTypeProduct] = fs.Product
	}
	if fs.Category != nil {
		overrides[domain.ItemTypeCategory] = fs.Category
	}
	if fs.Content != nil {
		overrides[domain.ItemTypeContent] = fs.Content
	}
	return New(overrides)
}

// Attributes returns a copy of the ordered attribute ids for an item type.
func (s *Schema) Attributes(itemType domain.ItemType) []string {
	return append([]string(nil), s.attributes[itemType]...)
}

// IsPageAttribute reports whether id belongs to the page-attributes group.
func IsPageAttribute(id string) bool {
	return strings.HasPrefix(id, PagePrefix)
}

// TagName returns the import document tag for an attribute id.
// "name" is exported as displayName; camelCase ids become kebab-case tags,
// so displayName is written as display-name and pageURL as page-url.
func TagName(id string) string {
	if id == "name" {
		id = "displayName"
	}

	runes := []rune(id)
	var b strings.Builder
	b.Grow(len(id) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && !unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
