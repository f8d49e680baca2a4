// Package locale translates between catalog locale ids and provider language codes.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale is the catalog fallback locale, passed through untouched.
const DefaultLocale = "default"

// Pair maps a catalog locale onto the provider code for the same language.
type Pair struct {
	Catalog  string
	Provider string
}

// Mapper is a pure lookup over configured locale pairs.
type Mapper struct {
	toProvider map[string]string
	toCatalog  map[string]string
}

// NewMapper builds a mapper from configured pairs. Later pairs win on conflicts.
func NewMapper(pairs []Pair) *Mapper {
	m := &Mapper{
		toProvider: make(map[string]string, len(pairs)),
		toCatalog:  make(map[string]string, len(pairs)),
	}
	for _, p := range pairs {
		if p.Catalog == "" || p.Provider == "" {
			continue
		}
		m.toProvider[strings.ToLower(p.Catalog)] = p.Provider
		m.toCatalog[strings.ToLower(p.Provider)] = p.Catalog
	}
	return m
}

// ToProvider maps a source locale and target locales onto provider codes.
// Unmapped ids are returned unchanged.
func (m *Mapper) ToProvider(source string, targets []string) (string, []string) {
	mapped := make([]string, 0, len(targets))
	for _, t := range targets {
		mapped = append(mapped, m.providerCode(t))
	}
	return m.providerCode(source), mapped
}

func (m *Mapper) providerCode(catalogLocale string) string {
	if code, ok := m.toProvider[strings.ToLower(catalogLocale)]; ok {
		return code
	}
	return catalogLocale
}

// ToCatalog maps a provider language code onto a catalog locale id.
// Unmapped codes are canonicalised as BCP 47 tags written with an underscore
// (fr-fr becomes fr_FR); codes that do not parse are returned unchanged.
func (m *Mapper) ToCatalog(providerCode string) string {
	code := strings.TrimSpace(providerCode)
	if code == "" || strings.EqualFold(code, DefaultLocale) {
		return code
	}
	if l, ok := m.toCatalog[strings.ToLower(code)]; ok {
		return l
	}

	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return code
	}
	return strings.ReplaceAll(tag.String(), "-", "_")
}
