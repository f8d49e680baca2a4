package source

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/tmimport/internal/domain"
)

func TestNormalizePageFieldsOnlyFromSystemAttributes(t *testing.T) {
	p := &Project{ID: "P", CustomData: ProjectCustomData{ItemType: "category", SFCCLanguageTo: "fr_FR"}}
	d := &Document{
		Status: "completed",
		CustomData: DocumentCustomData{Attribute: []domain.AttributeRef{
			{ID: "pageTitle", Type: domain.AttributeTypeSystem},
			{ID: "pageURL", Type: domain.AttributeTypeCustom},
			{ID: "pageKeywords", Type: domain.AttributeTypeSystem},
		}},
		AuthorWork: map[string]json.RawMessage{
			"pageTitle":    json.RawMessage(`"Titre"`),
			"pageURL":      json.RawMessage(`"/fr"`),
			"pageKeywords": json.RawMessage(`""`),
		},
	}

	doc, err := Normalize("P", "D", p, d, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"pageTitle": "Titre"}, doc.PageFields)
	assert.Equal(t, "fr_FR", doc.TargetLocale)
	assert.Equal(t, "/fr", doc.Value("pageURL"))
}

func TestCheckProject(t *testing.T) {
	_, err := CheckProject(&Project{CustomData: ProjectCustomData{ItemType: "folder"}})
	assert.ErrorIs(t, err, domain.ErrProvider)

	_, err = CheckProject(&Project{CustomData: ProjectCustomData{ItemType: "product"}})
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	itemType, err := CheckProject(&Project{CustomData: ProjectCustomData{ItemType: "Content"}})
	require.NoError(t, err)
	assert.Equal(t, domain.ItemTypeContent, itemType)
}

func TestRawText(t *testing.T) {
	assert.Equal(t, "a \"b\"", rawText(json.RawMessage(`"a \"b\""`)))
	assert.Equal(t, "12.5", rawText(json.RawMessage(`12.5`)))
	assert.Equal(t, "", rawText(json.RawMessage(`null`)))
}
