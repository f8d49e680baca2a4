package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/tmimport/internal/domain"
	"github.com/timmy/tmimport/internal/locale"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func newStagedAdapter(t *testing.T) *Adapter {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "projects", "P1.json"),
		`{"id":"P1","custom_data":{"itemType":"content","sfccLanguageTo":"it"}}`)
	writeFile(t, filepath.Join(root, "projects", "P1", "documents", "D1.json"),
		`{"id":"D1","status":"in_review","custom_data":{"item":{"id":"about-us"},"attribute":[{"id":"name","type":"system"}]},"author_work":{"name":"Chi siamo"}}`)
	writeFile(t, filepath.Join(root, "projects", "P1", "documents", "D0.json"), `{not json`)
	writeFile(t, filepath.Join(root, "projects", "P1", "documents", "notes.txt"), `ignored`)
	return NewAdapter(root, locale.NewMapper([]locale.Pair{{Catalog: "it_IT", Provider: "it"}}))
}

func TestAdapterFetch(t *testing.T) {
	a := newStagedAdapter(t)

	doc, err := a.Fetch(context.Background(), "P1", "D1")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemTypeContent, doc.ItemType)
	assert.Equal(t, "about-us", doc.ItemID)
	assert.Equal(t, "it_IT", doc.TargetLocale)
	assert.Equal(t, "Chi siamo", doc.Value("name"))
}

func TestAdapterFetchErrors(t *testing.T) {
	a := newStagedAdapter(t)

	_, err := a.Fetch(context.Background(), "P2", "D1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = a.Fetch(context.Background(), "P1", "D9")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = a.Fetch(context.Background(), "P1", "D0")
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestAdapterListDocuments(t *testing.T) {
	a := newStagedAdapter(t)

	ids, err := a.ListDocuments("P1")
	require.NoError(t, err)
	assert.Equal(t, []string{"D0", "D1"}, ids)

	ids, err = a.ListDocuments("missing")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
