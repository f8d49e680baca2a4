package textmaster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/tmimport/internal/domain"
	"github.com/timmy/tmimport/internal/locale"
)

const productProject = `{
  "id": "P1",
  "custom_data": {"itemType": "product", "catalogID": "storefront", "sfccLanguageTo": "fr-fr"}
}`

const completedDocument = `{
  "id": "D1",
  "status": "Completed",
  "custom_data": {
    "item": {"id": "SKU-1"},
    "attribute": [
      {"id": "name", "type": "system"},
      {"id": "pageTitle", "type": "system"},
      {"id": "material", "type": "custom"}
    ]
  },
  "author_work": {"name": "Chapeau", "pageTitle": "Chapeau rouge", "material": "Laine", "weight": 3}
}`

type fakeProvider struct {
	project   string
	document  string
	status    int
	documents int32
}

func (f *fakeProvider) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/clients/projects/P1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(f.project))
	})
	mux.HandleFunc("/clients/projects/P1/documents/D1", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.documents, 1)
		w.Header().Set("Content-Type", "application/json")
		if f.status != 0 {
			w.WriteHeader(f.status)
		}
		w.Write([]byte(f.document))
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeProvider) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	return NewClient(&Config{
		BaseURL:      srv.URL + "/",
		ProjectPath:  "clients/projects",
		DocumentPath: "documents",
		Timeout:      2 * time.Second,
		Headers:      map[string]string{"Api-Key": "secret"},
	}, locale.NewMapper(nil))
}

func TestFetchCompletedDocument(t *testing.T) {
	client := newTestClient(t, &fakeProvider{project: productProject, document: completedDocument})

	doc, err := client.Fetch(context.Background(), "P1", "D1")
	require.NoError(t, err)

	assert.Equal(t, domain.ItemTypeProduct, doc.ItemType)
	assert.Equal(t, "SKU-1", doc.ItemID)
	assert.Equal(t, "storefront", doc.CatalogID)
	assert.Equal(t, "fr_FR", doc.TargetLocale)
	assert.Equal(t, domain.DocumentStatusCompleted, doc.Status)
	assert.Equal(t, "Chapeau", doc.Value("name"))
	assert.Equal(t, "3", doc.Value("weight"))
	assert.Equal(t, map[string]string{"pageTitle": "Chapeau rouge"}, doc.PageFields)
	require.Len(t, doc.Attributes, 3)
	assert.Equal(t, domain.AttributeTypeCustom, doc.Attributes[2].Type)
}

func TestFetchPendingDocumentIsNotReady(t *testing.T) {
	client := newTestClient(t, &fakeProvider{
		project:  productProject,
		document: `{"id": "D1", "status": "pending", "custom_data": {"item": {"id": "SKU-1"}}}`,
	})

	doc, err := client.Fetch(context.Background(), "P1", "D1")
	assert.ErrorIs(t, err, domain.ErrNotReady)
	require.NotNil(t, doc)
	assert.Equal(t, domain.DocumentStatusPending, doc.Status)
}

func TestFetchProductWithoutCatalogSkipsDocument(t *testing.T) {
	f := &fakeProvider{
		project:  `{"id": "P1", "custom_data": {"itemType": "product", "sfccLanguageTo": "de-de"}}`,
		document: completedDocument,
	}
	client := newTestClient(t, f)

	_, err := client.Fetch(context.Background(), "P1", "D1")
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.documents))
}

func TestFetchCategoryWithoutCatalog(t *testing.T) {
	client := newTestClient(t, &fakeProvider{
		project:  `{"id": "P1", "custom_data": {"itemType": "category", "sfccLanguageTo": "de_DE"}}`,
		document: `{"id": "D1", "status": "in_review", "custom_data": {"item": {}}}`,
	})

	doc, err := client.Fetch(context.Background(), "P1", "D1")
	require.NoError(t, err)
	assert.Equal(t, "", doc.ItemID)
	assert.Empty(t, doc.Attributes)
	assert.Empty(t, doc.Fields)
}

func TestFetchMissingItemType(t *testing.T) {
	client := newTestClient(t, &fakeProvider{project: `{"id": "P1", "custom_data": {}}`})

	_, err := client.Fetch(context.Background(), "P1", "D1")
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, domain.ErrNotFound},
		{"server error", http.StatusBadGateway, domain.ErrProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, &fakeProvider{project: productProject, document: `{}`, status: tt.status})
			_, err := client.Fetch(context.Background(), "P1", "D1")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFetchUnknownProject(t *testing.T) {
	client := newTestClient(t, &fakeProvider{project: productProject})

	_, err := client.Fetch(context.Background(), "P404", "D1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
