package domain

import (
	"fmt"
	"path"
	"strings"
)

// DocumentStatus is the provider-side workflow status of a translated document.
type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "pending"
	DocumentStatusInReview  DocumentStatus = "in_review"
	DocumentStatusCompleted DocumentStatus = "completed"
	DocumentStatusOther     DocumentStatus = "other"
)

// ParseDocumentStatus maps a raw provider status onto a DocumentStatus, case-insensitively.
func ParseDocumentStatus(raw string) DocumentStatus {
	switch DocumentStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case DocumentStatusPending:
		return DocumentStatusPending
	case DocumentStatusInReview:
		return DocumentStatusInReview
	case DocumentStatusCompleted:
		return DocumentStatusCompleted
	default:
		return DocumentStatusOther
	}
}

// Importable reports whether translated values of a document in this status may be imported.
func (s DocumentStatus) Importable() bool {
	return s == DocumentStatusInReview || s == DocumentStatusCompleted
}

// AttributeType distinguishes built-in attributes from merchant-defined ones.
type AttributeType string

const (
	AttributeTypeSystem AttributeType = "system"
	AttributeTypeCustom AttributeType = "custom"
)

// AttributeRef is one entry of the attribute list sent along with a document.
type AttributeRef struct {
	ID   string        `json:"id"`
	Type AttributeType `json:"type"`
}

// TranslatedDocument is a fetched snapshot of a provider document.
// It is built once by a document source and treated as read-only afterwards.
type TranslatedDocument struct {
	ProjectID    string
	DocumentID   string
	Status       DocumentStatus
	ItemID       string
	ItemType     ItemType
	CatalogID    string
	TargetLocale string

	// Attributes keeps the provider order of the attribute list.
	Attributes []AttributeRef

	// Fields holds every translated value keyed by attribute id.
	Fields map[string]string

	// PageFields is the subset of Fields for system attributes with the "page" prefix.
	PageFields map[string]string
}

// Importable reports whether the document may be serialized into an artifact.
func (d *TranslatedDocument) Importable() bool {
	return d != nil && d.Status.Importable()
}

// Value returns the translated value for an attribute, or an empty string.
func (d *TranslatedDocument) Value(attributeID string) string {
	if d == nil || d.Fields == nil {
		return ""
	}
	return d.Fields[attributeID]
}

// ArtifactKey identifies the staged import file of a document.
type ArtifactKey struct {
	ItemType   ItemType
	DocumentID string
}

// Path returns the staging path relative to the import root:
// src/{namespace}/{itemType}/{documentID}.{ext}.
// The document id must be a single path element; see ValidateID.
func (k ArtifactKey) Path(namespace, ext string) (string, error) {
	if err := ValidateID("document id", k.DocumentID); err != nil {
		return "", err
	}
	return path.Join("src", namespace, string(k.ItemType), fmt.Sprintf("%s.%s", k.DocumentID, ext)), nil
}

// ValidateID checks that a provider identifier is non-blank and usable as a single
// path element: no separators, no ".." and no NUL bytes.
// Returns:
//   - error: wraps ErrInvalidRequest, nil if id is acceptable.
func ValidateID(name, id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%w: %s is required", ErrInvalidRequest, name)
	case strings.ContainsAny(id, "/\\\x00"), strings.Contains(id, ".."):
		return fmt.Errorf("%w: %s %q is not a plain identifier", ErrInvalidRequest, name, id)
	}
	return nil
}
