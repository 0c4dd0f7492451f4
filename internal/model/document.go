package model

import "time"

// DocumentType is reference data describing a category of document.
type DocumentType struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// Document is a record uploaded by a tutor and visible to the students of
// that tutor's tenant. The effective owner is the uploader; visibility is
// derived transitively through the uploader's tenant.
//
// Type, Uploader and Creator are populated expansions of the corresponding
// id columns and are only set on reads that join the related tables.
type Document struct {
	ID         uint64    `json:"id"`
	Title      string    `json:"title"`
	DocTypeID  uint64    `json:"doc_type_id"`
	Brief      string    `json:"brief"`
	URL        string    `json:"url,omitempty"`
	StorageKey string    `json:"storage_key,omitempty"`
	UploadedBy uint64    `json:"uploaded_by"`
	CreatedBy  uint64    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Type     *DocumentType `json:"type,omitempty"`
	Uploader *UserRef      `json:"uploader,omitempty"`
	Creator  *UserRef      `json:"creator,omitempty"`
}
