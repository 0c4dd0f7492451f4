package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/edustack/tutor-platform/internal/model"
)

// DocumentRepo encapsulates all database queries for documents and their
// doc_types reference data.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo constructs a DocumentRepo with the provided DB handle.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// docSelect joins the type and identity expansions the API returns alongside
// every document, mirroring reference-expansion reads of related records.
const docSelect = `SELECT d.id, d.title, d.doc_type_id, d.brief, d.url, d.storage_key,
	d.uploaded_by, d.created_by, d.created_at, d.updated_at,
	t.name, t.abbreviation,
	up.id, up.name, up.email,
	cr.id, cr.name, cr.email
	FROM documents d
	JOIN doc_types t ON t.id = d.doc_type_id
	JOIN users up ON up.id = d.uploaded_by
	JOIN users cr ON cr.id = d.created_by`

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	var dt model.DocumentType
	var up, cr model.UserRef
	if err := row.Scan(&d.ID, &d.Title, &d.DocTypeID, &d.Brief, &d.URL, &d.StorageKey,
		&d.UploadedBy, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
		&dt.Name, &dt.Abbreviation,
		&up.ID, &up.Name, &up.Email,
		&cr.ID, &cr.Name, &cr.Email); err != nil {
		return nil, err
	}
	dt.ID = d.DocTypeID
	d.Type = &dt
	d.Uploader = &up
	d.Creator = &cr
	return &d, nil
}

// Create inserts a new document and returns the saved record with its type
// and identity expansions populated.
func (r *DocumentRepo) Create(ctx context.Context, d *model.Document) error {
	const q = `INSERT INTO documents (title, doc_type_id, brief, url, storage_key, uploaded_by, created_by)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, d.Title, d.DocTypeID, d.Brief, d.URL, d.StorageKey,
		d.UploadedBy, d.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)

	saved, err := r.GetByID(ctx, d.ID)
	if err != nil {
		return err
	}
	*d = *saved
	return nil
}

// GetByID fetches one document with expansions, regardless of scope.
func (r *DocumentRepo) GetByID(ctx context.Context, id uint64) (*model.Document, error) {
	d, err := scanDocument(r.db.QueryRowContext(ctx, docSelect+" WHERE d.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

// DocumentFilter is the declarative visibility filter a listing applies.
// The zero value means unrestricted. UploaderIn with an empty, non-nil slice
// matches nothing (a tenant without tutors has no visible documents).
type DocumentFilter struct {
	UploadedBy uint64
	UploaderIn []uint64
}

// List returns the documents matching the filter, newest first, with
// expansions populated.
func (r *DocumentRepo) List(ctx context.Context, f DocumentFilter) ([]*model.Document, error) {
	q := docSelect
	var args []any
	switch {
	case f.UploadedBy != 0:
		q += " WHERE d.uploaded_by = ?"
		args = append(args, f.UploadedBy)
	case f.UploaderIn != nil:
		if len(f.UploaderIn) == 0 {
			return nil, nil
		}
		q += " WHERE d.uploaded_by IN (?" + strings.Repeat(",?", len(f.UploaderIn)-1) + ")"
		for _, id := range f.UploaderIn {
			args = append(args, id)
		}
	}
	q += " ORDER BY d.created_at DESC, d.id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DocumentPatch carries the optional fields of an administrative document
// update. Nil means "leave unchanged".
type DocumentPatch struct {
	Title      *string
	DocTypeID  *uint64
	Brief      *string
	URL        *string
	StorageKey *string
}

// Update applies an administrative partial update and returns the updated
// record. ErrNotFound is returned when the document does not exist.
func (r *DocumentRepo) Update(ctx context.Context, id uint64, p DocumentPatch) (*model.Document, error) {
	set := make([]string, 0, 5)
	args := make([]any, 0, 6)
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.DocTypeID != nil {
		add("doc_type_id", *p.DocTypeID)
	}
	if p.Brief != nil {
		add("brief", *p.Brief)
	}
	if p.URL != nil {
		add("url", *p.URL)
	}
	if p.StorageKey != nil {
		add("storage_key", *p.StorageKey)
	}
	if len(set) > 0 {
		q := "UPDATE documents SET " + strings.Join(set, ", ") + " WHERE id = ?"
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a document. Documents have no audit requirement, so unlike
// users and tenants the row is physically deleted.
func (r *DocumentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetType fetches one document type.
func (r *DocumentRepo) GetType(ctx context.Context, id uint64) (*model.DocumentType, error) {
	const q = "SELECT id, name, abbreviation FROM doc_types WHERE id = ?"
	var t model.DocumentType
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.Abbreviation); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListTypes returns all document types ordered by name.
func (r *DocumentRepo) ListTypes(ctx context.Context) ([]*model.DocumentType, error) {
	const q = "SELECT id, name, abbreviation FROM doc_types ORDER BY name"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.DocumentType
	for rows.Next() {
		t := new(model.DocumentType)
		if err := rows.Scan(&t.ID, &t.Name, &t.Abbreviation); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
