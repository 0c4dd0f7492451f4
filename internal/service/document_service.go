package service

import (
	"context"
	"errors"
	"strings"

	"github.com/edustack/tutor-platform/internal/model"
	"github.com/edustack/tutor-platform/internal/policy"
	"github.com/edustack/tutor-platform/internal/repository"
)

// DocumentStore is the persistence contract the document visibility manager
// consumes. *repository.DocumentRepo satisfies it.
type DocumentStore interface {
	Create(ctx context.Context, d *model.Document) error
	GetByID(ctx context.Context, id uint64) (*model.Document, error)
	List(ctx context.Context, f repository.DocumentFilter) ([]*model.Document, error)
	Update(ctx context.Context, id uint64, p repository.DocumentPatch) (*model.Document, error)
	Delete(ctx context.Context, id uint64) error
	GetType(ctx context.Context, id uint64) (*model.DocumentType, error)
	ListTypes(ctx context.Context) ([]*model.DocumentType, error)
}

// DocumentService creates and lists documents. It owns no scope decisions
// itself: visibility comes from the policy resolver and the tenant-to-tutor
// lookup provided by the user store.
type DocumentService struct {
	docs  DocumentStore
	users UserStore
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(docs DocumentStore, users UserStore) *DocumentService {
	return &DocumentService{docs: docs, users: users}
}

// CreateDocumentInput carries the fields of a document upload.
type CreateDocumentInput struct {
	Title      string
	DocTypeID  uint64
	Brief      string
	URL        string
	StorageKey string
}

// CreateDocument persists a document owned by the caller. Uploader and
// creator are both the caller; the returned record carries the
// human-readable type and identity expansions.
func (s *DocumentService) CreateDocument(ctx context.Context, caller policy.Caller, in CreateDocumentInput) (*model.Document, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Brief) == "" {
		return nil, ErrValidation
	}
	if _, err := s.docs.GetType(ctx, in.DocTypeID); err != nil {
		if e := storeErr(err); !errors.Is(e, ErrNotFound) {
			return nil, e
		}
		return nil, ErrInvalidReference
	}
	d := &model.Document{
		Title:      strings.TrimSpace(in.Title),
		DocTypeID:  in.DocTypeID,
		Brief:      in.Brief,
		URL:        in.URL,
		StorageKey: in.StorageKey,
		UploadedBy: caller.ID,
		CreatedBy:  caller.ID,
	}
	if err := s.docs.Create(ctx, d); err != nil {
		return nil, storeErr(err)
	}
	return d, nil
}

// scopeFilter translates the caller's declarative document scope into a
// store filter, resolving a student's tenant to its tutor id set.
func (s *DocumentService) scopeFilter(ctx context.Context, caller policy.Caller) (repository.DocumentFilter, error) {
	scope := policy.ResolveDocumentScope(caller)
	switch {
	case scope.All:
		return repository.DocumentFilter{}, nil
	case scope.UploadedBy != 0:
		return repository.DocumentFilter{UploadedBy: scope.UploadedBy}, nil
	default:
		ids, err := s.users.TutorIDsByTenant(ctx, scope.TutorsOfTenant)
		if err != nil {
			return repository.DocumentFilter{}, storeErr(err)
		}
		if ids == nil {
			ids = []uint64{}
		}
		return repository.DocumentFilter{UploaderIn: ids}, nil
	}
}

// ListDocuments returns the documents visible to the caller, newest first.
func (s *DocumentService) ListDocuments(ctx context.Context, caller policy.Caller) ([]*model.Document, error) {
	filter, err := s.scopeFilter(ctx, caller)
	if err != nil {
		return nil, err
	}
	out, err := s.docs.List(ctx, filter)
	if err != nil {
		return nil, storeErr(err)
	}
	if out == nil {
		out = []*model.Document{}
	}
	return out, nil
}

// GetDocumentByID returns one document if it falls inside the caller's
// scope. A document that exists but is out of scope reads as the same not
// found as a missing one, so responses never leak existence.
func (s *DocumentService) GetDocumentByID(ctx context.Context, caller policy.Caller, id uint64) (*model.Document, error) {
	d, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	scope := policy.ResolveDocumentScope(caller)
	switch {
	case scope.All:
		return d, nil
	case scope.UploadedBy != 0:
		if d.UploadedBy != scope.UploadedBy {
			return nil, ErrNotFound
		}
		return d, nil
	default:
		ids, err := s.users.TutorIDsByTenant(ctx, scope.TutorsOfTenant)
		if err != nil {
			return nil, storeErr(err)
		}
		for _, tid := range ids {
			if d.UploadedBy == tid {
				return d, nil
			}
		}
		return nil, ErrNotFound
	}
}

// UpdateDocument is the administrative correction path: it is not scoped by
// tenant and must only be reachable by admins.
func (s *DocumentService) UpdateDocument(ctx context.Context, id uint64, p repository.DocumentPatch) (*model.Document, error) {
	if p.DocTypeID != nil {
		if _, err := s.docs.GetType(ctx, *p.DocTypeID); err != nil {
			if e := storeErr(err); !errors.Is(e, ErrNotFound) {
				return nil, e
			}
			return nil, ErrInvalidReference
		}
	}
	d, err := s.docs.Update(ctx, id, p)
	if err != nil {
		return nil, storeErr(err)
	}
	return d, nil
}

// DeleteDocument removes a document on the administrative path.
func (s *DocumentService) DeleteDocument(ctx context.Context, id uint64) error {
	if err := s.docs.Delete(ctx, id); err != nil {
		return storeErr(err)
	}
	return nil
}

// ListDocumentTypes returns the document type reference data.
func (s *DocumentService) ListDocumentTypes(ctx context.Context) ([]*model.DocumentType, error) {
	out, err := s.docs.ListTypes(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}
