package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustack/tutor-platform/internal/model"
	"github.com/edustack/tutor-platform/internal/policy"
	"github.com/edustack/tutor-platform/internal/repository"
)

type docFixture struct {
	docs  *fakeDocStore
	users *fakeUserStore
	svc   *DocumentService
}

// newDocFixture builds two tenants: tenant 10 with tutor U, tenant 20 with
// tutor V. U uploaded three documents, V uploaded two.
func newDocFixture() (*docFixture, *model.User, *model.User) {
	f := &docFixture{docs: newFakeDocStore(), users: newFakeUserStore()}
	f.svc = NewDocumentService(f.docs, f.users)
	f.docs.addType(1, "Worksheet")
	f.docs.addType(2, "Homework")

	u := f.users.add(model.User{Name: "U", Email: "u@example.com", Role: model.RoleTutor, TenantID: 10})
	v := f.users.add(model.User{Name: "V", Email: "v@example.com", Role: model.RoleTutor, TenantID: 20})
	for i := 0; i < 3; i++ {
		f.docs.add(model.Document{Title: "U doc", DocTypeID: 1, Brief: "b", UploadedBy: u.ID, CreatedBy: u.ID})
	}
	for i := 0; i < 2; i++ {
		f.docs.add(model.Document{Title: "V doc", DocTypeID: 1, Brief: "b", UploadedBy: v.ID, CreatedBy: v.ID})
	}
	return f, u, v
}

func TestCreateDocument(t *testing.T) {
	ctx := context.Background()
	f, u, _ := newDocFixture()
	tutor := policy.Caller{ID: u.ID, Role: model.RoleTutor, TenantID: 10}

	t.Run("uploader and creator are the caller", func(t *testing.T) {
		got, err := f.svc.CreateDocument(ctx, tutor, CreateDocumentInput{
			Title: "Algebra week 3", DocTypeID: 1, Brief: "practice set",
		})
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.UploadedBy)
		assert.Equal(t, u.ID, got.CreatedBy)
		assert.NotZero(t, got.ID)
	})

	t.Run("blank title or brief is rejected", func(t *testing.T) {
		_, err := f.svc.CreateDocument(ctx, tutor, CreateDocumentInput{Title: "  ", DocTypeID: 1, Brief: "b"})
		assert.ErrorIs(t, err, ErrValidation)
		_, err = f.svc.CreateDocument(ctx, tutor, CreateDocumentInput{Title: "t", DocTypeID: 1, Brief: ""})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown document type is an invalid reference, not a not-found", func(t *testing.T) {
		_, err := f.svc.CreateDocument(ctx, tutor, CreateDocumentInput{Title: "t", DocTypeID: 404, Brief: "b"})
		assert.ErrorIs(t, err, ErrInvalidReference)
	})
}

func TestListDocumentsScope(t *testing.T) {
	ctx := context.Background()

	t.Run("a tutor sees only its own uploads", func(t *testing.T) {
		f, u, _ := newDocFixture()
		out, err := f.svc.ListDocuments(ctx, policy.Caller{ID: u.ID, Role: model.RoleTutor, TenantID: 10})
		require.NoError(t, err)
		require.Len(t, out, 3)
		for _, d := range out {
			assert.Equal(t, u.ID, d.UploadedBy)
		}
	})

	t.Run("a student sees its tenant's tutor uploads, newest first", func(t *testing.T) {
		f, u, _ := newDocFixture()
		student := policy.Caller{ID: 99, Role: model.RoleStudent, TenantID: 10}
		out, err := f.svc.ListDocuments(ctx, student)
		require.NoError(t, err)
		require.Len(t, out, 3)
		for i, d := range out {
			assert.Equal(t, u.ID, d.UploadedBy)
			if i > 0 {
				assert.Less(t, d.ID, out[i-1].ID)
			}
		}
	})

	t.Run("a student of a tenant without tutors sees an empty list", func(t *testing.T) {
		f, _, _ := newDocFixture()
		student := policy.Caller{ID: 99, Role: model.RoleStudent, TenantID: 30}
		out, err := f.svc.ListDocuments(ctx, student)
		require.NoError(t, err)
		// Empty, never nil: the listing serializes as [] for every caller.
		require.NotNil(t, out)
		assert.Empty(t, out)
	})

	t.Run("an admin sees everything", func(t *testing.T) {
		f, _, _ := newDocFixture()
		out, err := f.svc.ListDocuments(ctx, adminCaller(1))
		require.NoError(t, err)
		assert.Len(t, out, 5)
	})
}

func TestGetDocumentByIDScope(t *testing.T) {
	ctx := context.Background()
	f, u, v := newDocFixture()
	var uDoc, vDoc *model.Document
	for _, d := range f.docs.docs {
		switch d.UploadedBy {
		case u.ID:
			uDoc = d
		case v.ID:
			vDoc = d
		}
	}
	require.NotNil(t, uDoc)
	require.NotNil(t, vDoc)

	student := policy.Caller{ID: 99, Role: model.RoleStudent, TenantID: 10}

	got, err := f.svc.GetDocumentByID(ctx, student, uDoc.ID)
	require.NoError(t, err)
	assert.Equal(t, uDoc.ID, got.ID)

	// An existing document outside the caller's scope reads exactly like a
	// missing one.
	_, err = f.svc.GetDocumentByID(ctx, student, vDoc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.GetDocumentByID(ctx, student, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.GetDocumentByID(ctx, policy.Caller{ID: u.ID, Role: model.RoleTutor, TenantID: 10}, vDoc.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = f.svc.GetDocumentByID(ctx, adminCaller(1), vDoc.ID)
	require.NoError(t, err)
	assert.Equal(t, vDoc.ID, got.ID)
}

func TestUpdateAndDeleteDocument(t *testing.T) {
	ctx := context.Background()
	f, u, _ := newDocFixture()
	var id uint64
	for _, d := range f.docs.docs {
		if d.UploadedBy == u.ID {
			id = d.ID
			break
		}
	}

	t.Run("type change is checked against the reference data", func(t *testing.T) {
		bad := uint64(404)
		_, err := f.svc.UpdateDocument(ctx, id, repository.DocumentPatch{DocTypeID: &bad})
		assert.ErrorIs(t, err, ErrInvalidReference)

		good := uint64(2)
		title := "corrected"
		got, err := f.svc.UpdateDocument(ctx, id, repository.DocumentPatch{DocTypeID: &good, Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "corrected", got.Title)
		assert.Equal(t, uint64(2), got.DocTypeID)
	})

	t.Run("delete removes the record for good", func(t *testing.T) {
		require.NoError(t, f.svc.DeleteDocument(ctx, id))
		assert.ErrorIs(t, f.svc.DeleteDocument(ctx, id), ErrNotFound)
		_, err := f.svc.GetDocumentByID(ctx, adminCaller(1), id)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListDocumentTypes(t *testing.T) {
	f, _, _ := newDocFixture()
	out, err := f.svc.ListDocumentTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Worksheet", out[0].Name)
}
