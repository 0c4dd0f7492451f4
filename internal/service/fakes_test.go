package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/edustack/tutor-platform/internal/model"
	"github.com/edustack/tutor-platform/internal/queue"
	"github.com/edustack/tutor-platform/internal/repository"
)

// fakeTenantStore is an in-memory TenantStore.
type fakeTenantStore struct {
	seq     uint64
	tenants map[uint64]*model.Tenant
}

func newFakeTenantStore() *fakeTenantStore {
	return &fakeTenantStore{tenants: map[uint64]*model.Tenant{}}
}

func (s *fakeTenantStore) add(t model.Tenant) *model.Tenant {
	if t.ID == 0 {
		s.seq++
		t.ID = s.seq
	} else if t.ID > s.seq {
		s.seq = t.ID
	}
	cp := t
	s.tenants[cp.ID] = &cp
	return &cp
}

func (s *fakeTenantStore) Create(_ context.Context, t *model.Tenant) error {
	for _, ex := range s.tenants {
		if strings.EqualFold(ex.Email, t.Email) {
			return repository.ErrDuplicate
		}
	}
	s.seq++
	t.ID = s.seq
	t.IsActive = true
	t.CreatedAt = time.Now()
	cp := *t
	s.tenants[t.ID] = &cp
	return nil
}

func (s *fakeTenantStore) GetByID(_ context.Context, id uint64) (*model.Tenant, error) {
	t, ok := s.tenants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeTenantStore) GetByIDAndCreator(_ context.Context, id, creatorID uint64) (*model.Tenant, error) {
	t, ok := s.tenants[id]
	if !ok || t.CreatedBy != creatorID {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeTenantStore) ListByCreator(_ context.Context, creatorID uint64) ([]*model.Tenant, error) {
	var out []*model.Tenant
	for _, t := range s.tenants {
		if t.CreatedBy == creatorID && t.IsActive {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *fakeTenantStore) EmailExists(_ context.Context, email string, excludeID uint64) (bool, error) {
	for _, t := range s.tenants {
		if t.ID != excludeID && strings.EqualFold(t.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeTenantStore) Update(_ context.Context, id, creatorID uint64, p repository.TenantPatch) (*model.Tenant, error) {
	t, ok := s.tenants[id]
	if !ok || t.CreatedBy != creatorID {
		return nil, repository.ErrNotFound
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Email != nil {
		t.Email = *p.Email
	}
	if p.Phone != nil {
		t.Phone = *p.Phone
	}
	if p.Address != nil {
		t.Address = *p.Address
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	cp := *t
	return &cp, nil
}

func (s *fakeTenantStore) Deactivate(_ context.Context, id, creatorID uint64) (*model.Tenant, error) {
	t, ok := s.tenants[id]
	if !ok || t.CreatedBy != creatorID {
		return nil, repository.ErrNotFound
	}
	t.IsActive = false
	cp := *t
	return &cp, nil
}

// fakeUserStore is an in-memory UserStore. Tenant display names for
// TenantNameOf come from the names map.
type fakeUserStore struct {
	seq   uint64
	users map[uint64]*model.User
	names map[uint64]string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint64]*model.User{}, names: map[uint64]string{}}
}

func (s *fakeUserStore) add(u model.User) *model.User {
	if u.Status == "" {
		u.Status = model.StatusActive
	}
	if u.ID == 0 {
		s.seq++
		u.ID = s.seq
	} else if u.ID > s.seq {
		s.seq = u.ID
	}
	cp := u
	s.users[cp.ID] = &cp
	return &cp
}

func (s *fakeUserStore) Create(_ context.Context, u *model.User) error {
	for _, ex := range s.users {
		if strings.EqualFold(ex.Email, u.Email) {
			return repository.ErrDuplicate
		}
		if u.Username != "" && ex.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	s.seq++
	u.ID = s.seq
	u.Status = model.StatusActive
	u.CreatedAt = time.Now()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeUserStore) EmailExists(_ context.Context, email string, excludeID uint64) (bool, error) {
	for _, u := range s.users {
		if u.ID != excludeID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) UsernameExists(_ context.Context, username string, excludeID uint64) (bool, error) {
	for _, u := range s.users {
		if u.ID != excludeID && u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) TenantHasTutor(_ context.Context, tenantID uint64) (bool, error) {
	for _, u := range s.users {
		if u.TenantID == tenantID && u.Role == model.RoleTutor && u.Status != model.StatusDeleted {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) Update(_ context.Context, id uint64, p repository.UserPatch) error {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.Image != nil {
		u.Image = *p.Image
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.EmailVerified != nil {
		u.EmailVerified = *p.EmailVerified
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.UpdatedBy != nil {
		u.UpdatedBy = *p.UpdatedBy
	}
	return nil
}

func (s *fakeUserStore) UpdateStatus(_ context.Context, id, updatedBy uint64, st model.Status) error {
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Status = st
	u.UpdatedBy = updatedBy
	return nil
}

func (s *fakeUserStore) ListStudents(_ context.Context, tenantID uint64, limit, offset int) ([]*model.User, error) {
	var all []*model.User
	for _, u := range s.users {
		if u.TenantID == tenantID && u.Role == model.RoleStudent && u.Status == model.StatusActive {
			cp := *u
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *fakeUserStore) CountStudents(_ context.Context, tenantID uint64) (int64, error) {
	var n int64
	for _, u := range s.users {
		if u.TenantID == tenantID && u.Role == model.RoleStudent && u.Status == model.StatusActive {
			n++
		}
	}
	return n, nil
}

func (s *fakeUserStore) ListTutors(_ context.Context) ([]*model.User, error) {
	var out []*model.User
	for _, u := range s.users {
		if u.Role == model.RoleTutor && u.Status != model.StatusDeleted {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *fakeUserStore) TutorIDsByTenant(_ context.Context, tenantID uint64) ([]uint64, error) {
	var ids []uint64
	for _, u := range s.users {
		if u.TenantID == tenantID && u.Role == model.RoleTutor && u.Status == model.StatusActive {
			ids = append(ids, u.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *fakeUserStore) TenantNameOf(_ context.Context, tenantID uint64) (string, error) {
	return s.names[tenantID], nil
}

// fakeDocStore is an in-memory DocumentStore.
type fakeDocStore struct {
	seq   uint64
	docs  map[uint64]*model.Document
	types map[uint64]*model.DocumentType
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{docs: map[uint64]*model.Document{}, types: map[uint64]*model.DocumentType{}}
}

func (s *fakeDocStore) addType(id uint64, name string) {
	s.types[id] = &model.DocumentType{ID: id, Name: name}
}

func (s *fakeDocStore) add(d model.Document) *model.Document {
	if d.ID == 0 {
		s.seq++
		d.ID = s.seq
	} else if d.ID > s.seq {
		s.seq = d.ID
	}
	cp := d
	s.docs[cp.ID] = &cp
	return &cp
}

func (s *fakeDocStore) Create(_ context.Context, d *model.Document) error {
	s.seq++
	d.ID = s.seq
	d.CreatedAt = time.Now()
	cp := *d
	s.docs[d.ID] = &cp
	return nil
}

func (s *fakeDocStore) GetByID(_ context.Context, id uint64) (*model.Document, error) {
	d, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *fakeDocStore) List(_ context.Context, f repository.DocumentFilter) ([]*model.Document, error) {
	match := func(d *model.Document) bool {
		switch {
		case f.UploadedBy != 0:
			return d.UploadedBy == f.UploadedBy
		case f.UploaderIn != nil:
			for _, id := range f.UploaderIn {
				if d.UploadedBy == id {
					return true
				}
			}
			return false
		default:
			return true
		}
	}
	var out []*model.Document
	for _, d := range s.docs {
		if match(d) {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *fakeDocStore) Update(_ context.Context, id uint64, p repository.DocumentPatch) (*model.Document, error) {
	d, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.DocTypeID != nil {
		d.DocTypeID = *p.DocTypeID
	}
	if p.Brief != nil {
		d.Brief = *p.Brief
	}
	if p.URL != nil {
		d.URL = *p.URL
	}
	if p.StorageKey != nil {
		d.StorageKey = *p.StorageKey
	}
	cp := *d
	return &cp, nil
}

func (s *fakeDocStore) Delete(_ context.Context, id uint64) error {
	if _, ok := s.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *fakeDocStore) GetType(_ context.Context, id uint64) (*model.DocumentType, error) {
	t, ok := s.types[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeDocStore) ListTypes(_ context.Context) ([]*model.DocumentType, error) {
	var out []*model.DocumentType
	for _, t := range s.types {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeHasher records every Hash call so tests can assert on ordering and on
// what exactly was hashed.
type fakeHasher struct {
	hashed []string
}

func (h *fakeHasher) Hash(plain string) (string, error) {
	h.hashed = append(h.hashed, plain)
	return "hashed:" + plain, nil
}

func (h *fakeHasher) Verify(hash, plain string) bool {
	return hash == "hashed:"+plain
}

// fakeMail records published mail requests.
type fakeMail struct {
	sent []queue.MailRequested
	err  error
}

func (m *fakeMail) PublishMail(_ context.Context, req queue.MailRequested) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, req)
	return nil
}
