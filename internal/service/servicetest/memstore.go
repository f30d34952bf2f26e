// Package servicetest provides in-memory stores for exercising services
// without a database.
package servicetest

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/devconnect/devconnect/internal/model"
	"github.com/devconnect/devconnect/internal/repository"
)

// MemStore is an in-memory document store with the same versioning
// semantics as the PostgreSQL repository.
type MemStore struct {
	mu       sync.Mutex
	users    map[string]*model.User
	profiles map[string]*model.Profile // keyed by user ID
	posts    map[string]*model.Post

	// conflicts makes the next N document updates fail with a version conflict.
	conflicts int
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		users:    map[string]*model.User{},
		profiles: map[string]*model.Profile{},
		posts:    map[string]*model.Post{},
	}
}

func (m *MemStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	u := *user
	m.users[user.ID] = &u
	return nil
}

func (m *MemStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MemStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	for pid, p := range m.posts {
		if p.UserID == id {
			delete(m.posts, pid)
		}
	}
	delete(m.profiles, id)
	delete(m.users, id)
	return nil
}

func (m *MemStore) CreateProfile(_ context.Context, profile *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[profile.UserID]; ok {
		return repository.ErrProfileExists
	}
	profile.Version = 1
	m.profiles[profile.UserID] = copyProfile(profile)
	return nil
}

func (m *MemStore) GetProfileByUserID(_ context.Context, userID string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	cp := copyProfile(p)
	if u, ok := m.users[userID]; ok {
		cp.User = model.UserSummary{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
	}
	return cp, nil
}

func (m *MemStore) ListProfiles(_ context.Context) ([]*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Profile{}
	for _, p := range m.profiles {
		out = append(out, copyProfile(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemStore) UpdateProfile(_ context.Context, profile *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.profiles[profile.UserID]
	if !ok || stored.ID != profile.ID {
		return repository.ErrProfileNotFound
	}
	if m.conflicts > 0 {
		m.conflicts--
		stored.Version++
		return repository.ErrVersionConflict
	}
	if stored.Version != profile.Version {
		return repository.ErrVersionConflict
	}
	profile.Version++
	m.profiles[profile.UserID] = copyProfile(profile)
	return nil
}

func (m *MemStore) CreatePost(_ context.Context, post *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	post.Version = 1
	m.posts[post.ID] = copyPost(post)
	return nil
}

func (m *MemStore) GetPostByID(_ context.Context, id string) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	return copyPost(p), nil
}

func (m *MemStore) ListPosts(_ context.Context) ([]*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Post{}
	for _, p := range m.posts {
		out = append(out, copyPost(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) UpdatePost(_ context.Context, post *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.posts[post.ID]
	if !ok {
		return repository.ErrPostNotFound
	}
	if m.conflicts > 0 {
		m.conflicts--
		stored.Version++
		return repository.ErrVersionConflict
	}
	if stored.Version != post.Version {
		return repository.ErrVersionConflict
	}
	post.Version++
	m.posts[post.ID] = copyPost(post)
	return nil
}

func (m *MemStore) DeletePost(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return repository.ErrPostNotFound
	}
	delete(m.posts, id)
	return nil
}

// FailNextUpdates makes the next n document updates report a version conflict.
func (m *MemStore) FailNextUpdates(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts = n
}

func copyProfile(p *model.Profile) *model.Profile {
	cp := *p
	cp.Skills = slices.Clone(p.Skills)
	cp.Experience = slices.Clone(p.Experience)
	cp.Education = slices.Clone(p.Education)
	return &cp
}

func copyPost(p *model.Post) *model.Post {
	cp := *p
	cp.Likes = slices.Clone(p.Likes)
	cp.Comments = slices.Clone(p.Comments)
	return &cp
}
