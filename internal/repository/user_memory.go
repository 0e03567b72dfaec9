package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ead/authuser/internal/database"
	"github.com/ead/authuser/internal/model"
	"github.com/google/uuid"
)

// MemoryUserRepository keeps users in process memory. Used for local runs
// and as the store behind handler and service tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]model.User
}

// NewMemoryUserRepository creates an empty in-memory store
func NewMemoryUserRepository(seed ...model.User) *MemoryUserRepository {
	r := &MemoryUserRepository{users: make(map[uuid.UUID]model.User, len(seed))}
	for _, u := range seed {
		r.users[u.UserID] = u
	}
	return r
}

// FindAllPageable returns one page of users matching the request filters
func (r *MemoryUserRepository) FindAllPageable(ctx context.Context, req model.PageRequest) (*model.Page[model.User], error) {
	req = req.Normalize()
	filter := newUserFilter(req)

	r.mu.RLock()
	matched := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		if filter.matches(&u) {
			matched = append(matched, u)
		}
	}
	r.mu.RUnlock()

	less := userLess(req.Sort)
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := &matched[i], &matched[j]
		if c := less(a, b); c != 0 {
			if req.Direction == model.SortAsc {
				return c < 0
			}
			return c > 0
		}
		return a.UserID.String() < b.UserID.String()
	})

	total := int64(len(matched))
	start := req.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + req.Size
	if end > len(matched) {
		end = len(matched)
	}

	content := make([]model.User, end-start)
	copy(content, matched[start:end])
	return model.NewPage(content, req, total), nil
}

// FindByID retrieves a user by ID
func (r *MemoryUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", database.ErrNotFound, id)
	}
	return &u, nil
}

// Save inserts or replaces the user keyed by its UserID
func (r *MemoryUserRepository) Save(ctx context.Context, user *model.User) (*model.User, error) {
	saved := *user
	if saved.UserID == uuid.Nil {
		saved.UserID = uuid.New()
	}
	saved.CreationDate = storageTime(saved.CreationDate)
	saved.LastUpdateDate = storageTime(saved.LastUpdateDate)

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.users {
		if id == saved.UserID {
			continue
		}
		if existing.UserName == saved.UserName || strings.EqualFold(existing.Email, saved.Email) {
			return nil, fmt.Errorf("%w: user name or email already exists", database.ErrDuplicate)
		}
	}
	r.users[saved.UserID] = saved
	return &saved, nil
}

// Delete deletes a user
func (r *MemoryUserRepository) Delete(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, user.UserID)
	return nil
}

// Ping always succeeds
func (r *MemoryUserRepository) Ping(ctx context.Context) error {
	return nil
}

// userLess returns a three-way comparator for the given sort field
func userLess(field string) func(a, b *model.User) int {
	switch field {
	case model.SortFullName:
		return func(a, b *model.User) int { return strings.Compare(a.FullName, b.FullName) }
	case model.SortEmail:
		return func(a, b *model.User) int { return strings.Compare(a.Email, b.Email) }
	case model.SortUserStatus:
		return func(a, b *model.User) int { return strings.Compare(string(a.UserStatus), string(b.UserStatus)) }
	case model.SortUserType:
		return func(a, b *model.User) int { return strings.Compare(string(a.UserType), string(b.UserType)) }
	case model.SortCreationDate:
		return func(a, b *model.User) int { return a.CreationDate.Compare(b.CreationDate) }
	case model.SortLastUpdateDate:
		return func(a, b *model.User) int { return a.LastUpdateDate.Compare(b.LastUpdateDate) }
	default:
		return func(a, b *model.User) int { return strings.Compare(a.UserName, b.UserName) }
	}
}
