package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ead/authuser/internal/database"
	"github.com/ead/authuser/internal/model"
	"github.com/google/uuid"
)

// UserStore defines the persistence operations needed by UserService
type UserStore interface {
	FindAllPageable(ctx context.Context, req model.PageRequest) (*model.Page[model.User], error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Save(ctx context.Context, user *model.User) (*model.User, error)
	Delete(ctx context.Context, user *model.User) error
	Ping(ctx context.Context) error
}

// UserService handles user listing, lookup, update and deletion
type UserService struct {
	store UserStore
	now   func() time.Time
}

// UserServiceConfig holds configuration for the user service
type UserServiceConfig struct {
	Store UserStore
	// Now overrides the clock used for lastUpdateDate. Defaults to time.Now.
	Now func() time.Time
}

// NewUserService creates a new user service
func NewUserService(cfg UserServiceConfig) *UserService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &UserService{store: cfg.Store, now: now}
}

// FindAllPageable returns one page of users. An empty page is reported as
// ErrUserListNotFound.
func (s *UserService) FindAllPageable(ctx context.Context, req model.PageRequest) (*model.Page[model.User], error) {
	req = req.Normalize()
	if err := validatePageRequest(req); err != nil {
		return nil, err
	}

	page, err := s.store.FindAllPageable(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if page.IsEmpty() {
		return nil, ErrUserListNotFound
	}
	return page, nil
}

// FindByID returns the user with the given id or ErrUserNotFound
func (s *UserService) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Update overwrites full name, phone number and CPF and stamps lastUpdateDate.
// All other fields are left untouched.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, upd model.UserUpdate) (*model.User, error) {
	if err := validatePayload(upd); err != nil {
		return nil, err
	}

	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	upd.Apply(user, s.now())

	saved, err := s.store.Save(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", mapStoreError(err))
	}
	return saved, nil
}

// Delete removes the user and returns its last known state
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, user); err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return user, nil
}

// Save persists a user as-is
func (s *UserService) Save(ctx context.Context, user *model.User) (*model.User, error) {
	saved, err := s.store.Save(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("save user: %w", mapStoreError(err))
	}
	return saved, nil
}

// Ping reports whether the backing store is reachable
func (s *UserService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func validatePageRequest(req model.PageRequest) error {
	if !model.IsSortableField(req.Sort) {
		return fmt.Errorf("%w: %q", ErrInvalidSortField, req.Sort)
	}
	if req.Direction != model.SortAsc && req.Direction != model.SortDesc {
		return fmt.Errorf("%w: %q", ErrInvalidSortDirection, req.Direction)
	}
	if v := req.Filter(model.FilterUserType); v != "" && !model.IsValidUserType(v) {
		return fmt.Errorf("%w: userType %q", ErrInvalidFilter, v)
	}
	if v := req.Filter(model.FilterUserStatus); v != "" && !model.IsValidUserStatus(v) {
		return fmt.Errorf("%w: userStatus %q", ErrInvalidFilter, v)
	}
	return nil
}

func mapStoreError(err error) error {
	if errors.Is(err, database.ErrDuplicate) {
		return fmt.Errorf("%w: %v", ErrUserAlreadyExists, err)
	}
	return err
}
