// Package fixtures provides test data factories.
//
// Each factory method creates users with sensible defaults while allowing
// customization via option functions. Factories persist through any store
// that can save a user and return the stored model.
//
// Usage:
//
//	f := fixtures.New(store)
//	user := f.CreateUser(t)
//	admin := f.CreateUser(t, fixtures.WithType(model.UserTypeAdmin))
package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/ead/authuser/internal/model"
	"github.com/google/uuid"

	"golang.org/x/crypto/bcrypt"
)

// Saver persists a user
type Saver interface {
	Save(ctx context.Context, user *model.User) (*model.User, error)
}

// Factory creates test users in a store
type Factory struct {
	store Saver
}

// New creates a new fixture factory
func New(store Saver) *Factory {
	return &Factory{store: store}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// UserOpts customizes user creation
type UserOpts struct {
	UserName    string
	Email       string
	Password    string
	FullName    string
	Status      model.UserStatus
	Type        model.UserType
	PhoneNumber string
	CPF         string
	CreatedAt   time.Time
}

// WithName sets user name and full name
func WithName(userName, fullName string) func(*UserOpts) {
	return func(o *UserOpts) {
		o.UserName = userName
		o.FullName = fullName
	}
}

// WithEmail sets the email address
func WithEmail(email string) func(*UserOpts) {
	return func(o *UserOpts) { o.Email = email }
}

// WithType sets the user type
func WithType(userType model.UserType) func(*UserOpts) {
	return func(o *UserOpts) { o.Type = userType }
}

// WithStatus sets the user status
func WithStatus(status model.UserStatus) func(*UserOpts) {
	return func(o *UserOpts) { o.Status = status }
}

// WithCreatedAt sets creation and last update timestamps
func WithCreatedAt(ts time.Time) func(*UserOpts) {
	return func(o *UserOpts) { o.CreatedAt = ts }
}

// NewUser builds an unsaved user. The password is stored as a bcrypt hash.
func NewUser(t *testing.T, opts ...func(*UserOpts)) model.User {
	t.Helper()

	id := randomID()
	o := &UserOpts{
		UserName:    "user_" + id,
		Email:       fmt.Sprintf("user_%s@test.local", id),
		Password:    "testpass123",
		FullName:    "Test User " + id,
		Status:      model.UserStatusActive,
		Type:        model.UserTypeStudent,
		PhoneNumber: "+55 11 90000-0000",
		CPF:         "000.000.000-00",
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	for _, fn := range opts {
		fn(o)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}

	return model.User{
		UserID:         uuid.New(),
		UserName:       o.UserName,
		Email:          o.Email,
		Password:       string(hash),
		FullName:       o.FullName,
		UserStatus:     o.Status,
		UserType:       o.Type,
		PhoneNumber:    o.PhoneNumber,
		CPF:            o.CPF,
		CreationDate:   o.CreatedAt,
		LastUpdateDate: o.CreatedAt,
	}
}

// CreateUser creates a user with optional customizations
func (f *Factory) CreateUser(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	user := NewUser(t, opts...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	saved, err := f.store.Save(ctx, &user)
	if err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}
	return saved
}

// CreateUsers creates n users with default settings
func (f *Factory) CreateUsers(t *testing.T, n int) []*model.User {
	t.Helper()

	users := make([]*model.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, f.CreateUser(t))
	}
	return users
}
