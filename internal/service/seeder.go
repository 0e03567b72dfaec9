package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mrand "math/rand/v2"
	"time"

	"github.com/ead/authuser/internal/model"
	"github.com/google/uuid"

	"golang.org/x/crypto/bcrypt"
)

// UserSaver persists users created by the seeder
type UserSaver interface {
	Save(ctx context.Context, user *model.User) (*model.User, error)
}

// SeederService generates mock users for testing and development
type SeederService struct {
	store UserSaver
	now   func() time.Time
}

// NewSeederService creates a new seeder service
func NewSeederService(store UserSaver) *SeederService {
	return &SeederService{store: store, now: time.Now}
}

// SeedUsersRequest configures user seeding
type SeedUsersRequest struct {
	Count int `json:"count"`
	// Prefix for seeded user names and emails to identify them later
	Prefix string `json:"prefix,omitempty"`
	// Password shared by every seeded user, stored as a bcrypt hash
	Password string `json:"password,omitempty"`
}

// SeedResult contains the results of a seeding operation
type SeedResult struct {
	Created  int      `json:"created"`
	IDs      []string `json:"ids"`
	Duration int64    `json:"duration_ms"`
}

// Sample data for realistic generation
var (
	firstNames = []string{
		"Ana", "Bruno", "Camila", "Diego", "Eduarda", "Felipe", "Gabriela", "Heitor",
		"Isabela", "João", "Larissa", "Lucas", "Mariana", "Nicolas", "Olivia", "Pedro",
		"Rafaela", "Samuel", "Tatiana", "Vinicius",
	}
	lastNames = []string{
		"Silva", "Santos", "Oliveira", "Souza", "Rodrigues", "Ferreira", "Alves",
		"Pereira", "Lima", "Gomes", "Costa", "Ribeiro", "Martins", "Carvalho",
	}
	seedTypes = []model.UserType{
		model.UserTypeStudent, model.UserTypeStudent, model.UserTypeStudent,
		model.UserTypeInstructor, model.UserTypeAdmin,
	}
)

// SeedUsers creates mock users
func (s *SeederService) SeedUsers(ctx context.Context, req SeedUsersRequest) (*SeedResult, error) {
	start := time.Now()

	if req.Count <= 0 || req.Count > 1000 {
		return nil, ErrSeedCountOutOfRange
	}
	if req.Prefix == "" {
		req.Prefix = "seed_"
	}
	if req.Password == "" {
		req.Password = "testpass123"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	ids := make([]string, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		randID := randomID()
		firstName := firstNames[mrand.IntN(len(firstNames))]
		lastName := lastNames[mrand.IntN(len(lastNames))]
		created := s.now().UTC().Add(-time.Duration(mrand.IntN(90*24)) * time.Hour)

		status := model.UserStatusActive
		if mrand.IntN(10) == 0 {
			status = model.UserStatusBlocked
		}

		user := &model.User{
			UserID:         uuid.New(),
			UserName:       req.Prefix + randID,
			Email:          fmt.Sprintf("%s%s@test.local", req.Prefix, randID),
			Password:       string(hash),
			FullName:       firstName + " " + lastName,
			UserStatus:     status,
			UserType:       seedTypes[mrand.IntN(len(seedTypes))],
			PhoneNumber:    fmt.Sprintf("+55 11 9%04d-%04d", mrand.IntN(10000), mrand.IntN(10000)),
			CPF:            randomCPF(),
			CreationDate:   created,
			LastUpdateDate: created,
		}

		saved, err := s.store.Save(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		ids = append(ids, saved.UserID.String())
	}

	return &SeedResult{
		Created:  len(ids),
		IDs:      ids,
		Duration: time.Since(start).Milliseconds(),
	}, nil
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// randomCPF formats eleven random digits as a CPF
func randomCPF() string {
	return fmt.Sprintf("%03d.%03d.%03d-%02d", mrand.IntN(1000), mrand.IntN(1000), mrand.IntN(1000), mrand.IntN(100))
}
