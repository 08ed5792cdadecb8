// internal/domain/user/repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrUserNotFound is returned when no active user matches
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an existing email
	ErrEmailTaken = errors.New("user with this email already exists")
)

// Repository persists users
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
}

// GormRepository stores users in Postgres
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM backed repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, u *User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *GormRepository) FindByID(ctx context.Context, id uint) (*User, error) {
	return r.findOne(ctx, "id = ? AND is_active = ?", id, true)
}

func (r *GormRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, "email = ? AND is_active = ?", normalizeEmail(email), true)
}

func (r *GormRepository) findOne(ctx context.Context, query string, args ...any) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

func (r *GormRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("last_login_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// EnsureAdmin creates the admin account if no user has the email yet
func (r *GormRepository) EnsureAdmin(ctx context.Context, email, passwordHash string) error {
	admin := User{
		Email:    normalizeEmail(email),
		Password: passwordHash,
		IsActive: true,
		IsAdmin:  true,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(&admin).Error
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	return nil
}

// MemoryRepository keeps users in process for tests
type MemoryRepository struct {
	mu     sync.RWMutex
	users  []User
	nextID uint
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u.Email = normalizeEmail(u.Email)
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.users = append(m.users, *u)
	return nil
}

func (m *MemoryRepository) FindByID(_ context.Context, id uint) (*User, error) {
	return m.find(func(u *User) bool { return u.ID == id })
}

func (m *MemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	email = normalizeEmail(email)
	return m.find(func(u *User) bool { return u.Email == email })
}

func (m *MemoryRepository) find(match func(*User) bool) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.users {
		if m.users[i].IsActive && match(&m.users[i]) {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MemoryRepository) UpdateLastLogin(_ context.Context, id uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].LastLoginAt = &at
			return nil
		}
	}
	return ErrUserNotFound
}
