package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	authdomain "reliance-backend/internal/auth/domain"

	"github.com/google/uuid"
)

// MemoryUserRepository keeps users and refresh tokens in process memory
type MemoryUserRepository struct {
	mu      sync.RWMutex
	users   map[string]authdomain.User
	byEmail map[string]string
	tokens  map[string]authdomain.RefreshToken
}

// NewMemoryUserRepository creates an empty in-memory UserRepository
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[string]authdomain.User),
		byEmail: make(map[string]string),
		tokens:  make(map[string]authdomain.RefreshToken),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *authdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	if _, exists := r.byEmail[email]; exists {
		return authdomain.ErrEmailTaken
	}
	user.ID = uuid.New().String()
	user.Email = email
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	r.users[user.ID] = *user
	r.byEmail[email] = user.ID
	return nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*authdomain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, nil
	}
	user := r.users[id]
	return &user, nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*authdomain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *MemoryUserRepository) ReplaceRefreshToken(_ context.Context, token *authdomain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for key, existing := range r.tokens {
		if existing.UserID == token.UserID && existing.ExpiresAt.Before(now) {
			delete(r.tokens, key)
		}
	}
	r.tokens[token.Token] = *token
	return nil
}

func (r *MemoryUserRepository) FindRefreshToken(_ context.Context, token string) (*authdomain.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tokens[token]
	if !ok {
		return nil, nil
	}
	return &rt, nil
}

func (r *MemoryUserRepository) DeleteRefreshToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, token)
	return nil
}
