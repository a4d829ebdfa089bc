package command

import (
	"context"
	"testing"

	"cam-server/internal/models"
	"cam-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUserStore struct {
	users  map[int64]*models.User
	nextID int64
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[int64]*models.User), nextID: 1}
}

func (s *memoryUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = s.nextID
	s.nextID++
	clone := *user
	s.users[user.ID] = &clone
	return user, nil
}

func (s *memoryUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *memoryUserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *memoryUserStore) TouchLastLogin(ctx context.Context, id int64) error {
	return nil
}

// Covers the full registration flow over the wire strings: login before
// registering fails, registering succeeds, logging in again still fails
// because the account awaits approval.
func TestLoginRegisterLoginScenario(t *testing.T) {
	store := newMemoryUserStore()
	auth := service.NewAuthService(store)
	login := NewLoginHandler(auth)
	register := NewRegisterHandler(auth)
	ctx := context.Background()

	assert.Equal(t, "ERROR|invalid credentials or not approved",
		login.Handle(ctx, []string{"LOGIN", "a@b.com", "pw1"}))

	assert.Equal(t, "SUCCESS|User registered successfully. Awaiting approval.",
		register.Handle(ctx, []string{"REGISTER", "alice", "a@b.com", "pw1"}))

	assert.Equal(t, "ERROR|invalid credentials or not approved",
		login.Handle(ctx, []string{"LOGIN", "a@b.com", "pw1"}))
}

func TestLoginAfterApproval(t *testing.T) {
	store := newMemoryUserStore()
	auth := service.NewAuthService(store)
	login := NewLoginHandler(auth)
	register := NewRegisterHandler(auth)
	ctx := context.Background()

	require.Equal(t, "SUCCESS|User registered successfully. Awaiting approval.",
		register.Handle(ctx, []string{"REGISTER", "alice", "a@b.com", "pw1"}))
	store.users[1].Approved = true

	assert.Equal(t, "SUCCESS|1", login.Handle(ctx, []string{"LOGIN", "a@b.com", "pw1"}))
	assert.Equal(t, "ERROR|invalid credentials or not approved",
		login.Handle(ctx, []string{"LOGIN", "a@b.com", "wrong"}))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	store := newMemoryUserStore()
	auth := service.NewAuthService(store)
	register := NewRegisterHandler(auth)
	ctx := context.Background()

	require.Equal(t, "SUCCESS|User registered successfully. Awaiting approval.",
		register.Handle(ctx, []string{"REGISTER", "alice", "a@b.com", "pw1"}))

	assert.Equal(t, "ERROR|Username already exists.",
		register.Handle(ctx, []string{"REGISTER", "alice", "other@b.com", "pw2"}))
	assert.Equal(t, "ERROR|User registration failed.",
		register.Handle(ctx, []string{"REGISTER", "alice2", "a@b.com", "pw2"}))
}

func TestLoginMissingArguments(t *testing.T) {
	login := NewLoginHandler(service.NewAuthService(newMemoryUserStore()))

	assert.Equal(t, "ERROR|missing username or password",
		login.Handle(context.Background(), []string{"LOGIN", "a@b.com"}))
}

func TestRegisterMissingArguments(t *testing.T) {
	register := NewRegisterHandler(service.NewAuthService(newMemoryUserStore()))

	assert.Equal(t, "ERROR|Invalid parameters for REGISTER command.",
		register.Handle(context.Background(), []string{"REGISTER", "alice", "a@b.com"}))
}
