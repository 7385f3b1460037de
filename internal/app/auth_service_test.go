package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyreels/internal/pkg/jwtutil"
	"studyreels/internal/repository"
)

func TestAuthRegisterAndLogin(t *testing.T) {
	svc := NewAuthService(repository.NewUserRepository(newTestDB(t)), "secret", time.Hour)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: " Alice@Example.com ", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", registered.User.Email)
	assert.NotEqual(t, "hunter2hunter2", registered.User.PasswordHash)

	claims, err := jwtutil.ParseToken("secret", registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	byName, err := svc.Login(ctx, LoginInput{Login: "alice", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, byName.User.ID)

	byEmail, err := svc.Login(ctx, LoginInput{Login: "ALICE@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, byEmail.User.ID)

	_, err = svc.Login(ctx, LoginInput{Login: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
	_, err = svc.Login(ctx, LoginInput{Login: "bob", Password: "hunter2hunter2"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestAuthRegisterRejectsDuplicatesAndWeakInput(t *testing.T) {
	svc := NewAuthService(repository.NewUserRepository(newTestDB(t)), "secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"username taken", RegisterInput{Username: "alice", Email: "other@example.com", Password: "hunter2hunter2"}, ErrUsernameExists},
		{"email taken", RegisterInput{Username: "bob", Email: "ALICE@example.com", Password: "hunter2hunter2"}, ErrEmailExists},
		{"short password", RegisterInput{Username: "bob", Email: "bob@example.com", Password: "short"}, ErrInvalidInput},
		{"bad email", RegisterInput{Username: "bob", Email: "bob", Password: "hunter2hunter2"}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthMe(t *testing.T) {
	svc := NewAuthService(repository.NewUserRepository(newTestDB(t)), "secret", time.Hour)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	user, err := svc.Me(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.Me(ctx, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = svc.Me(ctx, "deleted-user")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
