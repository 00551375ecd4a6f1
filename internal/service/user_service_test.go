package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsake-app/keepsake-api/internal/domain"
	"github.com/keepsake-app/keepsake-api/internal/service/auth"
	"github.com/keepsake-app/keepsake-api/internal/store"
)

const testPassword = "orange-kayak-sunrise"

func newUserServiceFixture(t *testing.T) (UserService, *fakeUserStore) {
	t.Helper()

	users := newFakeUserStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewUserService(users, auth.NewBcryptVerifier(), nil, logger)
	return svc, users
}

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("hashes the password before storage", func(t *testing.T) {
		svc, users := newUserServiceFixture(t)

		user, err := svc.Register(ctx, "mara@example.com", testPassword)
		require.NoError(t, err)
		require.NotNil(t, user)

		stored := users.users[user.ID]
		require.NotNil(t, stored)
		assert.Empty(t, stored.Password, "plaintext must not be persisted")
		assert.NotEmpty(t, stored.HashedPassword)
		assert.NotEqual(t, testPassword, stored.HashedPassword)

		verifier := auth.NewBcryptVerifier()
		assert.NoError(t, verifier.Compare(stored.HashedPassword, testPassword))
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc, _ := newUserServiceFixture(t)

		_, err := svc.Register(ctx, "mara@example.com", testPassword)
		require.NoError(t, err)

		_, err = svc.Register(ctx, "mara@example.com", testPassword)
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		svc, _ := newUserServiceFixture(t)

		_, err := svc.Register(ctx, "not-an-email", testPassword)
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})

	t.Run("rejects short password", func(t *testing.T) {
		svc, _ := newUserServiceFixture(t)

		_, err := svc.Register(ctx, "mara@example.com", "short")
		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := newUserServiceFixture(t)
	registered, err := svc.Register(ctx, "mara@example.com", testPassword)
	require.NoError(t, err)

	t.Run("accepts correct credentials", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "mara@example.com", testPassword)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "mara@example.com", "wrong-password-guess")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("rejects unknown email with the same error", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody@example.com", testPassword)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestUpdateUserPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("replaces the stored hash", func(t *testing.T) {
		svc, users := newUserServiceFixture(t)
		registered, err := svc.Register(ctx, "mara@example.com", testPassword)
		require.NoError(t, err)
		oldHash := users.users[registered.ID].HashedPassword

		const newPassword = "violet-harbor-evening"
		require.NoError(t, svc.UpdateUserPassword(ctx, registered.ID, newPassword))

		stored := users.users[registered.ID]
		assert.NotEqual(t, oldHash, stored.HashedPassword)
		assert.Empty(t, stored.Password)

		_, err = svc.Authenticate(ctx, "mara@example.com", newPassword)
		assert.NoError(t, err)

		_, err = svc.Authenticate(ctx, "mara@example.com", testPassword)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("rejects short replacement password", func(t *testing.T) {
		svc, users := newUserServiceFixture(t)
		registered, err := svc.Register(ctx, "mara@example.com", testPassword)
		require.NoError(t, err)
		oldHash := users.users[registered.ID].HashedPassword

		err = svc.UpdateUserPassword(ctx, registered.ID, "short")
		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
		assert.Equal(t, oldHash, users.users[registered.ID].HashedPassword)
	})

	t.Run("returns not found for unknown user", func(t *testing.T) {
		svc, _ := newUserServiceFixture(t)
		err := svc.UpdateUserPassword(ctx, uuid.New(), testPassword)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, users := newUserServiceFixture(t)
	registered, err := svc.Register(ctx, "mara@example.com", testPassword)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, registered.ID))
	assert.Empty(t, users.users)

	err = svc.DeleteUser(ctx, registered.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := newUserServiceFixture(t)
	registered, err := svc.Register(ctx, "mara@example.com", testPassword)
	require.NoError(t, err)

	t.Run("by id", func(t *testing.T) {
		user, err := svc.GetUser(ctx, registered.ID)
		require.NoError(t, err)
		assert.Equal(t, "mara@example.com", user.Email)

		_, err = svc.GetUser(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("by email", func(t *testing.T) {
		user, err := svc.GetUserByEmail(ctx, "mara@example.com")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)

		_, err = svc.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
