package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainuser "driveshare/internal/domain/user"
)

func seedUser(t *testing.T, repo *UserRepository, id, email string) *domainuser.User {
	t.Helper()
	u, err := domainuser.New(domainuser.CreateParams{
		ID: domainuser.ID(id), Email: email, Name: id,
		CreatedAt: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), u))
	return u
}

func TestUserRepositoryLookups(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	seedUser(t, repo, "user-1", "a@example.com")

	byID, err := repo.ByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", byID.Email)

	byEmail, err := repo.ByEmail(ctx, "  A@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, domainuser.ID("user-1"), byEmail.ID)

	_, err = repo.ByID(ctx, "missing")
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
	_, err = repo.ByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
}

func TestUserRepositoryEmailUniqueness(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	existing := seedUser(t, repo, "user-1", "a@example.com")

	dup, err := domainuser.New(domainuser.CreateParams{
		ID: "user-2", Email: "a@example.com", Name: "Dup",
	})
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, dup), domainuser.ErrEmailAlreadyUsed)

	// Re-saving the same user under its own email is fine.
	require.NoError(t, existing.EnsureRole(domainuser.RoleOwner, time.Now()))
	assert.NoError(t, repo.Save(ctx, existing))
}

func TestUserRepositoryReturnsCopies(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	seedUser(t, repo, "user-1", "a@example.com")

	loaded, err := repo.ByID(ctx, "user-1")
	require.NoError(t, err)
	loaded.Name = "mutated"
	loaded.Roles = append(loaded.Roles, domainuser.RoleOwner)

	again, err := repo.ByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", again.Name)
	assert.Equal(t, []domainuser.Role{domainuser.RoleRenter}, again.Roles)
}
