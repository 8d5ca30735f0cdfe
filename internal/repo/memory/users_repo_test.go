package memory_test

import (
	"context"
	"testing"

	"github.com/geocoder89/userapi/internal/domain/user"
	"github.com/geocoder89/userapi/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersRepo_CRUD(t *testing.T) {
	r := memory.NewUsersRepo()
	ctx := context.Background()

	created, err := r.Create(ctx, user.CreateUserRequest{Name: "Ana", Email: "ana@x.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	name := "Ana 2"
	require.NoError(t, r.Update(ctx, created.ID, user.UpdateUserRequest{Name: &name}))

	got, err = r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana 2", got.Name)
	assert.Equal(t, "ana@x.com", got.Email)
	assert.True(t, got.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))

	require.NoError(t, r.Delete(ctx, created.ID))

	_, err = r.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUsersRepo_MissingIDs(t *testing.T) {
	r := memory.NewUsersRepo()
	ctx := context.Background()

	name := "x"
	assert.NoError(t, r.Update(ctx, "missing", user.UpdateUserRequest{Name: &name}))
	assert.NoError(t, r.Delete(ctx, "missing"))

	_, err := r.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUsersRepo_ListOrder(t *testing.T) {
	r := memory.NewUsersRepo()
	ctx := context.Background()

	empty, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	a, _ := r.Create(ctx, user.CreateUserRequest{Name: "a", Email: "a@x.com"})
	b, _ := r.Create(ctx, user.CreateUserRequest{Name: "b", Email: "b@x.com"})

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	ids := []string{list[0].ID, list[1].ID}
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids)
	assert.False(t, list[1].CreatedAt.Before(list[0].CreatedAt))
}
