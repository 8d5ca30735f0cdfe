package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/userapi/internal/domain/user"
)

// UsersRepo keeps users in a map. Used with DB_TYPE=memory and in tests.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

// List returns users ordered by creation time, then id.
func (r *UsersRepo) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	u, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) Create(_ context.Context, req user.CreateUserRequest) (user.User, error) {
	u := user.NewFromCreateRequest(req)

	r.mu.Lock()
	r.items[u.ID] = u
	r.mu.Unlock()

	return u, nil
}

// Update patches the provided fields. Unknown ids are ignored.
func (r *UsersRepo) Update(_ context.Context, id string, req user.UpdateUserRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return nil
	}

	req.Apply(&u, user.NextUpdatedAt(u.UpdatedAt, user.Now()))
	r.items[id] = u

	return nil
}

func (r *UsersRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.items, id)
	r.mu.Unlock()

	return nil
}

func (r *UsersRepo) Ping(context.Context) error {
	return nil
}
