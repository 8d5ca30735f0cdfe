// Package service holds the users use-cases: a read-through cache over the
// full user collection in front of a persistent store.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/geocoder89/userapi/internal/cache"
	"github.com/geocoder89/userapi/internal/domain/user"
	"github.com/geocoder89/userapi/internal/observability"
	"github.com/geocoder89/userapi/internal/requestctx"
)

// UsersAllCacheKey holds the encoded []user.UserDTO of the whole collection.
const UsersAllCacheKey = "users:all"

type UsersStore interface {
	List(ctx context.Context) ([]user.User, error)
	// GetByID returns user.ErrNotFound when no row matches.
	GetByID(ctx context.Context, id string) (user.User, error)
	Create(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	// Update patches the provided fields; no match is not an error.
	Update(ctx context.Context, id string, req user.UpdateUserRequest) error
	Delete(ctx context.Context, id string) error
}

type UsersService struct {
	store UsersStore
	cache cache.Cache
	ttl   time.Duration
	prom  *observability.Prom
}

func NewUsersService(store UsersStore, c cache.Cache, ttl time.Duration) *UsersService {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}

	return &UsersService{
		store: store,
		cache: c,
		ttl:   ttl,
	}
}

// WithMetrics records cache hits and misses on p.
func (s *UsersService) WithMetrics(p *observability.Prom) *UsersService {
	s.prom = p
	return s
}

func (s *UsersService) GetUsers(ctx context.Context) ([]user.UserDTO, error) {
	log := requestctx.Logger(ctx)

	raw, ok, err := s.cache.Get(ctx, UsersAllCacheKey)
	s.prom.ObserveCacheLookup(UsersAllCacheKey, ok, err)

	if err != nil {
		return nil, err
	}

	if ok {
		var cached []user.UserDTO
		decodeErr := json.Unmarshal(raw, &cached)
		if decodeErr == nil {
			log.DebugContext(ctx, "users cache hit", "count", len(cached))
			return cached, nil
		}
		// unreadable entry: treat as a miss and overwrite it below
		log.WarnContext(ctx, "users cache entry undecodable", "err", decodeErr)
	}

	entities, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	users := user.ToDTOs(entities)

	encoded, err := json.Marshal(users)
	if err != nil {
		return nil, fmt.Errorf("encode users: %w", err)
	}

	if err := s.cache.Set(ctx, UsersAllCacheKey, encoded, s.ttl); err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "users cache populated", "count", len(users), "ttl_ms", s.ttl.Milliseconds())

	return users, nil
}

// GetUserByID always reads the store; single records are not cached.
func (s *UsersService) GetUserByID(ctx context.Context, id string) (user.UserDTO, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return user.UserDTO{}, err
	}

	return user.ToDTO(u), nil
}

func (s *UsersService) CreateUser(ctx context.Context, req user.CreateUserRequest) (user.UserDTO, error) {
	u, err := s.store.Create(ctx, req)
	if err != nil {
		return user.UserDTO{}, err
	}

	if err := s.invalidate(ctx); err != nil {
		return user.UserDTO{}, err
	}

	requestctx.Logger(ctx).InfoContext(ctx, "user created", "user_id", u.ID)

	return user.ToDTO(u), nil
}

func (s *UsersService) UpdateUser(ctx context.Context, id string, req user.UpdateUserRequest) (user.UserDTO, error) {
	if err := s.store.Update(ctx, id, req); err != nil {
		return user.UserDTO{}, err
	}

	if err := s.invalidate(ctx); err != nil {
		return user.UserDTO{}, err
	}

	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return user.UserDTO{}, err
	}

	requestctx.Logger(ctx).InfoContext(ctx, "user updated", "user_id", u.ID)

	return user.ToDTO(u), nil
}

// DeleteUser succeeds whether or not id existed.
func (s *UsersService) DeleteUser(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.invalidate(ctx); err != nil {
		return err
	}

	requestctx.Logger(ctx).InfoContext(ctx, "user deleted", "user_id", id)

	return nil
}

// invalidate drops the collection entry after a successful write so the next
// GetUsers repopulates it from the store.
func (s *UsersService) invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx, UsersAllCacheKey)
}
