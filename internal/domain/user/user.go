package user

import (
	"errors"
	"time"
)

// User is the persisted record. Never serialise it directly, map it with ToDTO.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

var ErrNotFound = errors.New("user not found")

// UserDTO is what callers of the API get back.
type UserDTO struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type CreateUserRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=120"`
	Email string `json:"email" binding:"required,email,max=254"`
}

// partial update: nil fields are left untouched by the store.
type UpdateUserRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=120"`
	Email *string `json:"email" binding:"omitempty,email,max=254"`
}

// Apply merges the provided fields of req into u and stamps UpdatedAt.
func (req UpdateUserRequest) Apply(u *User, now time.Time) {
	if req.Name != nil {
		u.Name = *req.Name
	}

	if req.Email != nil {
		u.Email = *req.Email
	}

	u.UpdatedAt = now
}
