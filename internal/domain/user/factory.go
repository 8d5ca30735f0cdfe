package user

import (
	"time"

	"github.com/google/uuid"
)

// Now is the current UTC time at the microsecond precision the SQL stores keep,
// so a returned entity matches what a later read yields.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// NextUpdatedAt keeps UpdatedAt strictly increasing even when the clock is
// coarse or behind the stored value.
func NextUpdatedAt(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}

	return prev.Add(time.Microsecond)
}

func NewFromCreateRequest(req CreateUserRequest) User {
	now := Now()

	return User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
