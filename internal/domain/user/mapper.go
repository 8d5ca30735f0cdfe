package user

import "time"

// ToDTO copies the public fields of u into a fresh UserDTO.
// Zero timestamps stay absent on the DTO.
func ToDTO(u User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: timePtr(u.CreatedAt),
		UpdatedAt: timePtr(u.UpdatedAt),
	}
}

// ToDTOs maps users in order. An empty input yields an empty, non-nil slice
// so it encodes as [] rather than null.
func ToDTOs(users []User) []UserDTO {
	out := make([]UserDTO, 0, len(users))

	for _, u := range users {
		out = append(out, ToDTO(u))
	}

	return out
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}
