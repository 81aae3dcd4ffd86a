package user

import "github.com/google/uuid"

// New builds a User ready for insertion. CreatedAt is left zero and
// assigned by the database on insert.
func New(email, name string, passwordHash *string) User {
	return User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
	}
}
