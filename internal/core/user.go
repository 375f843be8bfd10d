package core

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// NewUser validates the credentials and returns a user carrying the bcrypt
// hash of password. The id is assigned by the store unless set by the caller.
func NewUser(id, username, password string) (User, error) {
	u := User{ID: id, Username: username, Password: password}
	if err := u.Validate(); err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	u.Password = string(hash)
	return u, nil
}

// CheckPassword reports whether password matches the stored hash.
func (u User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
