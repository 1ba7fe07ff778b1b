package utils

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost 测试里可以调低
var BcryptCost = bcrypt.DefaultCost

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}

func NewID() string { return uuid.NewString() }
