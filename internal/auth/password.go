package auth

import "golang.org/x/crypto/bcrypt"

// Cost 8 keeps driver-portal logins fast on the small VPS this runs
// on; the portal sits behind the admin's network anyway.
const bcryptCost = 8

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
