package auth

import (
	"errors"
	"time"

	"distro-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// DriverClaims is the driver-portal token payload. IsDriver keeps
// admin tokens from passing portal auth and vice versa.
type DriverClaims struct {
	DriverID int    `json:"driver_id"`
	Phone    string `json:"phone"`
	Name     string `json:"name"`
	IsDriver bool   `json:"is_driver"`
	jwt.RegisteredClaims
}

// GenerateDriverToken issues a portal token: 24h by default, 30 days
// with remember-me so drivers don't re-login on route every morning.
func (j *JWTManager) GenerateDriverToken(driver *models.User, rememberMe bool) (string, error) {
	ttl := 24 * time.Hour
	if rememberMe {
		ttl = 30 * 24 * time.Hour
	}
	return j.sign(&DriverClaims{
		DriverID:         driver.ID,
		Phone:            driver.Phone,
		Name:             driver.Name,
		IsDriver:         true,
		RegisteredClaims: j.registered(ttl),
	})
}

func (j *JWTManager) ValidateDriverToken(tokenString string) (*DriverClaims, error) {
	claims := &DriverClaims{}
	if err := j.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if !claims.IsDriver {
		return nil, errors.New("not a driver token")
	}
	return claims, nil
}
