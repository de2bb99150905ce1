package auth

import (
	"errors"
	"time"

	"distro-backend/internal/config"
	"distro-backend/internal/models"
	"distro-backend/internal/timeutil"

	"github.com/golang-jwt/jwt/v5"
)

const twoFAPending = "2fa_pending"

// Claims is the back-office session token payload. TokenType stays
// empty on session tokens; a 2FA bridge token parsed into Claims
// surfaces its "2fa_pending" marker here so ValidateToken can refuse
// it before the TOTP step is done.
type Claims struct {
	UserID    int    `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	TokenType string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// TempClaims is the short-lived token issued between login step 1
// (password) and step 2 (TOTP code).
type TempClaims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	cfg *config.Config
}

func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{cfg: cfg}
}

func (j *JWTManager) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := timeutil.Now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    j.cfg.JWT.Issuer,
	}
}

func (j *JWTManager) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.cfg.JWT.Secret))
}

func (j *JWTManager) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(j.cfg.JWT.Secret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}

// GenerateToken issues a full session token for a back-office user.
func (j *JWTManager) GenerateToken(user *models.User) (string, error) {
	return j.sign(&Claims{
		UserID:           user.ID,
		Email:            user.Email,
		Role:             user.Role,
		IsActive:         user.IsActive,
		RegisteredClaims: j.registered(time.Duration(j.cfg.JWT.ExpirationHours) * time.Hour),
	})
}

func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := j.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType == twoFAPending {
		return nil, errors.New("2fa not completed")
	}
	return claims, nil
}

// GenerateTempToken issues the 5-minute 2FA bridge token.
func (j *JWTManager) GenerateTempToken(user *models.User) (string, error) {
	return j.sign(&TempClaims{
		UserID:           user.ID,
		Email:            user.Email,
		Type:             twoFAPending,
		RegisteredClaims: j.registered(5 * time.Minute),
	})
}

func (j *JWTManager) ValidateTempToken(tokenString string) (*TempClaims, error) {
	claims := &TempClaims{}
	if err := j.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Type != twoFAPending {
		return nil, errors.New("invalid token type")
	}
	return claims, nil
}
