package auth

import (
	"testing"

	"distro-backend/internal/config"
	"distro-backend/internal/models"

	"github.com/stretchr/testify/require"
)

func testManager() *JWTManager {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "distro-backend"
	return NewJWTManager(cfg)
}

func TestTokenRoundTrip(t *testing.T) {
	j := testManager()
	user := &models.User{ID: 3, Email: "ops@example.com", Role: models.RoleAdmin, IsActive: true}

	token, err := j.GenerateToken(user)
	require.NoError(t, err)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, 3, claims.UserID)
	require.Equal(t, models.RoleAdmin, claims.Role)

	_, err = j.ValidateToken(token + "x")
	require.Error(t, err)
}

func TestDriverTokenRejectsAdminToken(t *testing.T) {
	j := testManager()
	admin := &models.User{ID: 3, Email: "ops@example.com", Role: models.RoleAdmin}
	driver := &models.User{ID: 7, Name: "Ravi", Phone: "9000000000", Role: models.RoleDriver}

	adminToken, err := j.GenerateToken(admin)
	require.NoError(t, err)
	_, err = j.ValidateDriverToken(adminToken)
	require.Error(t, err)

	driverToken, err := j.GenerateDriverToken(driver, false)
	require.NoError(t, err)
	claims, err := j.ValidateDriverToken(driverToken)
	require.NoError(t, err)
	require.Equal(t, 7, claims.DriverID)
}

func TestTempTokenType(t *testing.T) {
	j := testManager()
	user := &models.User{ID: 3, Email: "ops@example.com"}

	temp, err := j.GenerateTempToken(user)
	require.NoError(t, err)

	claims, err := j.ValidateTempToken(temp)
	require.NoError(t, err)
	require.Equal(t, 3, claims.UserID)

	// The bridge token must not grant a session before the TOTP step.
	_, err = j.ValidateToken(temp)
	require.Error(t, err)

	// A full session token is not a valid 2FA bridge token.
	full, err := j.GenerateToken(&models.User{ID: 3, Email: "ops@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = j.ValidateTempToken(full)
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.True(t, VerifyPassword(hash, "s3cret"))
	require.False(t, VerifyPassword(hash, "wrong"))
}
