package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/png"

	"distro-backend/internal/models"
	"distro-backend/internal/repositories"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpIssuer = "DistroBackend"

var (
	ErrNoTOTPSecret    = errors.New("no TOTP secret set up")
	ErrInvalidTOTPCode = errors.New("invalid TOTP code")
)

type TOTPSetupResponse struct {
	Secret      string `json:"secret"`
	QRCode      string `json:"qr_code"` // data:image/png;base64
	Issuer      string `json:"issuer"`
	AccountName string `json:"account_name"`
}

// TOTPService manages optional 2FA for admin users.
type TOTPService struct {
	Users *repositories.UserRepository
}

func NewTOTPService(users *repositories.UserRepository) *TOTPService {
	return &TOTPService{Users: users}
}

// GenerateSetup creates a new TOTP secret and QR code for a user. The
// secret is stored but 2FA stays disabled until VerifyAndEnable.
func (s *TOTPService) GenerateSetup(ctx context.Context, user *models.User) (*TOTPSetupResponse, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Users.SetTOTPSecret(ctx, user.ID, key.Secret()); err != nil {
		return nil, err
	}

	qrImage, err := key.Image(200, 200)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, qrImage); err != nil {
		return nil, err
	}

	return &TOTPSetupResponse{
		Secret:      key.Secret(),
		QRCode:      "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Issuer:      totpIssuer,
		AccountName: user.Email,
	}, nil
}

// VerifyAndEnable checks a code against the stored secret and turns
// 2FA on for the user.
func (s *TOTPService) VerifyAndEnable(ctx context.Context, userID int, code string) error {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == "" {
		return ErrNoTOTPSecret
	}
	if !totp.Validate(code, user.TOTPSecret) {
		return ErrInvalidTOTPCode
	}
	return s.Users.EnableTOTP(ctx, userID)
}

// VerifyLogin validates the second factor during login.
func (s *TOTPService) VerifyLogin(user *models.User, code string) error {
	if user.TOTPSecret == "" {
		return ErrNoTOTPSecret
	}
	if !totp.Validate(code, user.TOTPSecret) {
		return ErrInvalidTOTPCode
	}
	return nil
}

// Disable turns 2FA off and wipes the secret.
func (s *TOTPService) Disable(ctx context.Context, userID int) error {
	return s.Users.DisableTOTP(ctx, userID)
}
