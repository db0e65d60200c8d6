package service

import (
	"github.com/pquerna/otp/totp"
)

// TwoFactor wraps TOTP enrollment and verification.
type TwoFactor struct {
	issuer string
}

// NewTwoFactor creates the TOTP helper. The issuer shows up in
// authenticator apps next to the account email.
func NewTwoFactor(issuer string) *TwoFactor {
	if issuer == "" {
		issuer = "SecureVet"
	}
	return &TwoFactor{issuer: issuer}
}

// GenerateSecret creates a fresh TOTP secret for the account and
// returns the secret plus the otpauth:// provisioning URL.
func (t *TwoFactor) GenerateSecret(accountEmail string) (secret, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      t.issuer,
		AccountName: accountEmail,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// Verify checks a 6-digit code against the stored secret.
func (t *TwoFactor) Verify(code, secret string) bool {
	return totp.Validate(code, secret)
}
