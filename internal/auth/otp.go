package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/ledgerly/server/internal/model"
)

const (
	otpExpiry  = 10 * time.Minute
	otpMinCode = 100000
	otpSpan    = 900000
)

// OTPManager issues and checks the password-reset code attached to a user.
// It only mutates the user value; persisting it is the caller's job.
type OTPManager struct {
	salt    string
	devMode bool
	devCode string
	now     func() time.Time
}

// NewOTPManager creates an OTP manager. When devMode is set every generated code is devCode.
func NewOTPManager(salt string, devMode bool, devCode string, opts ...Option) *OTPManager {
	o := applyOptions(opts)
	return &OTPManager{
		salt:    salt,
		devMode: devMode,
		devCode: devCode,
		now:     o.now,
	}
}

// DevMode reports whether codes are pinned to the development value.
func (m *OTPManager) DevMode() bool {
	return m.devMode
}

// Generate attaches a fresh code to user, replacing any previous one, and returns it in plaintext.
// Only the salted hash is kept on the user.
func (m *OTPManager) Generate(user *model.User) (string, error) {
	code := m.devCode
	if !m.devMode {
		n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
		if err != nil {
			return "", fmt.Errorf("failed to generate OTP: %w", err)
		}
		code = fmt.Sprintf("%06d", n.Int64()+otpMinCode)
	}

	expiresAt := m.now().Add(otpExpiry)
	user.OTPHash = hashOTPHex(user.Email, code, m.salt)
	user.OTPExpiresAt = &expiresAt
	return code, nil
}

// Validate reports whether code matches the user's live code. The expiry instant itself is already expired.
// A failed check leaves the user untouched.
func (m *OTPManager) Validate(user *model.User, code string) bool {
	if !user.HasOTP() {
		return false
	}
	if !m.now().Before(*user.OTPExpiresAt) {
		return false
	}
	stored, err := hex.DecodeString(user.OTPHash)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(hashOTPBytes(user.Email, code, m.salt), stored) == 1
}

// Consume clears the code and its expiry.
func (m *OTPManager) Consume(user *model.User) {
	user.OTPHash = ""
	user.OTPExpiresAt = nil
}

// hashOTPHex returns SHA-256(email:code:salt) as hex for storage
func hashOTPHex(email, code, salt string) string {
	return hex.EncodeToString(hashOTPBytes(email, code, salt))
}

func hashOTPBytes(email, code, salt string) []byte {
	hash := sha256.Sum256([]byte(email + ":" + code + ":" + salt))
	return hash[:]
}
