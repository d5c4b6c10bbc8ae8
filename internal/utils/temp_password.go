package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/yukikurage/membership-api/internal/constants"
)

// GenerateTemporaryPassword returns a random credential for users created by an
// invite. It must be rotated on first sign-in.
func GenerateTemporaryPassword() (string, error) {
	bytes := make([]byte, constants.TemporaryPasswordBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
