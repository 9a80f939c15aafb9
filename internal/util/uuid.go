package util

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// ShortUUID generates a random identifier encoded as 22 URL-safe characters
func ShortUUID() string {
	u := uuid.New()
	return base64.RawURLEncoding.EncodeToString(u[:])
}
