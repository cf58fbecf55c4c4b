package utils

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// API keys look like "rk_<prefix>_<secret>". Only the bcrypt hash of the full
// key is stored; the prefix is kept in plaintext for an indexed lookup.
const apiKeyPrefixLen = 8

// GenerateAPIKey returns the plaintext key and its lookup prefix.
func GenerateAPIKey() (key string, prefix string) {
	material := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	prefix = material[:apiKeyPrefixLen]
	key = "rk_" + prefix + "_" + material[apiKeyPrefixLen:]

	return key, prefix
}

// APIKeyPrefix extracts the lookup prefix from a presented key.
func APIKeyPrefix(key string) (string, error) {
	parts := strings.SplitN(key, "_", 3)
	if len(parts) != 3 || parts[0] != "rk" || len(parts[1]) != apiKeyPrefixLen {
		return "", errors.New("malformed api key")
	}

	return parts[1], nil
}

func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

func CheckAPIKey(hash, key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
