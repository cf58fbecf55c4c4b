package utils

import (
	"strings"
	"testing"
)

func TestGenerateAPIKeyRoundTrip(t *testing.T) {
	key, prefix := GenerateAPIKey()

	if !strings.HasPrefix(key, "rk_"+prefix+"_") {
		t.Fatalf("key %q does not embed prefix %q", key, prefix)
	}

	parsed, err := APIKeyPrefix(key)
	if err != nil {
		t.Fatalf("parse prefix: %v", err)
	}
	if parsed != prefix {
		t.Errorf("parsed prefix = %q, want %q", parsed, prefix)
	}

	hash, err := HashAPIKey(key)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckAPIKey(hash, key) {
		t.Error("hash does not verify the original key")
	}
	if CheckAPIKey(hash, key+"x") {
		t.Error("hash verified a tampered key")
	}
}

func TestAPIKeyPrefixMalformed(t *testing.T) {
	for _, key := range []string{"", "rk_short", "xx_abcdefgh_rest", "rk_abc_rest", "plainkey"} {
		if _, err := APIKeyPrefix(key); err == nil {
			t.Errorf("malformed key %q accepted", key)
		}
	}
}

func TestGenerateAPIKeyUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		key, _ := GenerateAPIKey()
		if _, dup := seen[key]; dup {
			t.Fatal("duplicate api key generated")
		}
		seen[key] = struct{}{}
	}
}
