package experiment

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"recohub/domain"
)

// Assignment is the deterministic bucket outcome for one (user, experiment)
// pair. Assigning twice for the same inputs always yields the same result.
type Assignment struct {
	Variant string
	Bucket  int
}

// Assign hashes "{userID}:{experimentID}" with SHA-256, parses the first 8
// hex characters as an unsigned integer and reduces modulo 100. A crypto
// hash with fixed hex parsing keeps the bucketing reproducible across
// services regardless of implementation language. Stateless, no side effects.
func Assign(userID, experimentID string, trafficSplit int) Assignment {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s", userID, experimentID)))
	digest := hex.EncodeToString(sum[:])

	v, _ := strconv.ParseUint(digest[:8], 16, 64)
	bucket := int(v % 100)

	variant := domain.VariantVariant
	if bucket < trafficSplit {
		variant = domain.VariantControl
	}

	return Assignment{Variant: variant, Bucket: bucket}
}
