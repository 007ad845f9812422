package jobs

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// idLength is the number of hex characters kept from the digest.
const idLength = 12

// ID derives the stable identifier of a listing from its title, company and location.
// Inputs are lowercased and trimmed before they are joined without a separator.
func ID(title, company, location string) string {
	var b strings.Builder
	for _, part := range []string{title, company, location} {
		b.WriteString(strings.ToLower(strings.TrimSpace(part)))
	}

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:idLength]
}
