package quirks

import (
	"encoding/base32"
	"strings"

	"golang.org/x/crypto/blake2b"
)

func fastHash(data []byte) string {
	sum := blake2b.Sum256(data)

	encoding := base32.StdEncoding.WithPadding(base32.NoPadding)
	hash := strings.ToLower(encoding.EncodeToString(sum[:]))

	return hash[len(hash)-QuirkHashLength:]
}
