package space

import (
	"encoding/hex"
	"io"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint hashes the key sequence and leaf descriptions of fs. Two peers
// agree on a flat layout exactly when their fingerprints match.
func Fingerprint(fs FlatSpace) string {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err) // only fails for oversized keys
	}
	for _, l := range fs {
		io.WriteString(h, l.Key)
		h.Write([]byte{0})
		io.WriteString(h, l.Space.String())
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
