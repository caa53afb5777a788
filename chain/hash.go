package chain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// NameHash returns the chain's selector hash for a function or event name:
// keccak256 of the ASCII name, truncated to 250 bits. Used both as the
// entry point selector of an invoke call and as keys[0] of emitted events.
func NameHash(name string) string {
	h := crypto.Keccak256([]byte(name))
	// keep the low 250 bits
	h[0] &= 0x03

	v := new(big.Int).SetBytes(h)
	return "0x" + v.Text(16)
}

// sameFelt compares two felt hex strings numerically, so differing zero
// padding or case does not break event matching.
func sameFelt(a, b string) bool {
	va, okA := parseFelt(a)
	vb, okB := parseFelt(b)
	if !okA || !okB {
		return false
	}
	return va.Cmp(vb) == 0
}

func parseFelt(s string) (*big.Int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return nil, false
	}
	v, ok := new(big.Int).SetString(s, 16)
	return v, ok
}
