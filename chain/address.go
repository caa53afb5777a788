package chain

import (
	"fmt"
	"strings"
)

// addressWidth is the fixed hex width of a chain account address.
const addressWidth = 64

// NormalizeAddress canonicalizes an account address: lowercase, strip the
// 0x prefix, left-pad with zeros to 64 hex digits, re-prefix. Two addresses
// refer to the same account iff their normalized forms are equal.
func NormalizeAddress(addr string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(addr))
	s = strings.TrimPrefix(s, "0x")

	if s == "" {
		return "", fmt.Errorf("empty address")
	}
	if len(s) > addressWidth {
		return "", fmt.Errorf("address %q longer than %d hex digits", addr, addressWidth)
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("address %q contains non-hex character %q", addr, c)
		}
	}

	return "0x" + strings.Repeat("0", addressWidth-len(s)) + s, nil
}

// SameAddress reports whether two addresses normalize to the same account.
// Either address failing to normalize counts as a mismatch.
func SameAddress(a, b string) bool {
	na, err := NormalizeAddress(a)
	if err != nil {
		return false
	}
	nb, err := NormalizeAddress(b)
	if err != nil {
		return false
	}
	return na == nb
}
