package chain

import (
	"fmt"
	"math/big"
	"strings"
)

// Token describes one of the deployed token contracts. Decimals fixes the
// scale factor between human-readable amounts and on-chain integer units;
// submission and display must both go through it to avoid rounding drift.
type Token struct {
	Symbol   string
	Address  string
	Decimals uint
}

// sctPerStrk is the purchase conversion rate: 1 SCT costs 0.001 STRK.
const sctPerStrk = 1000

// ParseAmount converts a human-readable decimal amount into the token's
// integer chain units. The fractional part must fit the token's decimals;
// excess digits are an error rather than a silent truncation.
func (t Token) ParseAmount(amount string) (*big.Int, error) {
	return parseDecimal(amount, t.Decimals)
}

// FormatAmount renders integer chain units back into the human-readable
// decimal form. ParseAmount and FormatAmount round-trip exactly.
func (t Token) FormatAmount(units *big.Int) string {
	if units == nil {
		return "0"
	}
	s := units.String()
	if t.Decimals == 0 {
		return s
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if uint(len(s)) <= t.Decimals {
		s = strings.Repeat("0", int(t.Decimals)-len(s)+1) + s
	}
	cut := len(s) - int(t.Decimals)
	whole, frac := s[:cut], strings.TrimRight(s[cut:], "0")

	out := whole
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// U256 splits an integer amount into the (low, high) 128-bit limbs the
// contract calldata expects for u256 arguments.
func U256(v *big.Int) (low, high *big.Int) {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	low = new(big.Int).And(v, mask)
	high = new(big.Int).Rsh(v, 128)
	return low, high
}

// StrkForSct converts a human SCT amount into STRK chain units at the fixed
// purchase rate. Computed entirely in integer arithmetic: amount * 10^18 / 1000.
func (t Token) StrkForSct(amountSct string) (*big.Int, error) {
	if t.Decimals < 3 {
		return nil, fmt.Errorf("token %s cannot price SCT purchases", t.Symbol)
	}
	return parseDecimal(amountSct, t.Decimals-3)
}

// FormatStrkForSct renders the STRK cost of a human SCT amount as a decimal
// string, for the strk_used field of purchase records.
func (t Token) FormatStrkForSct(amountSct string) (string, error) {
	units, err := t.StrkForSct(amountSct)
	if err != nil {
		return "", err
	}
	return t.FormatAmount(units), nil
}

// parseDecimal parses a non-negative decimal string into an integer scaled
// by 10^decimals.
func parseDecimal(s string, decimals uint) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("negative amount %q", s)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if uint(len(frac)) > decimals {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", s, decimals)
	}
	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))

	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}
