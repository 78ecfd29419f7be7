package domain

import (
	"math/big"
)

// weiPerEther is the base-unit scale of the canonical price representation.
var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// etherDisplayDecimals is the precision used for display formatting.
const etherDisplayDecimals = 4

// ParseWei interprets s as a base-10 wei integer string. It returns false
// for anything that is not a plain non-negative integer.
func ParseWei(s string) (*big.Int, bool) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return nil, false
	}
	return n, true
}

// FormatEther renders a wei integer string as a fixed-precision ETH amount,
// e.g. "1500000000000000000" -> "1.5000". Unparsable input renders as zero
// so a single bad price never breaks a whole listing page.
func FormatEther(wei string) string {
	n, ok := ParseWei(wei)
	if !ok {
		n = big.NewInt(0)
	}
	return FormatEtherWei(n)
}

// FormatEtherWei renders a wei amount as a fixed-precision ETH string.
func FormatEtherWei(wei *big.Int) string {
	r := new(big.Rat).SetFrac(wei, weiPerEther)
	return r.FloatString(etherDisplayDecimals)
}
