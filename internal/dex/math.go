// =============================
// File: internal/dex/math.go
// =============================
package dex

import (
	"math/big"

	"github.com/solanastream/tradekit/internal/protocol"
)

const bpsDenominator = 10_000

// ValidateTradeParams rejects amounts and tolerances no venue can use.
func ValidateTradeParams(amount, slippageBps uint64) error {
	if amount == 0 {
		return &protocol.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if slippageBps > bpsDenominator {
		return &protocol.ValidationError{Field: "slippage_bps", Reason: "exceeds 10000"}
	}
	return nil
}

// ConstantProductOut computes floor(amountIn * outReserve / (inReserve
// + amountIn)) without intermediate overflow.
func ConstantProductOut(inReserve, outReserve, amountIn uint64) uint64 {
	in := new(big.Int).SetUint64(amountIn)
	x := new(big.Int).SetUint64(inReserve)
	y := new(big.Int).SetUint64(outReserve)

	numerator := new(big.Int).Mul(in, y)
	denominator := new(big.Int).Add(x, in)
	out := numerator.Div(numerator, denominator)
	return out.Uint64()
}

// ApplySlippageDown scales an expected output to its floor bound:
// amount * (10000 - bps) / 10000.
func ApplySlippageDown(amount, slippageBps uint64) uint64 {
	a := new(big.Int).SetUint64(amount)
	a.Mul(a, big.NewInt(int64(bpsDenominator-slippageBps)))
	a.Div(a, big.NewInt(bpsDenominator))
	return a.Uint64()
}

// ApplySlippageUp scales an expected input to its ceiling bound:
// amount * (10000 + bps) / 10000.
func ApplySlippageUp(amount, slippageBps uint64) uint64 {
	a := new(big.Int).SetUint64(amount)
	a.Mul(a, big.NewInt(int64(bpsDenominator+slippageBps)))
	a.Div(a, big.NewInt(bpsDenominator))
	return a.Uint64()
}

// DeductFeeBps removes a basis-point fee from an amount.
func DeductFeeBps(amount, feeBps uint64) uint64 {
	if feeBps == 0 {
		return amount
	}
	a := new(big.Int).SetUint64(amount)
	fee := new(big.Int).SetUint64(feeBps)
	fee.Mul(fee, a)
	fee.Div(fee, big.NewInt(bpsDenominator))
	return new(big.Int).Sub(a, fee).Uint64()
}
