package cycle

import "github.com/shopspring/decimal"

var plateIncrement = decimal.RequireFromString("2.5")

// RoundToPlate rounds amount to the nearest multiple of 2.5. An amount
// exactly halfway between two multiples goes to the even multiple of 2.5
// (3.75 -> 5, 6.25 -> 5).
func RoundToPlate(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(plateIncrement).RoundBank(0).Mul(plateIncrement)
}

// roundCents rounds to two decimal places, half to even.
func roundCents(amount decimal.Decimal) decimal.Decimal {
	return amount.RoundBank(2)
}
