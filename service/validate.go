package service

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MaxOwnerNameLength = 50
	// AmountScale and MaxAmountDigits match the NUMERIC(20,4) columns: four fractional
	// digits and sixteen integer digits.
	AmountScale     = 4
	MaxAmountDigits = 16
)

// MaxAmount is the exclusive upper bound of any amount or balance.
var MaxAmount = decimal.New(1, MaxAmountDigits)

func validateOwnerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return validationError("owner_name must not be empty")
	}
	if n := utf8.RuneCountInString(name); n > MaxOwnerNameLength {
		return validationError("owner_name must be at most %d characters", MaxOwnerNameLength)
	}
	return nil
}

// validateAmount bounds magnitude and scale using only the exponent and coefficient
// digits, so a client-chosen exponent never drives a rescale.
func validateAmount(field string, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}

	coefficient := amount.Coefficient()
	digitString := coefficient.Abs(coefficient).String()
	digits := int64(len(digitString))
	exp := int64(amount.Exponent())

	if digits+exp > MaxAmountDigits {
		return validationError("%s must be less than %s in magnitude", field, MaxAmount.String())
	}
	if exp >= -AmountScale {
		return nil
	}

	// Digits below the fourth decimal place must all be trailing zeros.
	excess := -AmountScale - exp
	if excess >= digits || strings.TrimRight(digitString[digits-excess:], "0") != "" {
		return validationError("%s must have at most %d decimal places", field, AmountScale)
	}
	return nil
}

// OwnerKeyFunc maps an owner name to the key uniqueness is enforced on.
type OwnerKeyFunc func(ownerName string) string

// ExactOwnerKey treats names as distinct unless byte-for-byte equal.
func ExactOwnerKey(ownerName string) string { return ownerName }

// CaseInsensitiveOwnerKey treats "Alice" and "alice" as the same owner.
func CaseInsensitiveOwnerKey(ownerName string) string { return strings.ToLower(ownerName) }
