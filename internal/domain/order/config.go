package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDeliveryEstimate is how far after shipping an untracked order is
// expected to arrive.
const DefaultDeliveryEstimate = 7 * 24 * time.Hour

// Config holds the per-deployment checkout pricing.
type Config struct {
	Currency              string
	TaxRate               decimal.Decimal
	ShippingRates         map[string]decimal.Decimal
	DefaultShippingMethod string
	DeliveryEstimate      time.Duration
}

// Validate rejects configurations that would produce inconsistent totals.
func (c Config) Validate() error {
	if c.TaxRate.IsNegative() {
		return errors.New("tax rate must not be negative")
	}
	if len(c.ShippingRates) == 0 {
		return errors.New("at least one shipping rate is required")
	}
	for method, rate := range c.ShippingRates {
		if rate.IsNegative() {
			return fmt.Errorf("shipping rate for %q must not be negative", method)
		}
		if !IsCents(rate) {
			return fmt.Errorf("shipping rate for %q must have at most 2 decimal places", method)
		}
	}
	if _, ok := c.ShippingRates[c.DefaultShippingMethod]; !ok {
		return fmt.Errorf("default shipping method %q has no rate", c.DefaultShippingMethod)
	}
	if c.DeliveryEstimate < 0 {
		return errors.New("delivery estimate must not be negative")
	}
	return nil
}

// ShippingFor returns the flat rate of method, or of the default method
// when method is empty.
func (c Config) ShippingFor(method string) (string, decimal.Decimal, error) {
	if method == "" {
		method = c.DefaultShippingMethod
	}
	rate, ok := c.ShippingRates[method]
	if !ok {
		return method, decimal.Zero, &ValidationError{Field: "shippingMethod", Reason: fmt.Sprintf("%q is not offered", method)}
	}
	return method, rate, nil
}

// TaxOn returns the tax due on subtotal, rounded to two places.
func (c Config) TaxOn(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(c.TaxRate).Round(2)
}

func (c Config) deliveryEstimate() time.Duration {
	if c.DeliveryEstimate == 0 {
		return DefaultDeliveryEstimate
	}
	return c.DeliveryEstimate
}

// IsCents reports whether d fits the two-decimal money columns without
// rounding.
func IsCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
