package services_test

import (
	"testing"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPricingCalculator_CalculateSubtotal(t *testing.T) {
	calc := services.NewPricingCalculator()

	subtotal, err := calc.CalculateSubtotal([]services.LineItem{
		{Quantity: 2, UnitPrice: dec("10.00")},
		{Quantity: 1, UnitPrice: dec("5.50")},
	})
	assert.NoError(t, err)
	assert.Equal(t, "25.50", subtotal.StringFixed(2))

	// Empty item list sums to zero
	subtotal, err = calc.CalculateSubtotal(nil)
	assert.NoError(t, err)
	assert.Equal(t, "0.00", subtotal.StringFixed(2))

	// Negative quantity is rejected
	_, err = calc.CalculateSubtotal([]services.LineItem{
		{Quantity: -1, UnitPrice: dec("10.00")},
	})
	assert.Error(t, err)

	// Negative price is rejected
	_, err = calc.CalculateSubtotal([]services.LineItem{
		{Quantity: 1, UnitPrice: dec("-10.00")},
	})
	assert.Error(t, err)
}

func TestPricingCalculator_ApplyDiscount_Codes(t *testing.T) {
	calc := services.NewPricingCalculator()

	// WELCOME10 is a 10% code
	discounted, applied, err := calc.ApplyDiscount(dec("100.00"), services.DiscountInput{Code: "WELCOME10"})
	assert.NoError(t, err)
	assert.Equal(t, "10.00", applied.StringFixed(2))
	assert.Equal(t, "90.00", discounted.StringFixed(2))

	// Codes are case-insensitive
	discounted, applied, err = calc.ApplyDiscount(dec("100.00"), services.DiscountInput{Code: "save20"})
	assert.NoError(t, err)
	assert.Equal(t, "20.00", applied.StringFixed(2))
	assert.Equal(t, "80.00", discounted.StringFixed(2))

	// NEWUSER is a fixed $15 amount
	discounted, applied, err = calc.ApplyDiscount(dec("100.00"), services.DiscountInput{Code: "NEWUSER"})
	assert.NoError(t, err)
	assert.Equal(t, "15.00", applied.StringFixed(2))
	assert.Equal(t, "85.00", discounted.StringFixed(2))

	// BULK25 requires a $100 minimum order
	_, _, err = calc.ApplyDiscount(dec("99.99"), services.DiscountInput{Code: "BULK25"})
	assert.Error(t, err)

	discounted, applied, err = calc.ApplyDiscount(dec("100.00"), services.DiscountInput{Code: "BULK25"})
	assert.NoError(t, err)
	assert.Equal(t, "25.00", applied.StringFixed(2))
	assert.Equal(t, "75.00", discounted.StringFixed(2))
}

func TestPricingCalculator_ApplyDiscount_ExplicitValues(t *testing.T) {
	calc := services.NewPricingCalculator()

	pct := 50.0
	discounted, applied, err := calc.ApplyDiscount(dec("80.00"), services.DiscountInput{Percentage: &pct})
	assert.NoError(t, err)
	assert.Equal(t, "40.00", applied.StringFixed(2))
	assert.Equal(t, "40.00", discounted.StringFixed(2))

	// Unknown code falls through to the explicit percentage
	discounted, applied, err = calc.ApplyDiscount(dec("80.00"), services.DiscountInput{Code: "NOSUCHCODE", Percentage: &pct})
	assert.NoError(t, err)
	assert.Equal(t, "40.00", applied.StringFixed(2))
	assert.Equal(t, "40.00", discounted.StringFixed(2))

	// Percentage outside 0-100 is rejected
	bad := 101.0
	_, _, err = calc.ApplyDiscount(dec("80.00"), services.DiscountInput{Percentage: &bad})
	assert.Error(t, err)

	negative := -5.0
	_, _, err = calc.ApplyDiscount(dec("80.00"), services.DiscountInput{Percentage: &negative})
	assert.Error(t, err)

	// Fixed amounts are clamped so the total never goes negative
	amount := dec("500.00")
	discounted, applied, err = calc.ApplyDiscount(dec("80.00"), services.DiscountInput{Amount: &amount})
	assert.NoError(t, err)
	assert.Equal(t, "80.00", applied.StringFixed(2))
	assert.Equal(t, "0.00", discounted.StringFixed(2))

	negAmount := dec("-10.00")
	_, _, err = calc.ApplyDiscount(dec("80.00"), services.DiscountInput{Amount: &negAmount})
	assert.Error(t, err)

	// No discount input leaves the subtotal unchanged
	discounted, applied, err = calc.ApplyDiscount(dec("80.00"), services.DiscountInput{})
	assert.NoError(t, err)
	assert.Equal(t, "0.00", applied.StringFixed(2))
	assert.Equal(t, "80.00", discounted.StringFixed(2))
}

func TestPricingCalculator_CalculateTax(t *testing.T) {
	calc := services.NewPricingCalculator()

	assert.Equal(t, "8.75", calc.CalculateTax(dec("100.00"), "CA", false).StringFixed(2))
	assert.Equal(t, "8.00", calc.CalculateTax(dec("100.00"), "ny", false).StringFixed(2))
	assert.Equal(t, "6.25", calc.CalculateTax(dec("100.00"), "TX", false).StringFixed(2))

	// Unknown regions fall back to the default rate
	assert.Equal(t, "7.00", calc.CalculateTax(dec("100.00"), "ZZ", false).StringFixed(2))
	assert.Equal(t, "7.00", calc.CalculateTax(dec("100.00"), "", false).StringFixed(2))

	// Exempt orders and non-positive amounts are taxed at zero
	assert.Equal(t, "0.00", calc.CalculateTax(dec("100.00"), "CA", true).StringFixed(2))
	assert.Equal(t, "0.00", calc.CalculateTax(dec("0.00"), "CA", false).StringFixed(2))
	assert.Equal(t, "0.00", calc.CalculateTax(dec("-10.00"), "CA", false).StringFixed(2))
}

func TestPricingCalculator_CalculateShipping(t *testing.T) {
	calc := services.NewPricingCalculator()

	// Base rate only, no weight, no address
	assert.Equal(t, "5.99", calc.CalculateShipping(dec("50.00"), "standard", 0, nil).StringFixed(2))

	// Weight adds per-kg cost: 5.99 + 2 * 2.50
	assert.Equal(t, "10.99", calc.CalculateShipping(dec("50.00"), "standard", 2, nil).StringFixed(2))

	// Free shipping at the method threshold
	assert.Equal(t, "0.00", calc.CalculateShipping(dec("75.00"), "standard", 2, nil).StringFixed(2))
	assert.Equal(t, "12.99", calc.CalculateShipping(dec("75.00"), "express", 0, nil).StringFixed(2))
	assert.Equal(t, "0.00", calc.CalculateShipping(dec("150.00"), "express", 0, nil).StringFixed(2))
	assert.Equal(t, "0.00", calc.CalculateShipping(dec("200.00"), "overnight", 0, nil).StringFixed(2))

	// Unknown methods fall back to standard
	assert.Equal(t, "5.99", calc.CalculateShipping(dec("50.00"), "teleport", 0, nil).StringFixed(2))

	// Negative weight is treated as zero
	assert.Equal(t, "5.99", calc.CalculateShipping(dec("50.00"), "standard", -3, nil).StringFixed(2))
}

func TestPricingCalculator_DistanceMultipliers(t *testing.T) {
	calc := services.NewPricingCalculator()

	near := &models.Address{Country: "US", State: "CA"}
	far := &models.Address{Country: "US", State: "MT"}
	intl := &models.Address{Country: "DE", State: ""}

	assert.Equal(t, "5.99", calc.CalculateShipping(dec("50.00"), "standard", 0, near).StringFixed(2))
	// 5.99 * 1.3
	assert.Equal(t, "7.79", calc.CalculateShipping(dec("50.00"), "standard", 0, far).StringFixed(2))
	// 5.99 * 2
	assert.Equal(t, "11.98", calc.CalculateShipping(dec("50.00"), "standard", 0, intl).StringFixed(2))
}

func TestPricingCalculator_CalculateOrderTotal(t *testing.T) {
	calc := services.NewPricingCalculator()

	// Two $10.00 items, WELCOME10, default tax region, standard shipping:
	// 20.00 - 2.00 = 18.00; tax 1.26; shipping 5.99; total 25.25
	breakdown, err := calc.CalculateOrderTotal(
		[]services.LineItem{{Quantity: 2, UnitPrice: dec("10.00")}},
		services.PricingOptions{
			Discount:       services.DiscountInput{Code: "WELCOME10"},
			ShippingMethod: "standard",
		},
	)
	assert.NoError(t, err)
	assert.Equal(t, "20.00", breakdown.Subtotal.StringFixed(2))
	assert.Equal(t, "2.00", breakdown.DiscountApplied.StringFixed(2))
	assert.Equal(t, "18.00", breakdown.DiscountedSubtotal.StringFixed(2))
	assert.Equal(t, "1.26", breakdown.TaxAmount.StringFixed(2))
	assert.Equal(t, "5.99", breakdown.ShippingCost.StringFixed(2))
	assert.Equal(t, "25.25", breakdown.FinalTotal.StringFixed(2))
}

func TestPricingCalculator_OrderTotalComposition(t *testing.T) {
	calc := services.NewPricingCalculator()

	// Tax and free-shipping eligibility are both computed on the discounted
	// subtotal, not the raw one.
	breakdown, err := calc.CalculateOrderTotal(
		[]services.LineItem{{Quantity: 1, UnitPrice: dec("80.00")}},
		services.PricingOptions{
			Discount:       services.DiscountInput{Code: "WELCOME10"},
			TaxRegion:      "CA",
			ShippingMethod: "standard",
		},
	)
	assert.NoError(t, err)
	assert.Equal(t, "72.00", breakdown.DiscountedSubtotal.StringFixed(2))
	// 72.00 * 0.0875 = 6.30
	assert.Equal(t, "6.30", breakdown.TaxAmount.StringFixed(2))
	// 72.00 is below the 75.00 threshold, so shipping is charged
	assert.Equal(t, "5.99", breakdown.ShippingCost.StringFixed(2))
	assert.Equal(t, "84.29", breakdown.FinalTotal.StringFixed(2))

	expected := breakdown.DiscountedSubtotal.Add(breakdown.TaxAmount).Add(breakdown.ShippingCost)
	assert.True(t, breakdown.FinalTotal.Equal(expected))
}

func TestPricingCalculator_OrderTotalInvalidInputs(t *testing.T) {
	calc := services.NewPricingCalculator()

	_, err := calc.CalculateOrderTotal(
		[]services.LineItem{{Quantity: -2, UnitPrice: dec("10.00")}},
		services.PricingOptions{},
	)
	assert.Error(t, err)

	_, err = calc.CalculateOrderTotal(
		[]services.LineItem{{Quantity: 1, UnitPrice: dec("50.00")}},
		services.PricingOptions{Discount: services.DiscountInput{Code: "BULK25"}},
	)
	assert.Error(t, err)
}
