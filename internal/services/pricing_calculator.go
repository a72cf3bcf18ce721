package services

import (
	"fmt"
	"strings"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// Tax rates by region/state. Unknown regions fall back to DEFAULT.
var taxRates = map[string]decimal.Decimal{
	"CA":      decimal.RequireFromString("0.0875"),
	"NY":      decimal.RequireFromString("0.08"),
	"TX":      decimal.RequireFromString("0.0625"),
	"FL":      decimal.RequireFromString("0.06"),
	"WA":      decimal.RequireFromString("0.065"),
	"DEFAULT": decimal.RequireFromString("0.07"),
}

// shippingRate is the per-method shipping configuration.
type shippingRate struct {
	BaseRate              decimal.Decimal
	PerKg                 decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

var shippingRates = map[string]shippingRate{
	"standard": {
		BaseRate:              decimal.RequireFromString("5.99"),
		PerKg:                 decimal.RequireFromString("2.50"),
		FreeShippingThreshold: decimal.RequireFromString("75.00"),
	},
	"express": {
		BaseRate:              decimal.RequireFromString("12.99"),
		PerKg:                 decimal.RequireFromString("4.00"),
		FreeShippingThreshold: decimal.RequireFromString("150.00"),
	},
	"overnight": {
		BaseRate:              decimal.RequireFromString("24.99"),
		PerKg:                 decimal.RequireFromString("8.00"),
		FreeShippingThreshold: decimal.RequireFromString("200.00"),
	},
}

// discountCode maps a known code to a percentage-or-fixed-amount discount,
// optionally gated on a minimum order amount.
type discountCode struct {
	Percentage decimal.Decimal // zero when the code grants a fixed amount
	Amount     decimal.Decimal
	MinAmount  decimal.Decimal // zero when ungated
}

var discountCodes = map[string]discountCode{
	"WELCOME10": {Percentage: decimal.NewFromInt(10)},
	"SAVE20":    {Percentage: decimal.NewFromInt(20)},
	"NEWUSER":   {Amount: decimal.RequireFromString("15.00")},
	"FREESHIP":  {Percentage: decimal.NewFromInt(5)},
	"BULK25":    {Percentage: decimal.NewFromInt(25), MinAmount: decimal.RequireFromString("100.00")},
}

// Distance multipliers for shipping cost.
var (
	multiplierLocal         = decimal.NewFromInt(1)
	multiplierDomesticFar   = decimal.RequireFromString("1.3")
	multiplierInternational = decimal.NewFromInt(2)
)

// LineItem is one quantity/unit-price pair fed into the pricing pipeline.
type LineItem struct {
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// DiscountInput selects at most one discount source, checked in order:
// a known code, an explicit percentage (0-100), or a fixed amount.
type DiscountInput struct {
	Code       string           `json:"code,omitempty"`
	Percentage *float64         `json:"percentage,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
}

// PricingOptions carries the discount/tax/shipping configuration for a
// full order total calculation.
type PricingOptions struct {
	Discount        DiscountInput
	TaxRegion       string
	TaxExempt       bool
	ShippingMethod  string
	TotalWeight     float64
	ShippingAddress *models.Address
}

// PricingBreakdown is the full audit record of one total calculation.
// FinalTotal always equals DiscountedSubtotal + TaxAmount + ShippingCost.
type PricingBreakdown struct {
	Subtotal              decimal.Decimal `json:"subtotal"`
	DiscountApplied       decimal.Decimal `json:"discount_applied"`
	DiscountedSubtotal    decimal.Decimal `json:"discounted_subtotal"`
	TaxAmount             decimal.Decimal `json:"tax_amount"`
	ShippingCost          decimal.Decimal `json:"shipping_cost"`
	FinalTotal            decimal.Decimal `json:"final_total"`
	TaxRegion             string          `json:"tax_region"`
	TaxRate               decimal.Decimal `json:"tax_rate"`
	ShippingMethod        string          `json:"shipping_method"`
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	TotalWeight           float64         `json:"total_weight"`
}

// PricingCalculator computes order totals. It is pure: no persistence, no
// side effects, and all monetary arithmetic is fixed-point decimal rounded
// half-up to two places.
type PricingCalculator struct{}

// NewPricingCalculator creates a new PricingCalculator.
func NewPricingCalculator() *PricingCalculator {
	return &PricingCalculator{}
}

// CalculateSubtotal sums quantity x unit price over all line items.
func (c *PricingCalculator) CalculateSubtotal(items []LineItem) (decimal.Decimal, error) {
	subtotal := decimal.Zero
	for _, item := range items {
		if item.Quantity < 0 || item.UnitPrice.IsNegative() {
			return decimal.Zero, fmt.Errorf("invalid quantity (%d) or price (%s)", item.Quantity, item.UnitPrice)
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal.Round(2), nil
}

// ApplyDiscount resolves the discount and returns (discounted subtotal,
// discount applied). The discount is clamped so it never exceeds the
// subtotal; a negative total is impossible.
func (c *PricingCalculator) ApplyDiscount(subtotal decimal.Decimal, in DiscountInput) (decimal.Decimal, decimal.Decimal, error) {
	applied := decimal.Zero
	code, knownCode := discountCodes[strings.ToUpper(in.Code)]

	switch {
	case in.Code != "" && knownCode:
		if code.MinAmount.IsPositive() && subtotal.LessThan(code.MinAmount) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("minimum order amount of $%s required for %s", code.MinAmount, in.Code)
		}
		if code.Percentage.IsPositive() {
			applied = subtotal.Mul(code.Percentage).Div(decimal.NewFromInt(100))
		} else {
			applied = code.Amount
		}

	case in.Percentage != nil:
		if *in.Percentage < 0 || *in.Percentage > 100 {
			return decimal.Zero, decimal.Zero, fmt.Errorf("discount percentage must be between 0 and 100, got %v", *in.Percentage)
		}
		applied = subtotal.Mul(decimal.NewFromFloat(*in.Percentage)).Div(decimal.NewFromInt(100))

	case in.Amount != nil:
		if in.Amount.IsNegative() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("discount amount cannot be negative, got %s", in.Amount)
		}
		applied = *in.Amount
	}

	// Clamp so the discount never exceeds the subtotal.
	if applied.GreaterThan(subtotal) {
		applied = subtotal
	}

	applied = applied.Round(2)
	return subtotal.Sub(applied).Round(2), applied, nil
}

// CalculateTax returns the tax for the taxable amount in the given region.
// Exempt orders and non-positive amounts are taxed at zero.
func (c *PricingCalculator) CalculateTax(taxableAmount decimal.Decimal, region string, exempt bool) decimal.Decimal {
	if exempt || !taxableAmount.IsPositive() {
		return decimal.Zero.Round(2)
	}
	return taxableAmount.Mul(c.taxRate(region)).Round(2)
}

func (c *PricingCalculator) taxRate(region string) decimal.Decimal {
	if rate, ok := taxRates[strings.ToUpper(region)]; ok {
		return rate
	}
	return taxRates["DEFAULT"]
}

// CalculateShipping computes the shipping cost: free above the method's
// threshold, otherwise base + weight x per-kg rate, scaled by a coarse
// distance multiplier from the destination. Unknown methods fall back to
// standard; negative weight is treated as zero.
func (c *PricingCalculator) CalculateShipping(subtotal decimal.Decimal, method string, totalWeight float64, address *models.Address) decimal.Decimal {
	rate, ok := shippingRates[method]
	if !ok {
		rate = shippingRates["standard"]
	}

	if subtotal.GreaterThanOrEqual(rate.FreeShippingThreshold) {
		return decimal.Zero.Round(2)
	}

	if totalWeight < 0 {
		totalWeight = 0
	}
	cost := rate.BaseRate.Add(decimal.NewFromFloat(totalWeight).Mul(rate.PerKg))

	if address != nil {
		cost = cost.Mul(c.distanceMultiplier(address))
	}
	return cost.Round(2)
}

// distanceMultiplier buckets the destination: domestic-near 1.0,
// domestic-far 1.3, international 2.0.
func (c *PricingCalculator) distanceMultiplier(address *models.Address) decimal.Decimal {
	country := strings.ToUpper(address.Country)
	if country != "" && country != "US" {
		return multiplierInternational
	}
	switch strings.ToUpper(address.State) {
	case "CA", "NY", "TX", "FL":
		return multiplierLocal
	default:
		return multiplierDomesticFar
	}
}

// CalculateOrderTotal composes the pipeline in strict order: subtotal,
// discount, tax on the discounted subtotal, shipping on the discounted
// subtotal, final total. Every intermediate value is returned.
func (c *PricingCalculator) CalculateOrderTotal(items []LineItem, opts PricingOptions) (*PricingBreakdown, error) {
	subtotal, err := c.CalculateSubtotal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate subtotal: %w", err)
	}

	discountedSubtotal, discountApplied, err := c.ApplyDiscount(subtotal, opts.Discount)
	if err != nil {
		return nil, fmt.Errorf("failed to apply discount: %w", err)
	}

	taxAmount := c.CalculateTax(discountedSubtotal, opts.TaxRegion, opts.TaxExempt)
	shippingCost := c.CalculateShipping(discountedSubtotal, opts.ShippingMethod, opts.TotalWeight, opts.ShippingAddress)

	method := opts.ShippingMethod
	if _, ok := shippingRates[method]; !ok {
		method = "standard"
	}

	return &PricingBreakdown{
		Subtotal:              subtotal,
		DiscountApplied:       discountApplied,
		DiscountedSubtotal:    discountedSubtotal,
		TaxAmount:             taxAmount,
		ShippingCost:          shippingCost,
		FinalTotal:            discountedSubtotal.Add(taxAmount).Add(shippingCost),
		TaxRegion:             opts.TaxRegion,
		TaxRate:               c.taxRate(opts.TaxRegion),
		ShippingMethod:        method,
		FreeShippingThreshold: shippingRates[method].FreeShippingThreshold,
		TotalWeight:           opts.TotalWeight,
	}, nil
}
