package pricing

import "fmt"

const (
	// TaxMultiplier turns the discounted final cost into the client-facing total (10.5% IVA).
	TaxMultiplier = 1.105
	// MaxDiscountPercent bounds the discount percentage.
	MaxDiscountPercent = 100.0
	// ReverseGuardEpsilon is the smallest denominator ReverseSubtotal divides by.
	ReverseGuardEpsilon = 1e-6
)

// Compute derives the price breakdown of input using rates. No rounding is
// applied; formatting is left to the caller.
func Compute(input TripInput, rates RateTable) (Result, error) {
	units := float64(input.EffectiveUnits())
	totalProductiveKm := input.ProductiveKm + input.DestinationKm

	rate, err := rates.Lookup(input.Vehicle)
	if err != nil {
		return Result{}, err
	}

	vehicleCostPerUnit := totalProductiveKm*rate.Productive + input.UnproductiveKm*rate.Unproductive
	vehicleCostTotal := vehicleCostPerUnit * units

	provincialTotal := input.Provincial.CostPerUnit() * units
	nationalTotal := input.National.CostPerUnit() * units

	subtotal := vehicleCostTotal + provincialTotal + nationalTotal
	discountAmount := subtotal * (clampDiscount(input.DiscountPercent) / 100)
	finalCost := subtotal - discountAmount

	return Result{
		VehicleCostPerUnit:        vehicleCostPerUnit,
		VehicleCostTotal:          vehicleCostTotal,
		ProvincialDriverCostTotal: provincialTotal,
		NationalDriverCostTotal:   nationalTotal,
		Subtotal:                  subtotal,
		DiscountAmount:            discountAmount,
		FinalCost:                 finalCost,
		TotalWithTax:              finalCost * TaxMultiplier,
	}, nil
}

// ReverseSubtotal reconstructs the pre-discount subtotal from a final cost.
// It is meant for display only and fails with ErrComputation when the
// discount leaves a denominator at or below ReverseGuardEpsilon.
func ReverseSubtotal(finalCost, discountPercent float64) (float64, error) {
	if !(discountPercent > 0) {
		return finalCost, nil
	}
	denominator := 1 - discountPercent/100
	if denominator <= ReverseGuardEpsilon {
		return 0, fmt.Errorf("%w: cannot recover subtotal at %.4f%% discount", ErrComputation, discountPercent)
	}
	return finalCost / denominator, nil
}

// clampDiscount also maps NaN to zero.
func clampDiscount(percent float64) float64 {
	switch {
	case !(percent > 0):
		return 0
	case percent > MaxDiscountPercent:
		return MaxDiscountPercent
	default:
		return percent
	}
}
