package quote

import (
	"fmt"
	"math"

	"github.com/eugenenazirov/trip-quoter/internal/catalog"
	"github.com/eugenenazirov/trip-quoter/internal/pricing"
)

// Document is everything a printed quote shows, already resolved for display.
type Document struct {
	Company catalog.Company
	Details Details

	Description  string
	VehicleLabel string
	Passengers   int
	Units        int

	// Subtotal is reconstructed from FinalCost, so the printed lines always
	// add up to the printed total.
	Subtotal        float64
	DiscountPercent float64
	DiscountAmount  float64
	ShowDiscount    bool
	// BreakdownUnavailable is set when the subtotal could not be recovered
	// and only the final cost is shown.
	BreakdownUnavailable bool

	FinalCost    float64
	TotalWithTax float64
}

// Build assembles a document from a priced trip and its metadata.
func Build(input pricing.TripInput, result pricing.Result, details Details, company catalog.Company) Document {
	details = details.Normalized()

	doc := Document{
		Company:         company,
		Details:         details,
		Description:     describe(details.Description, input.Units),
		VehicleLabel:    input.Vehicle.Label(),
		Passengers:      input.Passengers,
		Units:           input.Units,
		DiscountPercent: input.DiscountPercent,
		FinalCost:       result.FinalCost,
		TotalWithTax:    result.TotalWithTax,
	}

	subtotal, err := pricing.ReverseSubtotal(result.FinalCost, input.DiscountPercent)
	if err != nil {
		doc.Subtotal = result.FinalCost
		doc.BreakdownUnavailable = true
		return doc
	}

	doc.Subtotal = subtotal
	doc.DiscountAmount = subtotal - result.FinalCost
	doc.ShowDiscount = input.DiscountPercent > 0
	return doc
}

func describe(description string, units int) string {
	if units > 1 {
		return fmt.Sprintf("%s (%d Unidades)", description, units)
	}
	return description
}

// TaxNote is the caption printed next to the tax-inclusive total.
func TaxNote() string {
	percent := math.Round((pricing.TaxMultiplier-1)*1000) / 10
	return fmt.Sprintf("(Incluye IVA %s%%)", FormatPercent(percent))
}
