package pricing

import (
	"fmt"
	"strings"
)

// VehicleCategory selects a row of the rate table.
type VehicleCategory string

const (
	VehicleSprinter19 VehicleCategory = "sprinter-19"
	VehicleMidsizeBus VehicleCategory = "bus-24-46"
	VehicleCoach60    VehicleCategory = "coach-60"
)

// DefaultVehicle is the category a new trip input starts with.
const DefaultVehicle = VehicleMidsizeBus

var vehicleLabels = map[VehicleCategory]string{
	VehicleSprinter19: "SPRINTER 19 ASIENTOS",
	VehicleMidsizeBus: "24 - 44 - 46 ASIENTOS",
	VehicleCoach60:    "60 ASIENTOS",
}

// Vehicles lists every known category in display order.
func Vehicles() []VehicleCategory {
	return []VehicleCategory{VehicleSprinter19, VehicleMidsizeBus, VehicleCoach60}
}

// Label returns the name printed on quotes.
func (v VehicleCategory) Label() string {
	if label, ok := vehicleLabels[v]; ok {
		return label
	}
	return string(v)
}

// Valid reports whether v is one of the known categories.
func (v VehicleCategory) Valid() bool {
	_, ok := vehicleLabels[v]
	return ok
}

// ParseVehicle resolves a category from its identifier or its printed label.
func ParseVehicle(raw string) (VehicleCategory, error) {
	trimmed := strings.TrimSpace(raw)
	for _, v := range Vehicles() {
		if strings.EqualFold(trimmed, string(v)) || strings.EqualFold(trimmed, v.Label()) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVehicle, raw)
}

// VehicleRate holds the per-kilometre prices for one vehicle category.
type VehicleRate struct {
	Productive   float64 `json:"productive" yaml:"productive"`
	Unproductive float64 `json:"unproductive" yaml:"unproductive"`
}

// RateTable maps each vehicle category to its kilometre rates.
type RateTable map[VehicleCategory]VehicleRate

// Lookup returns the rates for a category or ErrConfiguration when absent.
func (t RateTable) Lookup(v VehicleCategory) (VehicleRate, error) {
	rate, ok := t[v]
	if !ok {
		return VehicleRate{}, fmt.Errorf("%w: no rates for vehicle %q", ErrConfiguration, v)
	}
	return rate, nil
}

// Validate checks that every known category has strictly positive rates.
func (t RateTable) Validate() error {
	for _, v := range Vehicles() {
		rate, err := t.Lookup(v)
		if err != nil {
			return err
		}
		if rate.Productive <= 0 || rate.Unproductive <= 0 {
			return fmt.Errorf("%w: rates for vehicle %q must be positive", ErrConfiguration, v)
		}
	}
	return nil
}

// Clone returns an independent copy of the table.
func (t RateTable) Clone() RateTable {
	out := make(RateTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// TripInput is the editable state of one quote.
type TripInput struct {
	Units           int             `json:"units"`
	ProductiveKm    float64         `json:"productiveKm"`
	DestinationKm   float64         `json:"destinationKm"`
	UnproductiveKm  float64         `json:"unproductiveKm"`
	Passengers      int             `json:"passengers"`
	Vehicle         VehicleCategory `json:"vehicle"`
	DiscountPercent float64         `json:"discountPercent"`
	Provincial      ProvincialItems `json:"provincial"`
	National        NationalItems   `json:"national"`
}

// NewTripInput returns a trip input with the documented defaults and the
// driver item unit prices seeded from prices.
func NewTripInput(prices DriverPrices) TripInput {
	return TripInput{
		Units:      1,
		Vehicle:    DefaultVehicle,
		Provincial: NewProvincialItems(prices.Provincial),
		National:   NewNationalItems(prices.National),
	}
}

// EffectiveUnits is the unit multiplier used for pricing; never below one.
func (t TripInput) EffectiveUnits() int {
	if t.Units < 1 {
		return 1
	}
	return t.Units
}

// Result is the price breakdown derived from a TripInput.
type Result struct {
	VehicleCostPerUnit        float64 `json:"vehicleCostPerUnit"`
	VehicleCostTotal          float64 `json:"vehicleCostTotal"`
	ProvincialDriverCostTotal float64 `json:"provincialDriverCostTotal"`
	NationalDriverCostTotal   float64 `json:"nationalDriverCostTotal"`
	Subtotal                  float64 `json:"subtotal"`
	DiscountAmount            float64 `json:"discountAmount"`
	FinalCost                 float64 `json:"finalCost"`
	TotalWithTax              float64 `json:"totalWithTax"`
}
