package catalog

import (
	"errors"
	"fmt"

	"github.com/eugenenazirov/trip-quoter/internal/pricing"
)

var (
	// ErrInvalidPrices indicates the per-diem price list is incomplete or contains negative prices.
	ErrInvalidPrices = errors.New("driver unit prices must cover every item with a non-negative price")
)

var defaultRates = pricing.RateTable{
	pricing.VehicleSprinter19: {Productive: 1800, Unproductive: 1500},
	pricing.VehicleMidsizeBus: {Productive: 2600, Unproductive: 2400},
	pricing.VehicleCoach60:    {Productive: 3000, Unproductive: 3000},
}

var defaultPrices = pricing.DriverPrices{
	Provincial: pricing.UnitPrices{
		pricing.ItemWorkday:       63199,
		pricing.ItemPerDiem:       13574,
		pricing.ItemPickupDropoff: 4597,
		pricing.ItemOvertimeHour:  9196,
		pricing.ItemSleeperBerth:  21591,
	},
	National: pricing.UnitPrices{
		pricing.ItemBreakfast:    3624,
		pricing.ItemLunch:        13337,
		pricing.ItemSnack:        3624,
		pricing.ItemDinner:       13337,
		pricing.ItemSleeperBerth: 21591,
	},
}

var defaultCompany = Company{
	Name:    "EMPRENDIMIENTOS SRL",
	Address: "Sierras Grandes 21 - B° Yapeyú - Córdoba",
	Email:   "viajesespeciales@grupofonobus.com.ar",
	Phone:   "351-6617222",
}

// Company is the letterhead printed on quote documents.
type Company struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
	Email   string `json:"email" yaml:"email"`
	Phone   string `json:"phone" yaml:"phone"`
}

// Catalog provides the reference data quotes are priced against.
type Catalog interface {
	Rates() pricing.RateTable
	DriverPrices() pricing.DriverPrices
	Company() Company
	NewTripInput() pricing.TripInput
}

// StaticCatalog is an immutable Catalog built once at startup.
type StaticCatalog struct {
	rates   pricing.RateTable
	prices  pricing.DriverPrices
	company Company
}

// New validates and copies the provided tables.
func New(rates pricing.RateTable, prices pricing.DriverPrices, company Company) (*StaticCatalog, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	if err := validatePrices(prices); err != nil {
		return nil, err
	}

	return &StaticCatalog{
		rates:   rates.Clone(),
		prices:  prices.Clone(),
		company: company,
	}, nil
}

// Default returns a catalog holding the built-in rates, prices and letterhead.
func Default() *StaticCatalog {
	return &StaticCatalog{
		rates:   DefaultRates(),
		prices:  DefaultDriverPrices(),
		company: DefaultCompany(),
	}
}

// DefaultRates returns a copy of the built-in vehicle rates.
func DefaultRates() pricing.RateTable {
	return defaultRates.Clone()
}

// DefaultDriverPrices returns a copy of the built-in per-diem unit prices.
func DefaultDriverPrices() pricing.DriverPrices {
	return defaultPrices.Clone()
}

// DefaultCompany returns the built-in letterhead.
func DefaultCompany() Company {
	return defaultCompany
}

// Rates returns a defensive copy of the rate table.
func (c *StaticCatalog) Rates() pricing.RateTable {
	return c.rates.Clone()
}

// DriverPrices returns a defensive copy of the per-diem price list.
func (c *StaticCatalog) DriverPrices() pricing.DriverPrices {
	return c.prices.Clone()
}

func (c *StaticCatalog) Company() Company {
	return c.company
}

// NewTripInput returns a default trip input priced from this catalog.
func (c *StaticCatalog) NewTripInput() pricing.TripInput {
	return pricing.NewTripInput(c.prices)
}

func validatePrices(prices pricing.DriverPrices) error {
	groups := map[pricing.Group]pricing.UnitPrices{
		pricing.GroupProvincial: prices.Provincial,
		pricing.GroupNational:   prices.National,
	}
	for group, list := range groups {
		keys := group.Keys()
		if len(list) != len(keys) {
			return fmt.Errorf("%w: %s expects %d items, got %d", ErrInvalidPrices, group, len(keys), len(list))
		}
		for _, key := range keys {
			price, ok := list[key]
			if !ok {
				return fmt.Errorf("%w: %s.%s is missing", ErrInvalidPrices, group, key)
			}
			if price < 0 {
				return fmt.Errorf("%w: %s.%s is %v", ErrInvalidPrices, group, key, price)
			}
		}
	}
	return nil
}
